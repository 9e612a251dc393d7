package host

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/avikern/thrum/sim"
	"github.com/avikern/thrum/vmath"
)

// The top row is the status line, the bottom row the knob strip; the rows
// between are the projected volume.
const hudRows = 2

const depthDimming = 0.55

func (a *App) playHeight() int {
	h := a.height - hudRows
	if h < 1 {
		return 1
	}
	return h
}

// worldFromCell maps a screen cell to a world position at mid depth
func (a *App) worldFromCell(cx, cy int) vmath.Vec3 {
	b := a.sim.Bounds()
	size := b.Size()
	w, h := float64(a.width), float64(a.playHeight())
	return vmath.Vec3{
		X: b.Min.X + (float64(cx)+0.5)/w*size.X,
		Y: b.Min.Y + (float64(cy-1)+0.5)/h*size.Y,
		Z: b.Center().Z,
	}
}

// cellFromWorld projects a world position onto the screen
func (a *App) cellFromWorld(pos vmath.Vec3) (int, int) {
	b := a.sim.Bounds()
	size := b.Size()
	cx := int((pos.X - b.Min.X) / size.X * float64(a.width))
	cy := 1 + int((pos.Y-b.Min.Y)/size.Y*float64(a.playHeight()))
	return cx, cy
}

// cellWidth is one screen cell in world units
func (a *App) cellWidth() float64 {
	if a.width == 0 {
		return 1
	}
	return a.sim.Bounds().Size().X / float64(a.width)
}

// depthValue dims distant entities
func (a *App) depthValue(z float64) float64 {
	b := a.sim.Bounds()
	d := b.Size().Z
	if d <= 0 {
		return 1
	}
	return 1 - depthDimming*vmath.Clamp01((z-b.Min.Z)/d)
}

func hueStyle(hue, sat, val float64) tcell.Style {
	c := colorful.Hsv(math.Mod(hue, 360), sat, vmath.Clamp01(val))
	r, g, b := c.RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

func (a *App) draw() {
	a.screen.Clear()

	a.drawSingularity()
	a.drawParticles()
	a.drawEntities()
	a.drawStatus()
	a.drawKnobs()

	a.screen.Show()
}

func (a *App) drawParticles() {
	for _, pt := range a.sim.Pool().Particles {
		cx, cy := a.cellFromWorld(pt.Pos)
		if !a.inPlayArea(cx, cy) {
			continue
		}
		v := a.depthValue(pt.Pos.Z) * vmath.Clamp01(pt.Life)
		a.screen.SetContent(cx, cy, '·', nil, hueStyle(pt.Hue, 0.4, v))
	}
}

func (a *App) drawEntities() {
	for _, e := range a.sim.Pool().Entities {
		v := a.depthValue(e.Pos.Z)
		style := hueStyle(e.Hue, 0.7, v)

		// Deformed vertex ring
		for i := 0; i < sim.ShapeVerts; i++ {
			ang := float64(i)/sim.ShapeVerts*2*math.Pi + e.Deform.Rot
			r := e.Radius * (1 + e.VertexOffset(i))
			off := vmath.Vec3{
				X: math.Cos(ang) * r * e.Deform.ScaleX,
				Y: math.Sin(ang) * r * e.Deform.ScaleY * 0.55, // cell aspect
			}
			cx, cy := a.cellFromWorld(vmath.V3Add(e.Pos, off))
			if a.inPlayArea(cx, cy) {
				a.screen.SetContent(cx, cy, 'o', nil, style)
			}
		}

		cx, cy := a.cellFromWorld(e.Pos)
		if a.inPlayArea(cx, cy) {
			center := '●'
			if e.Captured() {
				center = '◍'
			}
			a.screen.SetContent(cx, cy, center, nil, style.Bold(true))
		}

		// Impact-counter overlay rides above the body
		if e.Overlay.Active() && a.inPlayArea(cx, cy-1) {
			digits := strconv.Itoa(e.Overlay.Count)
			for i, d := range digits {
				if a.inPlayArea(cx+i, cy-1) {
					a.screen.SetContent(cx+i, cy-1, d, nil, hueStyle(60, 0.9, 1).Bold(true))
				}
			}
		}
	}
}

func (a *App) drawSingularity() {
	if a.params.Void < 0.01 {
		return
	}
	center := a.sim.Bounds().Center()
	cx, cy := a.cellFromWorld(center)
	if a.inPlayArea(cx, cy) {
		a.screen.SetContent(cx, cy, '✦', nil, hueStyle(280, 0.8, 1).Bold(true))
	}

	// Dotted horizon ring
	horizon := a.sim.HorizonRadius(a.params)
	for i := 0; i < 16; i++ {
		ang := float64(i) / 16 * 2 * math.Pi
		p := vmath.V3Add(center, vmath.Vec3{
			X: math.Cos(ang) * horizon,
			Y: math.Sin(ang) * horizon * 0.55,
		})
		hx, hy := a.cellFromWorld(p)
		if a.inPlayArea(hx, hy) {
			a.screen.SetContent(hx, hy, '·', nil, hueStyle(280, 0.5, 0.6))
		}
	}
}

func (a *App) inPlayArea(cx, cy int) bool {
	return cx >= 0 && cx < a.width && cy >= 1 && cy <= a.playHeight()
}

func (a *App) drawStatus() {
	voices := 0
	rms := 0.0
	if a.engine != nil {
		voices = a.engine.Voices().ActiveVoices()
		rms, _ = a.engine.Graph().Levels()
	}

	status := fmt.Sprintf(" thrum  fps:%3.0f  bodies:%d  voices:%d  gov:%s  %s",
		a.fps, a.sim.Pool().Len(), voices, a.sim.Governor().State(), levelMeter(rms))
	if a.sim.Paused() {
		status += "  [paused]"
	}
	if a.engine != nil && a.engine.IsMuted() {
		status += "  [muted]"
	}
	a.drawText(0, 0, status, tcell.StyleDefault.Reverse(true))
}

func (a *App) drawKnobs() {
	y := a.height - 1
	x := 0
	for i, k := range a.knobs {
		text := fmt.Sprintf(" %s:%.2f ", k.name, k.get(&a.params))
		style := tcell.StyleDefault
		if i == a.sel {
			style = style.Reverse(true)
		}
		for _, r := range text {
			if x >= a.width {
				return
			}
			a.screen.SetContent(x, y, r, nil, style)
			x++
		}
	}
}

func (a *App) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		if x+i >= a.width {
			return
		}
		a.screen.SetContent(x+i, y, r, nil, style)
	}
	// Pad the status row to the full width
	for i := len(text); x+i < a.width; i++ {
		a.screen.SetContent(x+i, y, ' ', nil, style)
	}
}

func levelMeter(rms float64) string {
	const width = 8
	filled := int(vmath.Clamp01(rms*4) * width)
	meter := make([]rune, width)
	for i := range meter {
		if i < filled {
			meter[i] = '▮'
		} else {
			meter[i] = '▯'
		}
	}
	return string(meter)
}
