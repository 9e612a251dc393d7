package host

import (
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/avikern/thrum/sim"
	"github.com/avikern/thrum/vmath"
)

const (
	knobStep = 0.05

	// Drag-paint spawns keep at least this many cells apart
	paintSpacingCells = 3.0

	// Pointer samples kept for throw velocity estimation
	pointerHistory = 6
)

// knob is one adjustable parameter surfaced on the HUD
type knob struct {
	name string
	max  float64
	get  func(*sim.Params) float64
	set  func(*sim.Params, float64)
}

func knobTable() []knob {
	return []knob{
		{"tempo", 2, func(p *sim.Params) float64 { return p.Tempo }, func(p *sim.Params, v float64) { p.Tempo = v }},
		{"gravity", 1, func(p *sim.Params) float64 { return p.Gravity }, func(p *sim.Params, v float64) { p.Gravity = v }},
		{"wind", 1, func(p *sim.Params) float64 { return p.Wind }, func(p *sim.Params, v float64) { p.Wind = v }},
		{"freeze", 1, func(p *sim.Params) float64 { return p.Freeze }, func(p *sim.Params, v float64) { p.Freeze = v }},
		{"void", 1, func(p *sim.Params) float64 { return p.Void }, func(p *sim.Params, v float64) { p.Void = v }},
		{"magneto", 1, func(p *sim.Params) float64 { return p.Magneto }, func(p *sim.Params, v float64) { p.Magneto = v }},
		{"wave", 1, func(p *sim.Params) float64 { return p.Wave }, func(p *sim.Params, v float64) { p.Wave = v }},
		{"frag", 1, func(p *sim.Params) float64 { return p.Fragmentation }, func(p *sim.Params, v float64) { p.Fragmentation = v }},
		{"bud", 1, func(p *sim.Params) float64 { return p.Budding }, func(p *sim.Params, v float64) { p.Budding = v }},
		{"merge", 1, func(p *sim.Params) float64 { return p.MergeProb }, func(p *sim.Params, v float64) { p.MergeProb = v }},
		{"reverse", 1, func(p *sim.Params) float64 { return p.ReverseProb }, func(p *sim.Params, v float64) { p.ReverseProb = v }},
		{"doppler", 1, func(p *sim.Params) float64 { return p.Doppler }, func(p *sim.Params, v float64) { p.Doppler = v }},
	}
}

// adjustKnob nudges the selected knob by delta, clamped to its range
func (a *App) adjustKnob(delta float64) {
	k := a.knobs[a.sel]
	k.set(&a.params, vmath.Clamp(k.get(&a.params)+delta, 0, k.max))
}

type pointerSample struct {
	pos vmath.Vec3
	at  time.Time
}

type pointerState struct {
	held      bool
	grabbed   *sim.Entity
	grabbedID uint64
	lastPaint vmath.Vec3
	painted   bool
	history   []pointerSample
}

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.width, a.height = a.screen.Size()
		a.screen.Sync()
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.quit = true
	case tcell.KeyTab:
		a.sel = (a.sel + 1) % len(a.knobs)
	case tcell.KeyBacktab:
		a.sel = (a.sel + len(a.knobs) - 1) % len(a.knobs)
	case tcell.KeyUp, tcell.KeyRight:
		a.adjustKnob(knobStep)
	case tcell.KeyDown, tcell.KeyLeft:
		a.adjustKnob(-knobStep)
	case tcell.KeyRune:
		a.handleRune(ev.Rune())
	}
}

func (a *App) handleRune(r rune) {
	switch r {
	case 'q':
		a.quit = true
	case ' ':
		paused := !a.sim.Paused()
		a.sim.SetPaused(paused)
		if a.engine != nil {
			if paused {
				a.engine.Suspend()
			} else {
				a.engine.Resume()
			}
		}
	case 'r':
		a.sim.Reset()
		a.bridge.Reset()
		a.params = sim.DefaultParams()
		a.log.Info("world reset")
	case 'm':
		if a.engine != nil {
			a.engine.ToggleMute()
		}
	case 's':
		a.sim.Spawn(randomSpawnPos(a.sim.Bounds()))
	case '+', '=':
		a.adjustKnob(knobStep)
	case '-', '_':
		a.adjustKnob(-knobStep)
	}
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	cx, cy := ev.Position()
	pos := a.worldFromCell(cx, cy)
	now := time.Now()

	switch {
	case ev.Buttons()&tcell.Button1 != 0:
		if !a.pointer.held {
			a.beginPress(pos)
		} else {
			a.continuePress(pos)
		}
		a.pushPointer(pos, now)
		a.pointer.held = true

	case ev.Buttons()&tcell.WheelUp != 0:
		a.adjustKnob(knobStep)
	case ev.Buttons()&tcell.WheelDown != 0:
		a.adjustKnob(-knobStep)

	default:
		if a.pointer.held {
			a.endPress(now)
		}
	}
}

// beginPress either grabs the entity under the pointer or starts paint
// spawning
func (a *App) beginPress(pos vmath.Vec3) {
	if e := a.sim.EntityAt(pos, 1.5); e != nil {
		a.pointer.grabbed = e
		a.pointer.grabbedID = e.ID
		return
	}
	a.sim.Spawn(pos)
	a.pointer.lastPaint = pos
	a.pointer.painted = true
}

func (a *App) continuePress(pos vmath.Vec3) {
	if a.pointer.grabbed != nil {
		// Stale pointer check: the pool may have reused the slot
		if a.pointer.grabbed.ID != a.pointer.grabbedID {
			a.pointer.grabbed = nil
			return
		}
		b := a.sim.Bounds()
		r := a.pointer.grabbed.Radius
		inset := vmath.Vec3{X: r, Y: r, Z: r}
		a.pointer.grabbed.Pos = vmath.V3ClampBox(pos, vmath.V3Add(b.Min, inset), vmath.V3Sub(b.Max, inset))
		a.pointer.grabbed.Vel = vmath.Vec3{}
		return
	}

	// Drag-paint with minimum spacing
	spacing := a.cellWidth() * paintSpacingCells
	if a.pointer.painted && vmath.V3Dist(pos, a.pointer.lastPaint) < spacing {
		return
	}
	a.sim.Spawn(pos)
	a.pointer.lastPaint = pos
	a.pointer.painted = true
}

// endPress releases a grab as a throw, velocity from recent pointer motion
func (a *App) endPress(now time.Time) {
	if a.pointer.grabbed != nil && a.pointer.grabbed.ID == a.pointer.grabbedID {
		if vel, ok := throwVelocity(a.pointer.history, now); ok {
			a.sim.Throw(a.pointer.grabbed, vel)
			a.log.Debug("entity thrown",
				zap.Uint64("id", a.pointer.grabbedID),
				zap.Float64("speed", vmath.V3Mag(vel)))
		}
	}
	a.pointer = pointerState{}
}

func (a *App) pushPointer(pos vmath.Vec3, at time.Time) {
	a.pointer.history = append(a.pointer.history, pointerSample{pos: pos, at: at})
	if len(a.pointer.history) > pointerHistory {
		a.pointer.history = a.pointer.history[1:]
	}
}

// throwVelocity estimates release velocity from the pointer trail. Stale
// trails (pointer at rest) produce no throw.
func throwVelocity(history []pointerSample, release time.Time) (vmath.Vec3, bool) {
	if len(history) < 2 {
		return vmath.Vec3{}, false
	}
	first, last := history[0], history[len(history)-1]
	dt := last.at.Sub(first.at).Seconds()
	if dt <= 0 || release.Sub(last.at).Seconds() > 0.1 {
		return vmath.Vec3{}, false
	}
	return vmath.V3Scale(vmath.V3Sub(last.pos, first.pos), 1.0/dt), true
}

func randomSpawnPos(b sim.Bounds) vmath.Vec3 {
	span := vmath.V3Sub(b.Max, b.Min)
	return vmath.Vec3{
		X: b.Min.X + span.X*(0.15+0.7*rand.Float64()),
		Y: b.Min.Y + span.Y*(0.15+0.7*rand.Float64()),
		Z: b.Min.Z + span.Z*(0.15+0.7*rand.Float64()),
	}
}
