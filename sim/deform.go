package sim

import (
	"math"
	"math/rand"

	"github.com/avikern/thrum/vmath"
)

// relaxDeformation advances every entity's squash/stretch and ring-wobble
// springs toward their targets at a tempo-scaled rate, then resets the
// targets to rest so the next force pass must reassert tidal stretch.
// Runs every frame, including while paused: pure state evolution,
// independent of force computation.
func (s *Sim) relaxDeformation(p Params, dt float64) {
	rate := dt * p.TimeScale()

	for _, e := range s.pool.Entities {
		d := &e.Deform
		if s.paused {
			d.TargetSX, d.TargetSY, d.TargetRot = 1, 1, 0
		}

		vmath.SpringStep(&d.ScaleX, &d.VelSX, d.TargetSX, DeformOmega, rate)
		vmath.SpringStep(&d.ScaleY, &d.VelSY, d.TargetSY, DeformOmega, rate)
		vmath.SpringStep(&d.Rot, &d.VelRot, d.TargetRot, DeformOmega, rate)

		d.ScaleX = vmath.Clamp(d.ScaleX, BodyScaleMin, BodyScaleMax)
		d.ScaleY = vmath.Clamp(d.ScaleY, BodyScaleMin, BodyScaleMax)

		for v := range d.Verts {
			vmath.SpringStep(&d.Verts[v], &d.VertVel[v], 0, VertexOmega, rate)
			d.Verts[v] = vmath.Clamp(d.Verts[v], -VertexOffsetMax, VertexOffsetMax)
		}

		e.WobblePhase += WobbleRate * rate

		d.TargetSX, d.TargetSY, d.TargetRot = 1, 1, 0
	}
}

// kickDeform converts an impact impulse into spring velocity: squash along
// the contact axis, a slight bulge across it, a small random twist, and a
// localized dent in the vertex ring nearest the contact direction.
func (s *Sim) kickDeform(e *Entity, normal vmath.Vec3, impulse float64) {
	k := vmath.Clamp(impulse*DeformKickGain, 0, DeformKickMax)
	if k <= 0 {
		return
	}

	ax := math.Abs(normal.X)
	ay := math.Abs(normal.Y)
	vmath.SpringKick(&e.Deform.VelSX, -k*ax+k*0.4*ay, DeformKickMax)
	vmath.SpringKick(&e.Deform.VelSY, -k*ay+k*0.4*ax, DeformKickMax)
	vmath.SpringKick(&e.Deform.VelRot, (rand.Float64()-0.5)*k*0.3, DeformKickMax)

	// Dent the ring vertex facing the contact, half strength on neighbors
	ang := math.Atan2(normal.Y, normal.X)
	if ang < 0 {
		ang += 2 * math.Pi
	}
	idx := int(math.Round(ang/(2*math.Pi/ShapeVerts))) % ShapeVerts
	prev := (idx + ShapeVerts - 1) % ShapeVerts
	next := (idx + 1) % ShapeVerts

	vk := k * 0.12
	vmath.SpringKick(&e.Deform.VertVel[idx], -vk, DeformKickMax)
	vmath.SpringKick(&e.Deform.VertVel[prev], -vk*0.5, DeformKickMax)
	vmath.SpringKick(&e.Deform.VertVel[next], -vk*0.5, DeformKickMax)
}

// VertexOffset returns the rendered radial offset of ring vertex v:
// the ambient wobble plus the impact spring state, clamped to the ring
// limit. Presentation helper for the host renderer.
func (e *Entity) VertexOffset(v int) float64 {
	if v < 0 || v >= ShapeVerts {
		return 0
	}
	wobble := e.BaseOffsets[v] * math.Sin(e.WobblePhase+float64(v))
	return vmath.Clamp(wobble+e.Deform.Verts[v], -VertexOffsetMax, VertexOffsetMax)
}
