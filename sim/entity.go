package sim

import (
	"github.com/avikern/thrum/vmath"
)

// SourceRef is a weak reference into an external audio-source bank.
// The zero value is "no source". Slot numbering is 1-based so a reset
// entity never aliases slot 0; Gen guards against slot reuse by the bank.
type SourceRef struct {
	Slot int
	Gen  uint32
}

// Valid reports whether the reference points at a bank slot at all.
// The bank may still reject it (stale generation); entities must tolerate
// that and fall back to the default synthesis path.
func (r SourceRef) Valid() bool {
	return r.Slot > 0
}

// Overlay is the impact-counter decoration driving the lightning-jump
// effect. Count accumulates collisions; TTL counts down to removal.
type Overlay struct {
	Count int
	TTL   float64
}

func (o Overlay) Active() bool {
	return o.Count > 0 && o.TTL > 0
}

// Deform holds the soft-body spring state: a critically damped 2-axis
// scale/rotation spring plus independent per-vertex radial offset springs.
// Scale rest position is 1; targets move away from rest under tidal stretch.
type Deform struct {
	ScaleX, ScaleY, Rot    float64
	VelSX, VelSY, VelRot   float64
	TargetSX, TargetSY     float64
	TargetRot              float64
	Verts                  [ShapeVerts]float64
	VertVel                [ShapeVerts]float64
}

func (d *Deform) reset() {
	*d = Deform{ScaleX: 1, ScaleY: 1, TargetSX: 1, TargetSY: 1}
}

// Entity is one deformable body in the volume. Exclusively owned by the
// Pool; all fields are value state so a released entity can be fully reset.
type Entity struct {
	ID     uint64
	Pos    vmath.Vec3
	Vel    vmath.Vec3
	Radius float64
	Charge float64 // ±1

	BaseOffsets [ShapeVerts]float64
	WobblePhase float64
	Deform      Deform

	Source SourceRef
	Hue    float64

	SpawnedAt  float64
	CapturedAt float64 // 0 = not captured
	Grace      float64 // randomized capture grace window, seconds

	Overlay Overlay
}

// Captured reports whether the entity is inside a singularity grace window
func (e *Entity) Captured() bool {
	return e.CapturedAt > 0
}

// InvMass returns the inverse mass used for impulse resolution (1/radius)
func (e *Entity) InvMass() float64 {
	if e.Radius <= 0 {
		return 0
	}
	return 1.0 / e.Radius
}

func (e *Entity) reset() {
	id := e.ID
	*e = Entity{ID: id}
	e.Deform.reset()
}

// Particle is transient debris. Life runs 1 -> 0; at or below 0 the pool
// releases it the same tick.
type Particle struct {
	Pos  vmath.Vec3
	Vel  vmath.Vec3
	Life float64
	Hue  float64
	Size float64
}

func (p *Particle) reset() {
	*p = Particle{}
}
