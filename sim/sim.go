package sim

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/avikern/thrum/vmath"
)

// Bounds is the axis-aligned simulation volume. +Y is down; the Y max face
// is the floor.
type Bounds struct {
	Min, Max vmath.Vec3
}

func (b Bounds) Center() vmath.Vec3 {
	return vmath.V3Scale(vmath.V3Add(b.Min, b.Max), 0.5)
}

func (b Bounds) Size() vmath.Vec3 {
	return vmath.V3Sub(b.Max, b.Min)
}

// DefaultBounds is the reference volume the feel constants are tuned for
func DefaultBounds() Bounds {
	return Bounds{Max: vmath.Vec3{X: 160, Y: 100, Z: 60}}
}

// Sim owns the entity population and advances it one frame at a time.
// It is an explicit simulation context: every subsystem pass receives state
// through it, nothing lives in package globals. Single-threaded by design;
// all mutation happens inside Step, driven by the host's render loop.
type Sim struct {
	bounds Bounds
	pool   *Pool
	gov    *Governor
	log    *zap.Logger

	now    float64
	paused bool

	impacts []Impact
	closest [3]ClosestPair

	// Per-tick scratch, reused across frames
	accel []vmath.Vec3
	flock []flockAccum
}

func New(b Bounds, log *zap.Logger) *Sim {
	if log == nil {
		log = zap.NewNop()
	}
	size := b.Size()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		b = DefaultBounds()
	}
	return &Sim{
		bounds:  b,
		pool:    NewPool(),
		gov:     NewGovernor(log),
		log:     log,
		impacts: make([]Impact, 0, 32),
	}
}

// Step advances the simulation by one frame and returns the audio-relevant
// impact events it produced. The returned slice is reused on the next call.
// Order: governor bookkeeping, shedding, forces+integration, collision
// resolution, removals, budding, then deformation relaxation (which runs
// even while paused).
func (s *Sim) Step(p Params, dt float64) []Impact {
	if dt <= 0 {
		return nil
	}
	p = p.sanitized()

	s.gov.Observe(dt, s.now)
	if dt > ThrottleDelta {
		// Hidden/throttled frame: advance one nominal step instead of
		// teleporting the whole population
		dt = 1.0 / 60.0
	}
	s.now += dt

	s.impacts = s.impacts[:0]
	s.closest = [3]ClosestPair{}

	if !s.paused {
		if s.gov.Shedding() {
			s.shed()
		}
		s.applyForces(p, dt)
		s.resolveCollisions(p)
		s.resolveWalls(p)
		s.sweepRemovals()
		s.applyBudding(p, dt)
		s.updateParticles(p, dt)
	}
	s.relaxDeformation(p, dt)

	return s.impacts
}

// Spawn creates an entity at pos with randomized radius, charge, hue and
// ring offsets
func (s *Sim) Spawn(pos vmath.Vec3) *Entity {
	e := s.pool.Acquire()
	e.Pos = vmath.V3ClampBox(pos, s.bounds.Min, s.bounds.Max)
	e.Radius = SpawnRadiusMin + rand.Float64()*(SpawnRadiusMax-SpawnRadiusMin)
	if rand.Float64() < 0.5 {
		e.Charge = 1
	} else {
		e.Charge = -1
	}
	e.Hue = rand.Float64() * 360
	e.WobblePhase = rand.Float64() * 2 * math.Pi
	for i := range e.BaseOffsets {
		e.BaseOffsets[i] = (rand.Float64()*2 - 1) * WobbleAmp
	}
	e.Vel = vmath.Vec3{
		X: (rand.Float64()*2 - 1) * 4,
		Y: (rand.Float64()*2 - 1) * 4,
		Z: (rand.Float64()*2 - 1) * 2,
	}
	e.SpawnedAt = s.now
	return e
}

// EntityAt returns the nearest live entity whose body (plus slack) covers
// pos, or nil. Used for grab-and-throw.
func (s *Sim) EntityAt(pos vmath.Vec3, slack float64) *Entity {
	var best *Entity
	bestDist := math.Inf(1)
	for _, e := range s.pool.Entities {
		d := vmath.V3Dist(e.Pos, pos)
		if d <= e.Radius+slack && d < bestDist {
			best = e
			bestDist = d
		}
	}
	return best
}

// Throw hands a grabbed entity back to the physics loop with the given
// velocity (derived by the host from recent pointer motion)
func (s *Sim) Throw(e *Entity, vel vmath.Vec3) {
	if e == nil {
		return
	}
	e.Vel = vmath.V3ClampMag(vel, MaxSpeed*2)
	if e.Captured() {
		e.CapturedAt, e.Grace = 0, 0
	}
}

// Reset releases every entity and particle back to the pool and zeroes
// governor and presentation state. The caller's audio graph persists.
func (s *Sim) Reset() {
	s.pool.ReleaseAll()
	s.gov.Reset()
	s.impacts = s.impacts[:0]
	s.closest = [3]ClosestPair{}
}

// SetPaused toggles force integration and collision; deformation and
// ambient wobble keep evolving while paused
func (s *Sim) SetPaused(paused bool) {
	s.paused = paused
}

func (s *Sim) Paused() bool {
	return s.paused
}

// AssignSource attaches an audio-source slot to the entity
func (s *Sim) AssignSource(e *Entity, ref SourceRef) {
	if e != nil {
		e.Source = ref
	}
}

// InvalidateSource clears every entity's reference to ref. Entities keep
// producing sound via the default synthesis path.
func (s *Sim) InvalidateSource(ref SourceRef) {
	for _, e := range s.pool.Entities {
		if e.Source == ref {
			e.Source = SourceRef{}
		}
	}
}

// HorizonRadius is the projected event-horizon radius for the current void
// knob value
func (s *Sim) HorizonRadius(p Params) float64 {
	return HorizonBase + HorizonScale*vmath.Clamp01(p.Void)
}

func (s *Sim) Bounds() Bounds          { return s.bounds }
func (s *Sim) Pool() *Pool             { return s.pool }
func (s *Sim) Governor() *Governor     { return s.gov }
func (s *Sim) Now() float64            { return s.now }
func (s *Sim) Closest() [3]ClosestPair { return s.closest }

// sourceCount counts live entities holding a bank reference; the shedding
// floor never drops below it
func (s *Sim) sourceCount() int {
	n := 0
	for _, e := range s.pool.Entities {
		if e.Source.Valid() {
			n++
		}
	}
	return n
}

// shed removes a governor-determined fraction of old entities with a
// debris burst. Entities holding audio sources go last.
func (s *Sim) shed() {
	live := s.pool.Len()
	floor := FloorMin
	if sc := s.sourceCount(); sc > floor {
		floor = sc
	}
	quota := s.gov.ShedQuota(live, floor)
	if quota == 0 {
		return
	}

	for pass := 0; pass < 2 && quota > 0; pass++ {
		for i := s.pool.Len() - 1; i >= 0 && quota > 0; i-- {
			e := s.pool.Entities[i]
			if s.now-e.SpawnedAt < ShedMinAge {
				continue
			}
			if pass == 0 && e.Source.Valid() {
				continue
			}
			s.spawnDebris(e, ShedDebris, e.Radius*3)
			s.pool.RemoveAt(i)
			quota--
		}
	}
}

// applyBudding splits large entities at a knob-scaled rate; suppressed
// while the governor is degraded to avoid worsening load
func (s *Sim) applyBudding(p Params, dt float64) {
	if s.gov.SuppressBudding() {
		return
	}
	chance := vmath.Clamp01(p.Budding) * BudRatePerSec * dt
	if chance <= 0 {
		return
	}

	n := s.pool.Len() // children appended this tick are not candidates
	for i := 0; i < n; i++ {
		e := s.pool.Entities[i]
		if e.Radius < BudRadiusMin || rand.Float64() >= chance {
			continue
		}

		// Volume split in half: both bodies at r/cbrt(2)
		r := e.Radius / math.Cbrt(2)
		e.Radius = r

		child := s.pool.Acquire()
		child.Radius = r
		child.Charge = -e.Charge
		child.Hue = math.Mod(e.Hue+30, 360)
		child.WobblePhase = rand.Float64() * 2 * math.Pi
		child.BaseOffsets = e.BaseOffsets
		child.SpawnedAt = s.now

		// Push the halves apart perpendicular to the parent velocity
		dir := vmath.V3Normalize(vmath.Vec3{X: -e.Vel.Y, Y: e.Vel.X, Z: (rand.Float64()*2 - 1) * 0.5})
		if dir == (vmath.Vec3{}) {
			dir = vmath.Vec3{X: 1}
		}
		push := vmath.V3Scale(dir, 6.0)
		child.Pos = vmath.V3Add(e.Pos, vmath.V3Scale(dir, r*1.1))
		child.Vel = vmath.V3Add(e.Vel, push)
		e.Vel = vmath.V3Sub(e.Vel, push)
		e.Pos = vmath.V3Sub(e.Pos, vmath.V3Scale(dir, r*1.1))

		s.kickDeform(e, dir, 8)
		s.kickDeform(child, vmath.V3Scale(dir, -1), 8)
	}
}

// sweepRemovals drops entities that merged away (radius 0) or whose
// capture grace window expired. Descending index keeps swap-remove safe.
func (s *Sim) sweepRemovals() {
	for i := s.pool.Len() - 1; i >= 0; i-- {
		e := s.pool.Entities[i]
		switch {
		case e.Radius <= 1e-3:
			s.pool.RemoveAt(i)
		case e.Captured() && s.now-e.CapturedAt >= e.Grace:
			s.spawnDebris(e, ShedDebris, FragDebrisSpeed)
			s.pool.RemoveAt(i)
		}
	}
}

func (s *Sim) spawnDebris(e *Entity, count int, speed float64) {
	for i := 0; i < count; i++ {
		pt := s.pool.AcquireParticle()
		dir := vmath.V3Normalize(vmath.Vec3{
			X: rand.Float64()*2 - 1,
			Y: rand.Float64()*2 - 1,
			Z: rand.Float64()*2 - 1,
		})
		pt.Pos = e.Pos
		pt.Vel = vmath.V3Add(e.Vel, vmath.V3Scale(dir, speed*(0.4+rand.Float64()*0.6)))
		pt.Life = 1
		pt.Hue = e.Hue
		pt.Size = vmath.Clamp(e.Radius*0.3, 0.2, 1.5)
	}
}

func (s *Sim) updateParticles(p Params, dt float64) {
	motion := vmath.Clamp(p.Tempo, 0, 2)
	grav := GravityAccel * 0.3 * vmath.Clamp01(p.Gravity)
	for i := len(s.pool.Particles) - 1; i >= 0; i-- {
		pt := s.pool.Particles[i]
		pt.Vel.Y += grav * dt
		pt.Vel = vmath.V3Damp(pt.Vel, 1-0.8*dt)
		pt.Pos = vmath.V3Add(pt.Pos, vmath.V3Scale(pt.Vel, motion*dt))
		pt.Life -= DebrisLifeDecay * dt
		if pt.Life <= 0 {
			s.pool.RemoveParticleAt(i)
		}
	}
}

type flockAccum struct {
	velSum vmath.Vec3
	posSum vmath.Vec3
	sep    vmath.Vec3
	n      int
}
