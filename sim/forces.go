package sim

import (
	"math"
	"math/rand"

	"github.com/avikern/thrum/physics"
	"github.com/avikern/thrum/vmath"
)

// voidEpsilon selects between the singularity branch and plain gravity
const voidEpsilon = 0.01

// magnetoPairClamp is the per-pair acceleration ceiling before tempo and
// intensity scaling
const magnetoPairClamp = 160.0

// applyForces runs the per-frame force pass: pairwise accumulation
// (flocking, magneto) first, then the per-entity sequence of viscosity,
// singularity-or-gravity, sway, wind jitter, ceilings and integration.
func (s *Sim) applyForces(p Params, dt float64) {
	ents := s.pool.Entities
	n := len(ents)
	if n == 0 {
		return
	}

	if cap(s.accel) < n {
		s.accel = make([]vmath.Vec3, n)
	}
	s.accel = s.accel[:n]
	for i := range s.accel {
		s.accel[i] = vmath.Vec3{}
	}

	motion := vmath.Clamp(p.Tempo, 0, 2)
	ts := p.TimeScale()

	wave := vmath.Clamp01(p.Wave)
	if wave > WaveEpsilon {
		s.accumulateFlocking(wave, motion)
	}
	s.accumulateMagneto(p, ts)

	voidK := vmath.Clamp01(p.Void)
	center := s.bounds.Center()
	horizon := s.HorizonRadius(p)
	maxAccel := MaxAccel * ts
	maxSpeed := MaxSpeed * ts
	wind := vmath.Clamp01(p.Wind)

	damp := 1 - vmath.Clamp01(p.Freeze)*ViscosityRate*motion*dt
	if damp < 0 {
		damp = 0
	}

	for i, e := range ents {
		e.Vel = vmath.V3Damp(e.Vel, damp)

		// Rest targets; the tidal term below may override this frame
		e.Deform.TargetSX, e.Deform.TargetSY, e.Deform.TargetRot = 1, 1, 0

		accel := s.accel[i]
		if voidK > voidEpsilon {
			f := physics.SingularityAccel(e.Pos, e.Vel, center,
				VoidStrengthScale*voidK,
				VoidSwirlGain*voidK,
				VoidAccretionDrag*voidK,
				VoidSoften)
			accel = vmath.V3Add(accel, f.Accel)
			s.updateCapture(e, f.Dist, horizon)
			s.applyTidalStretch(e, f, horizon)
		} else {
			accel = vmath.V3Add(accel, physics.GravityAccel(GravityAccel*vmath.Clamp01(p.Gravity)))
			if e.Captured() {
				// Field gone: capture no longer applies
				e.CapturedAt, e.Grace = 0, 0
			}
		}

		// Ambient sway, independent of neighbors
		sway := s.now*SwayFreq*2*math.Pi + e.WobblePhase
		accel.X += math.Sin(sway) * SwayAmp
		accel.Z += math.Cos(sway*1.3) * SwayAmp * 0.5

		accel = vmath.V3ClampMag(accel, maxAccel)
		e.Vel = vmath.V3Add(e.Vel, vmath.V3Scale(accel, dt))

		if wind > 0 {
			k := WindImpulse * wind * motion * dt
			e.Vel.X += (rand.Float64()*2 - 1) * k
			e.Vel.Y += (rand.Float64()*2 - 1) * k
			e.Vel.Z += (rand.Float64()*2 - 1) * k
		}

		// Corruption repair before the ceiling: NaN survives clamps
		if !vmath.V3IsFinite(e.Vel) {
			e.Vel = vmath.Vec3{}
		}
		e.Vel = vmath.V3ClampMag(e.Vel, maxSpeed)

		e.Pos = vmath.V3Add(e.Pos, vmath.V3Scale(e.Vel, motion*dt))
		if !vmath.V3IsFinite(e.Pos) {
			e.Pos = center
			e.Vel = vmath.Vec3{}
		}

		// Overlay countdown
		if e.Overlay.Active() {
			e.Overlay.TTL -= dt
			if e.Overlay.TTL <= 0 {
				e.Overlay = Overlay{}
			}
		}
	}
}

// updateCapture marks an entity crossing the horizon with a randomized
// grace window and cancels the mark if it escapes before expiry. Removal
// happens in the sweep once the window elapses.
func (s *Sim) updateCapture(e *Entity, dist, horizon float64) {
	inside := dist < horizon
	switch {
	case inside && !e.Captured():
		e.CapturedAt = s.now
		e.Grace = CaptureGraceMin + rand.Float64()*(CaptureGraceMax-CaptureGraceMin)
	case !inside && e.Captured():
		e.CapturedAt, e.Grace = 0, 0
	}
}

// applyTidalStretch elongates the deformation target along the radial axis
// as the entity nears the horizon
func (s *Sim) applyTidalStretch(e *Entity, f physics.SingularityField, horizon float64) {
	reach := horizon * TidalReach
	if reach <= 0 || f.Dist >= reach {
		return
	}
	t := 1 - f.Dist/reach
	stretch := TidalGain * t * t
	e.Deform.TargetSX = vmath.Clamp(1+stretch, BodyScaleMin, BodyScaleMax)
	e.Deform.TargetSY = vmath.Clamp(1-stretch*0.5, BodyScaleMin, BodyScaleMax)
	e.Deform.TargetRot = math.Atan2(f.Radial.Y, f.Radial.X)
}

// accumulateFlocking adds alignment, cohesion and separation accelerations
// into the scratch buffer, all blended by the wave weight. All-pairs, run
// once per frame before the per-entity loop. Below WaveEpsilon the whole
// pass is skipped; the blend is approximately continuous there.
func (s *Sim) accumulateFlocking(wave, motion float64) {
	ents := s.pool.Entities
	n := len(ents)

	if cap(s.flock) < n {
		s.flock = make([]flockAccum, n)
	}
	s.flock = s.flock[:n]
	for i := range s.flock {
		s.flock[i] = flockAccum{}
	}

	const flockRadiusSq = FlockRadius * FlockRadius
	const sepRadiusSq = SeparationRadius * SeparationRadius

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			delta := vmath.V3Sub(ents[j].Pos, ents[i].Pos)
			distSq := vmath.V3MagSq(delta)
			if distSq >= flockRadiusSq {
				continue
			}

			s.flock[i].velSum = vmath.V3Add(s.flock[i].velSum, ents[j].Vel)
			s.flock[i].posSum = vmath.V3Add(s.flock[i].posSum, ents[j].Pos)
			s.flock[i].n++
			s.flock[j].velSum = vmath.V3Add(s.flock[j].velSum, ents[i].Vel)
			s.flock[j].posSum = vmath.V3Add(s.flock[j].posSum, ents[i].Pos)
			s.flock[j].n++

			if distSq < sepRadiusSq && distSq > 0 {
				push := vmath.V3Scale(delta, -1.0/distSq)
				s.flock[i].sep = vmath.V3Add(s.flock[i].sep, push)
				s.flock[j].sep = vmath.V3Sub(s.flock[j].sep, push)
			}
		}
	}

	blend := wave * motion
	for i, e := range ents {
		f := &s.flock[i]
		if f.n > 0 {
			inv := 1.0 / float64(f.n)
			align := vmath.V3Scale(vmath.V3Sub(vmath.V3Scale(f.velSum, inv), e.Vel), AlignWeight)
			cohere := vmath.V3Scale(vmath.V3Sub(vmath.V3Scale(f.posSum, inv), e.Pos), CohesionWeight)
			s.accel[i] = vmath.V3Add(s.accel[i], vmath.V3Scale(vmath.V3Add(align, cohere), blend))
		}
		s.accel[i] = vmath.V3Add(s.accel[i], vmath.V3Scale(f.sep, SeparationWeight*blend))
	}
}

// accumulateMagneto applies the pairwise charge force symmetrically into
// the scratch buffer. The knob is centered at 0.5; a narrow neutral band
// skips the O(n^2) pass entirely.
func (s *Sim) accumulateMagneto(p Params, ts float64) {
	knob := vmath.Clamp01(p.Magneto)
	drive := math.Abs(knob - 0.5)
	if drive < 0.02 {
		return
	}

	ents := s.pool.Entities
	n := len(ents)
	maxPair := magnetoPairClamp * ts * drive * 2
	const minSq = MagnetoMinDist * MagnetoMinDist
	const maxSq = MagnetoMaxDist * MagnetoMaxDist

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			coeff := physics.MagnetoCoeff(knob, ents[i].Charge, ents[j].Charge, MagnetoStrength, MagnetoBoost)
			if coeff == 0 {
				continue
			}
			acc := physics.MagnetoAccel(ents[i].Pos, ents[j].Pos, coeff, minSq, maxSq, maxPair)
			s.accel[i] = vmath.V3Add(s.accel[i], acc)
			s.accel[j] = vmath.V3Sub(s.accel[j], acc)
		}
	}
}
