package sim

import (
	"math"
	"math/rand"

	"github.com/avikern/thrum/physics"
	"github.com/avikern/thrum/vmath"
)

// resolveCollisions runs the all-pairs narrow phase: proximity tracking,
// probabilistic merging, elastic impulses with de-overlap, deformation
// kicks, overlay bookkeeping and impact-driven fragmentation. O(n^2) is
// acceptable because the governor keeps n small.
func (s *Sim) resolveCollisions(p Params) {
	ents := s.pool.Entities
	mergeProb := vmath.Clamp01(p.MergeProb)
	fragProb := vmath.Clamp01(p.Fragmentation)

	for i := 0; i < len(ents); i++ {
		a := ents[i]
		if a.Radius <= 0 {
			continue
		}
		for j := i + 1; j < len(ents); j++ {
			b := ents[j]
			if b.Radius <= 0 {
				continue
			}

			delta := vmath.V3Sub(b.Pos, a.Pos)
			distSq := vmath.V3MagSq(delta)
			rsum := a.Radius + b.Radius
			prox := rsum * ProximityFactor
			if distSq >= prox*prox {
				continue
			}

			s.trackClosest(a, b, distSq)

			if distSq >= rsum*rsum {
				continue
			}

			if rand.Float64() < mergeProb {
				s.merge(a, b)
				if a.Radius <= 0 {
					// a was the absorbed side; it must not keep
					// contacting the rest of the row
					break
				}
				continue
			}

			imp, ok := physics.ElasticCollision(&a.Pos, &b.Pos, &a.Vel, &b.Vel,
				a.InvMass(), b.InvMass(), BodyRestitution)
			physics.SeparateOverlap(&a.Pos, &b.Pos, a.Radius, b.Radius, a.InvMass(), b.InvMass())
			if !ok {
				continue
			}

			normal := vmath.V3Normalize(delta)
			s.kickDeform(a, normal, imp)
			s.kickDeform(b, vmath.V3Scale(normal, -1), imp)
			s.updateOverlay(a, b)

			// One event per contact, voiced by the larger body
			louder := a
			if b.Radius > a.Radius {
				louder = b
			}
			s.emit(ImpactCollision, louder, imp)

			s.maybeFragment(fragProb, a, b, imp)
		}
	}
}

// merge performs a volume-conserving absorption: the larger body takes
// cbrt(r1^3+r2^3) and the momentum-weighted velocity; the smaller is
// zeroed and removed by the next sweep.
func (s *Sim) merge(a, b *Entity) {
	big, small := a, b
	if small.Radius > big.Radius {
		big, small = small, big
	}

	mBig := big.Radius * big.Radius * big.Radius
	mSmall := small.Radius * small.Radius * small.Radius
	total := mBig + mSmall
	if total > 0 {
		big.Vel = vmath.V3Scale(
			vmath.V3Add(vmath.V3Scale(big.Vel, mBig), vmath.V3Scale(small.Vel, mSmall)),
			1.0/total)
	}

	big.Radius = physics.MergeRadius(big.Radius, small.Radius)
	small.Radius = 0

	if small.Overlay.Active() && !big.Overlay.Active() {
		big.Overlay = small.Overlay
	}
	small.Overlay = Overlay{}

	s.emit(ImpactMerge, big, mSmall)
}

// maybeFragment shatters the smaller body of a hard contact into debris,
// scaled by the fragmentation knob
func (s *Sim) maybeFragment(fragProb float64, a, b *Entity, impulse float64) {
	if impulse < FragImpulseMin || rand.Float64() >= fragProb {
		return
	}
	small := a
	if b.Radius < a.Radius {
		small = b
	}
	if small.Radius < FragMinRadius {
		return
	}
	s.spawnDebris(small, FragDebrisCount, FragDebrisSpeed)
	small.Radius = 0
}

// updateOverlay advances the lightning-jump impact counter: an active
// overlay counts the hit and may jump to the contact partner; bare
// contacts rarely seed a fresh one.
func (s *Sim) updateOverlay(a, b *Entity) {
	switch {
	case a.Overlay.Active() || b.Overlay.Active():
		src, dst := a, b
		if b.Overlay.Active() {
			src, dst = b, a
		}
		src.Overlay.Count++
		src.Overlay.TTL = OverlayTTL
		if !dst.Overlay.Active() && rand.Float64() < OverlayJumpProb {
			dst.Overlay = src.Overlay
			src.Overlay = Overlay{}
		}
	case rand.Float64() < OverlaySeedProb:
		a.Overlay = Overlay{Count: 1, TTL: OverlayTTL}
	}
}

// resolveWalls reflects entities off the volume faces. The floor loses
// restitution as gravity rises (inelastic settling). Wall hits kick the
// deformation springs and, unless the singularity dominates, emit an
// audio event.
func (s *Sim) resolveWalls(p Params) {
	b := s.bounds
	gravity := vmath.Clamp01(p.Gravity)
	floorRest := WallRestitution - FloorSoftening*gravity
	voidK := vmath.Clamp01(p.Void)
	negInf := math.Inf(-1)
	posInf := math.Inf(1)

	for _, e := range s.pool.Entities {
		if e.Radius <= 0 {
			continue
		}
		r := e.Radius
		before := e.Vel

		hitX := physics.ReflectAxis(&e.Pos.X, &e.Vel.X, b.Min.X+r, b.Max.X-r, WallRestitution)
		hitZ := physics.ReflectAxis(&e.Pos.Z, &e.Vel.Z, b.Min.Z+r, b.Max.Z-r, WallRestitution)
		// Ceiling and floor restitution differ, so Y is two one-sided calls
		hitC := physics.ReflectAxis(&e.Pos.Y, &e.Vel.Y, b.Min.Y+r, posInf, WallRestitution)
		hitF := physics.ReflectAxis(&e.Pos.Y, &e.Vel.Y, negInf, b.Max.Y-r, floorRest)

		if !(hitX || hitZ || hitC || hitF) {
			continue
		}

		deltaV := vmath.V3Sub(before, e.Vel)
		speed := vmath.V3Mag(deltaV)
		if speed <= 0 {
			continue
		}

		normal := vmath.V3Normalize(deltaV)
		impulse := speed * e.Radius
		s.kickDeform(e, normal, impulse)

		if speed > WallSoundMinSpeed && voidK < VoidDominance {
			s.emit(ImpactWall, e, impulse)
		}
	}
}
