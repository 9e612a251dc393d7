package physics

import (
	"math"

	"github.com/avikern/thrum/vmath"
)

// ElasticCollision applies an impulse along the contact normal to both
// bodies using inverse masses. Returns (impulse magnitude, applied).
// The impulse is applied only when the pair is approaching: relative
// velocity projected on the normal must be negative with the normal
// pointing from A to B. Separating pairs receive no impulse.
func ElasticCollision(posA, posB, velA, velB *vmath.Vec3, invMassA, invMassB, restitution float64) (float64, bool) {
	dx := posB.X - posA.X
	dy := posB.Y - posA.Y
	dz := posB.Z - posA.Z

	distSq := dx*dx + dy*dy + dz*dz
	if distSq == 0 {
		return 0, false
	}

	dist := math.Sqrt(distSq)
	invDist := 1.0 / dist
	nx, ny, nz := dx*invDist, dy*invDist, dz*invDist

	relVx := velB.X - velA.X
	relVy := velB.Y - velA.Y
	relVz := velB.Z - velA.Z

	// vn < 0 means approaching
	vn := relVx*nx + relVy*ny + relVz*nz
	if vn >= 0 {
		return 0, false
	}

	invSum := invMassA + invMassB
	if invSum == 0 {
		return 0, false
	}

	j := -(1.0 + restitution) * vn / invSum

	jA := j * invMassA
	jB := j * invMassB

	velA.X -= jA * nx
	velA.Y -= jA * ny
	velA.Z -= jA * nz
	velB.X += jB * nx
	velB.Y += jB * ny
	velB.Z += jB * nz

	return j, true
}

// SeparateOverlap pushes overlapping spheres apart along the contact normal,
// split proportionally by inverse mass (lighter body moves more).
// Returns true when a separation was applied.
func SeparateOverlap(posA, posB *vmath.Vec3, radiusA, radiusB, invMassA, invMassB float64) bool {
	dx := posB.X - posA.X
	dy := posB.Y - posA.Y
	dz := posB.Z - posA.Z

	distSq := dx*dx + dy*dy + dz*dz
	minDist := radiusA + radiusB
	if distSq >= minDist*minDist || distSq == 0 {
		return false
	}

	dist := math.Sqrt(distSq)
	overlap := minDist - dist
	invDist := 1.0 / dist
	nx, ny, nz := dx*invDist, dy*invDist, dz*invDist

	invSum := invMassA + invMassB
	if invSum == 0 {
		return false
	}

	sepA := overlap * invMassA / invSum
	sepB := overlap * invMassB / invSum

	posA.X -= nx * sepA
	posA.Y -= ny * sepA
	posA.Z -= nz * sepA
	posB.X += nx * sepB
	posB.Y += ny * sepB
	posB.Z += nz * sepB

	return true
}

// MergeRadius returns the volume-conserving radius of two merged spheres
func MergeRadius(r1, r2 float64) float64 {
	return math.Cbrt(r1*r1*r1 + r2*r2*r2)
}

// ReflectAxis clamps a position component into [lo, hi] and reflects the
// velocity component with the given restitution. Returns true on contact.
// The velocity sign check prevents re-reflecting a body already leaving
// the wall after a previous frame's clamp.
func ReflectAxis(pos, vel *float64, lo, hi, restitution float64) bool {
	if *pos < lo {
		*pos = lo
		if *vel < 0 {
			*vel = -*vel * restitution
		}
		return true
	}
	if *pos > hi {
		*pos = hi
		if *vel > 0 {
			*vel = -*vel * restitution
		}
		return true
	}
	return false
}
