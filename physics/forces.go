package physics

import (
	"math"

	"github.com/avikern/thrum/vmath"
)

// GravityAccel returns plain downward gravity (+Y is down in world space)
func GravityAccel(g float64) vmath.Vec3 {
	return vmath.Vec3{Y: g}
}

// SingularityField is the result of evaluating the central attractor at a
// point: the net acceleration, the current distance to center, and the
// radial unit vector (point toward center).
type SingularityField struct {
	Accel  vmath.Vec3
	Dist   float64
	Radial vmath.Vec3 // unit, toward center
}

// SingularityAccel evaluates inverse-square attraction toward center with a
// softening term, a tangential swirl proportional to strength (spiral infall
// instead of radial collapse), and accretion drag that bleeds the tangential
// velocity component so orbits decay into capture.
// swirl and drag are dimensionless gains; soften prevents the singular
// acceleration at dist -> 0.
func SingularityAccel(pos, vel, center vmath.Vec3, strength, swirl, drag, soften float64) SingularityField {
	delta := vmath.V3Sub(center, pos)
	distSq := vmath.V3MagSq(delta)
	dist := math.Sqrt(distSq)

	if dist == 0 {
		return SingularityField{}
	}

	radial := vmath.V3Scale(delta, 1.0/dist)

	// Softened inverse square
	accelMag := strength / (distSq + soften)
	accel := vmath.V3Scale(radial, accelMag)

	// Swirl acts in the XY plane, perpendicular to the radial direction
	tangent := vmath.Vec3{X: -radial.Y, Y: radial.X}
	accel = vmath.V3Add(accel, vmath.V3Scale(tangent, accelMag*swirl))

	// Accretion drag: damp the tangential velocity component
	tanSpeed := vmath.V3Dot(vel, tangent)
	accel = vmath.V3Add(accel, vmath.V3Scale(tangent, -tanSpeed*drag))

	return SingularityField{Accel: accel, Dist: dist, Radial: radial}
}

// MagnetoAccel returns the pairwise charge-force acceleration on body A.
// Newton's third law: the caller applies the negation to body B.
// coeff carries the sign (positive = attraction along A->B), magnitude
// follows inverse square with per-pair clamping to maxAccel.
// Zero outside the (minDistSq, maxDistSq) active band.
func MagnetoAccel(posA, posB vmath.Vec3, coeff, minDistSq, maxDistSq, maxAccel float64) vmath.Vec3 {
	delta := vmath.V3Sub(posB, posA)
	distSq := vmath.V3MagSq(delta)

	if distSq <= minDistSq || distSq >= maxDistSq {
		return vmath.Vec3{}
	}

	mag := vmath.Clamp(coeff/distSq, -maxAccel, maxAccel)
	invDist := 1.0 / math.Sqrt(distSq)
	return vmath.V3Scale(delta, mag*invDist)
}

// MagnetoCoeff resolves the signed force coefficient for a charge pair from
// the knob value. knob is centered at 0.5: above is "attract" mode, below is
// "repel" mode. In attract mode opposite charges get the boosted positive
// coefficient and like charges a weaker negative one; repel mode inverts the
// roles. The asymmetric boost is a tuned feel constant.
func MagnetoCoeff(knob, chargeA, chargeB, baseStrength, boost float64) float64 {
	drive := (knob - 0.5) * 2 // [-1, 1]
	if drive == 0 {
		return 0
	}

	opposite := chargeA*chargeB < 0
	strength := baseStrength * math.Abs(drive)

	if drive > 0 {
		if opposite {
			return strength * boost
		}
		return -strength
	}
	if opposite {
		return -strength
	}
	return strength * boost
}
