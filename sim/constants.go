package sim

// Tuned feel constants. Magnitudes matter relative to each other and to the
// default world bounds (160 x 100 x 60); the exact literals are not
// load-bearing invariants.
const (
	// ShapeVerts is the size of the per-entity vertex ring
	ShapeVerts = 8

	// Motion ceilings, scaled by max(0.2, tempo) at application time
	MaxSpeed = 60.0
	MaxAccel = 240.0

	// Viscosity ("freeze" knob) damping rate per second at tempo 1
	ViscosityRate = 3.0

	// Wind jitter impulse per second at knob 1, tempo 1
	WindImpulse = 40.0

	// Plain gravity acceleration at knob 1 (+Y is down)
	GravityAccel = 90.0

	// Singularity field
	VoidStrengthScale = 24000.0 // inverse-square numerator at knob 1
	VoidSoften        = 16.0    // softening added to distSq
	VoidSwirlGain     = 0.55
	VoidAccretionDrag = 1.4
	HorizonBase       = 2.0
	HorizonScale      = 6.0
	TidalGain         = 0.6
	TidalReach        = 3.0 // stretch ramps in below reach * horizon radius
	CaptureGraceMin   = 1.0 // seconds, tempo-independent
	CaptureGraceMax   = 2.0

	// Magneto pairwise force
	MagnetoStrength = 900.0
	MagnetoBoost    = 2.5 // favored-pair multiplier
	MagnetoMinDist  = 3.0
	MagnetoMaxDist  = 70.0

	// Flocking
	FlockRadius      = 24.0
	SeparationRadius = 7.0
	AlignWeight      = 1.6
	CohesionWeight   = 0.9
	SeparationWeight = 14.0
	WaveEpsilon      = 0.01
	SwayAmp          = 2.5
	SwayFreq         = 0.7

	// Collision response
	WallRestitution    = 0.9
	FloorSoftening     = 0.35 // floor restitution loss at gravity knob 1
	BodyRestitution    = 0.85
	ProximityFactor    = 3.0 // broad-pass radius multiple for closest-pair tracking
	WallSoundMinSpeed  = 4.0
	VoidDominance      = 0.65 // wall sounds suppressed above this void knob
	FragImpulseMin     = 18.0
	FragDebrisCount    = 10
	FragMinRadius      = 1.2

	// Deformation springs
	DeformOmega     = 11.0
	VertexOmega     = 15.0
	BodyScaleMin    = 0.7
	BodyScaleMax    = 1.3
	VertexOffsetMax = 0.35
	DeformKickGain  = 0.06
	DeformKickMax   = 4.0
	WobbleRate      = 2.2
	WobbleAmp       = 0.06

	// Spawn variation
	SpawnRadiusMin = 1.5
	SpawnRadiusMax = 4.5

	// Budding (entity splitting)
	BudRadiusMin  = 2.8
	BudRatePerSec = 0.25 // split probability per second at knob 1

	// Impact-counter overlay ("lightning jump")
	OverlaySeedProb = 0.02
	OverlayJumpProb = 0.25
	OverlayTTL      = 6.0

	// Debris particles
	DebrisLifeDecay = 1.4 // life units per second
	ShedDebris      = 6
	FragDebrisSpeed = 18.0

	// Frame deltas above this are treated as throttled/hidden frames
	ThrottleDelta = 0.25
)
