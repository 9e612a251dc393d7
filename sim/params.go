package sim

import (
	"github.com/avikern/thrum/vmath"
)

// Params is the read-only per-tick snapshot of the global knob values.
// All knobs are nominally 0..1 except Tempo (0..~2). The simulation never
// mutates a Params value; out-of-range values are clamped where they are
// consumed, non-finite values are repaired here at intake.
type Params struct {
	Tempo         float64 `yaml:"tempo"`
	Gravity       float64 `yaml:"gravity"`
	Wind          float64 `yaml:"wind"`
	Freeze        float64 `yaml:"freeze"`
	Void          float64 `yaml:"void"`
	Magneto       float64 `yaml:"magneto"`
	Wave          float64 `yaml:"wave"`
	Fragmentation float64 `yaml:"fragmentation"`
	Budding       float64 `yaml:"budding"`
	MergeProb     float64 `yaml:"merge"`
	ReverseProb   float64 `yaml:"reverse"`
	Doppler       float64 `yaml:"doppler"`
}

// DefaultParams returns a neutral-feeling knob snapshot
func DefaultParams() Params {
	return Params{
		Tempo:         1.0,
		Gravity:       0.25,
		Wind:          0.1,
		Freeze:        0.05,
		Void:          0.0,
		Magneto:       0.5, // neutral
		Wave:          0.0,
		Fragmentation: 0.1,
		Budding:       0.1,
		MergeProb:     0.15,
		ReverseProb:   0.1,
		Doppler:       0.5,
	}
}

// sanitized repairs non-finite knob values; range clamping stays in the
// force formulas
func (p Params) sanitized() Params {
	p.Tempo = vmath.Sanitize(p.Tempo, 1)
	p.Gravity = vmath.Sanitize(p.Gravity, 0)
	p.Wind = vmath.Sanitize(p.Wind, 0)
	p.Freeze = vmath.Sanitize(p.Freeze, 0)
	p.Void = vmath.Sanitize(p.Void, 0)
	p.Magneto = vmath.Sanitize(p.Magneto, 0.5)
	p.Wave = vmath.Sanitize(p.Wave, 0)
	p.Fragmentation = vmath.Sanitize(p.Fragmentation, 0)
	p.Budding = vmath.Sanitize(p.Budding, 0)
	p.MergeProb = vmath.Sanitize(p.MergeProb, 0)
	p.ReverseProb = vmath.Sanitize(p.ReverseProb, 0)
	p.Doppler = vmath.Sanitize(p.Doppler, 0)
	return p
}

// TimeScale is the motion multiplier derived from the tempo knob, floored
// so clamps and ceilings never collapse to zero
func (p Params) TimeScale() float64 {
	t := p.Tempo
	if t < 0.2 {
		return 0.2
	}
	if t > 2.0 {
		return 2.0
	}
	return t
}
