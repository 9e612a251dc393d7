package audio

import (
	"math"
	"sync/atomic"
)

// smoothedParam is a parameter written by the simulation tick and read by
// the audio render path. The target is an atomic float64; the current value
// approaches it with a first-order exponential ramp advanced per sample, so
// external writes never step the signal.
type smoothedParam struct {
	target atomic.Uint64
	value  float64
	coeff  float64
}

// newSmoothedParam creates a parameter at initial that covers most of a
// step change within tau seconds
func newSmoothedParam(initial, tau float64, sampleRate int) *smoothedParam {
	p := &smoothedParam{value: initial}
	p.target.Store(math.Float64bits(initial))
	if tau <= 0 {
		p.coeff = 1
	} else {
		p.coeff = 1 - math.Exp(-1.0/(tau*float64(sampleRate)))
	}
	return p
}

// Set updates the ramp target. Safe from any goroutine.
func (p *smoothedParam) Set(v float64) {
	p.target.Store(math.Float64bits(v))
}

// Target returns the most recently set target
func (p *smoothedParam) Target() float64 {
	return math.Float64frombits(p.target.Load())
}

// next advances the ramp one sample and returns the current value.
// Render-path only.
func (p *smoothedParam) next() float64 {
	t := math.Float64frombits(p.target.Load())
	p.value += p.coeff * (t - p.value)
	return p.value
}

// current returns the ramp value without advancing it
func (p *smoothedParam) current() float64 {
	return p.value
}

// step advances the ramp by n samples in one update. Used for block-rate
// parameters whose consumers recompute coefficients per buffer.
func (p *smoothedParam) step(n int) float64 {
	t := math.Float64frombits(p.target.Load())
	k := 1 - math.Pow(1-p.coeff, float64(n))
	p.value += k * (t - p.value)
	return p.value
}
