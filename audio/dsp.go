package audio

import "math"

// biquad is a stereo direct-form-I second-order filter
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     [2]float64
}

func (f *biquad) process(ch int, x float64) float64 {
	y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
	f.x2[ch], f.x1[ch] = f.x1[ch], x
	f.y2[ch], f.y1[ch] = f.y1[ch], y
	return y
}

// setLowShelf configures RBJ low-shelf coefficients; gainDB boosts or cuts
// below freq
func (f *biquad) setLowShelf(freq, gainDB float64, sampleRate int) {
	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * freq / float64(sampleRate)
	cw, sw := math.Cos(w), math.Sin(w)
	alpha := sw / 2 * math.Sqrt2
	sqA := math.Sqrt(a)

	b0 := a * ((a + 1) - (a-1)*cw + 2*sqA*alpha)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - 2*sqA*alpha)
	a0 := (a + 1) + (a-1)*cw + 2*sqA*alpha
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - 2*sqA*alpha

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

// setHighShelf configures RBJ high-shelf coefficients
func (f *biquad) setHighShelf(freq, gainDB float64, sampleRate int) {
	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * freq / float64(sampleRate)
	cw, sw := math.Cos(w), math.Sin(w)
	alpha := sw / 2 * math.Sqrt2
	sqA := math.Sqrt(a)

	b0 := a * ((a + 1) + (a-1)*cw + 2*sqA*alpha)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - 2*sqA*alpha)
	a0 := (a + 1) - (a-1)*cw + 2*sqA*alpha
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - 2*sqA*alpha

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

// setPeak configures an RBJ peaking EQ at freq with the given Q
func (f *biquad) setPeak(freq, gainDB, q float64, sampleRate int) {
	a := math.Pow(10, gainDB/40)
	w := 2 * math.Pi * freq / float64(sampleRate)
	cw, sw := math.Cos(w), math.Sin(w)
	alpha := sw / (2 * q)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

// onePoleLP is a one-pole lowpass used for distance muffling
type onePoleLP struct {
	coeff float64
	state float64
}

func (f *onePoleLP) setCutoff(freq float64, sampleRate int) {
	if freq <= 0 {
		f.coeff = 0
		return
	}
	f.coeff = 1 - math.Exp(-2*math.Pi*freq/float64(sampleRate))
}

func (f *onePoleLP) process(x float64) float64 {
	f.state += f.coeff * (x - f.state)
	return f.state
}

// comb is a feedback comb line with internal damping, one Schroeder stage
type comb struct {
	buf      []float64
	pos      int
	feedback float64
	damp     float64
	filt     float64
}

func newComb(length int, feedback, damp float64) *comb {
	return &comb{buf: make([]float64, length), feedback: feedback, damp: damp}
}

func (c *comb) process(x float64) float64 {
	out := c.buf[c.pos]
	c.filt = out*(1-c.damp) + c.filt*c.damp
	c.buf[c.pos] = x + c.filt*c.feedback
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

// allpass is a Schroeder allpass diffusion stage
type allpass struct {
	buf  []float64
	pos  int
	gain float64
}

func newAllpass(length int, gain float64) *allpass {
	return &allpass{buf: make([]float64, length), gain: gain}
}

func (a *allpass) process(x float64) float64 {
	d := a.buf[a.pos]
	out := d - x*a.gain
	a.buf[a.pos] = x + d*a.gain
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

// limiter is a peak limiter with a fast-attack, slower-release envelope
// follower. Gain reduction engages above threshold and is applied equally
// to both channels to preserve the stereo image.
type limiter struct {
	threshold float64
	attack    float64
	release   float64
	envelope  float64
}

func newLimiter(threshold float64, sampleRate int) *limiter {
	return &limiter{
		threshold: threshold,
		attack:    1 - math.Exp(-1.0/(0.002*float64(sampleRate))),
		release:   1 - math.Exp(-1.0/(0.080*float64(sampleRate))),
	}
}

func (l *limiter) process(left, right float64) (float64, float64) {
	peak := math.Max(math.Abs(left), math.Abs(right))
	if peak > l.envelope {
		l.envelope += l.attack * (peak - l.envelope)
	} else {
		l.envelope += l.release * (peak - l.envelope)
	}

	gain := 1.0
	if l.envelope > l.threshold {
		gain = l.threshold / l.envelope
	}
	return left * gain, right * gain
}
