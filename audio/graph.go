package audio

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
)

// GraphSettings configures the persistent effects chain
type GraphSettings struct {
	SampleRate int

	MasterVolume float64
	ReverbMix    float64
	DelayMix     float64

	// Ping-pong delay: independent per-line times and feedbacks
	DelayTimeL time.Duration
	DelayTimeR time.Duration
	FeedbackL  float64
	FeedbackR  float64

	// 3-band EQ gains in dB
	EQLowDB  float64
	EQMidDB  float64
	EQHighDB float64

	LimitThreshold float64
}

// DefaultGraphSettings returns the tuned chain defaults
func DefaultGraphSettings() GraphSettings {
	return GraphSettings{
		SampleRate:     44100,
		MasterVolume:   0.8,
		ReverbMix:      0.25,
		DelayMix:       0.18,
		DelayTimeL:     230 * time.Millisecond,
		DelayTimeR:     340 * time.Millisecond,
		FeedbackL:      0.35,
		FeedbackR:      0.30,
		LimitThreshold: 0.85,
	}
}

const (
	eqLowFreq  = 220.0
	eqMidFreq  = 1200.0
	eqMidQ     = 0.9
	eqHighFreq = 5200.0

	paramTau = 0.03 // seconds to cover most of a parameter step
)

// Schroeder tunings (samples at 44.1k); the right channel is offset to
// decorrelate the stereo tail
var (
	reverbCombLens    = [4]int{1557, 1617, 1491, 1422}
	reverbAllpassLens = [2]int{225, 556}
)

const (
	reverbCombFeedback = 0.805
	reverbCombDamp     = 0.25
	reverbAllpassGain  = 0.5
	reverbStereoOffset = 23
)

// pingPongDelay is two cross-fed delay lines: each line's write input mixes
// the dry signal with the opposite line's delayed output
type pingPongDelay struct {
	bufL, bufR []float64
	posL, posR int
	fbL, fbR   float64
}

func newPingPongDelay(timeL, timeR time.Duration, fbL, fbR float64, sampleRate int) *pingPongDelay {
	nL := int(float64(sampleRate) * timeL.Seconds())
	nR := int(float64(sampleRate) * timeR.Seconds())
	if nL < 1 {
		nL = 1
	}
	if nR < 1 {
		nR = 1
	}
	return &pingPongDelay{
		bufL: make([]float64, nL),
		bufR: make([]float64, nR),
		fbL:  fbL,
		fbR:  fbR,
	}
}

func (d *pingPongDelay) process(inL, inR float64) (float64, float64) {
	outL := d.bufL[d.posL]
	outR := d.bufR[d.posR]

	d.bufL[d.posL] = inL + outR*d.fbL
	d.bufR[d.posR] = inR + outL*d.fbR

	d.posL++
	if d.posL >= len(d.bufL) {
		d.posL = 0
	}
	d.posR++
	if d.posR >= len(d.bufR) {
		d.posR = 0
	}
	return outL, outR
}

// reverbChannel is one Schroeder network: parallel combs into serial
// allpass diffusers
type reverbChannel struct {
	combs [4]*comb
	aps   [2]*allpass
}

func newReverbChannel(offset int) *reverbChannel {
	rc := &reverbChannel{}
	for i, n := range reverbCombLens {
		rc.combs[i] = newComb(n+offset, reverbCombFeedback, reverbCombDamp)
	}
	for i, n := range reverbAllpassLens {
		rc.aps[i] = newAllpass(n+offset, reverbAllpassGain)
	}
	return rc
}

func (rc *reverbChannel) process(x float64) float64 {
	sum := 0.0
	for _, c := range rc.combs {
		sum += c.process(x)
	}
	sum *= 0.25
	for _, a := range rc.aps {
		sum = a.process(sum)
	}
	return sum
}

// Graph is the persistent effects chain, built once and played for the
// process lifetime. Voices mix in at the head; the chain is
// dry + reverb + ping-pong delay, then 3-band EQ, master gain, limiter and
// an analysis tap. It streams silence when no voice is active so the
// speaker never starves.
//
// Stream runs on the hardware audio path; every externally written
// parameter crosses in through a smoothedParam ramp, never a direct field
// write.
type Graph struct {
	rate   beep.SampleRate
	voices beep.Mixer

	delay   *pingPongDelay
	revL    *reverbChannel
	revR    *reverbChannel
	eqLow   biquad
	eqMid   biquad
	eqHigh  biquad
	limit   *limiter
	scratch [][2]float64

	master    *smoothedParam
	reverbMix *smoothedParam
	delayMix  *smoothedParam
	eqLowDB   *smoothedParam
	eqMidDB   *smoothedParam
	eqHighDB  *smoothedParam

	// Applied EQ gains; coefficients recompute when the ramp moves
	curLowDB, curMidDB, curHighDB float64

	rms  atomic.Uint64
	peak atomic.Uint64
}

// NewGraph builds the chain from settings
func NewGraph(cfg GraphSettings) *Graph {
	sr := cfg.SampleRate
	g := &Graph{
		rate:      beep.SampleRate(sr),
		delay:     newPingPongDelay(cfg.DelayTimeL, cfg.DelayTimeR, cfg.FeedbackL, cfg.FeedbackR, sr),
		revL:      newReverbChannel(0),
		revR:      newReverbChannel(reverbStereoOffset),
		limit:     newLimiter(cfg.LimitThreshold, sr),
		master:    newSmoothedParam(cfg.MasterVolume, paramTau, sr),
		reverbMix: newSmoothedParam(cfg.ReverbMix, paramTau, sr),
		delayMix:  newSmoothedParam(cfg.DelayMix, paramTau, sr),
		eqLowDB:   newSmoothedParam(cfg.EQLowDB, paramTau, sr),
		eqMidDB:   newSmoothedParam(cfg.EQMidDB, paramTau, sr),
		eqHighDB:  newSmoothedParam(cfg.EQHighDB, paramTau, sr),
	}
	g.curLowDB, g.curMidDB, g.curHighDB = cfg.EQLowDB, cfg.EQMidDB, cfg.EQHighDB
	g.eqLow.setLowShelf(eqLowFreq, g.curLowDB, sr)
	g.eqMid.setPeak(eqMidFreq, g.curMidDB, eqMidQ, sr)
	g.eqHigh.setHighShelf(eqHighFreq, g.curHighDB, sr)
	return g
}

// SampleRate returns the graph's render rate
func (g *Graph) SampleRate() beep.SampleRate {
	return g.rate
}

// AddVoice mixes a voice streamer into the head of the chain. Caller must
// hold the speaker lock.
func (g *Graph) AddVoice(s beep.Streamer) {
	g.voices.Add(s)
}

// SetMaster ramps master gain. Safe from the tick goroutine.
func (g *Graph) SetMaster(v float64)    { g.master.Set(clamp01(v)) }
func (g *Graph) SetReverbMix(v float64) { g.reverbMix.Set(clamp01(v)) }
func (g *Graph) SetDelayMix(v float64)  { g.delayMix.Set(clamp01(v)) }

// SetEQ ramps the three band gains, in dB, clamped to ±18
func (g *Graph) SetEQ(lowDB, midDB, highDB float64) {
	g.eqLowDB.Set(clampDB(lowDB))
	g.eqMidDB.Set(clampDB(midDB))
	g.eqHighDB.Set(clampDB(highDB))
}

// Levels returns the RMS and peak of the most recent render buffer
func (g *Graph) Levels() (rms, peak float64) {
	return math.Float64frombits(g.rms.Load()), math.Float64frombits(g.peak.Load())
}

func (g *Graph) Stream(samples [][2]float64) (n int, ok bool) {
	if len(g.scratch) < len(samples) {
		g.scratch = make([][2]float64, len(samples))
	}
	dry := g.scratch[:len(samples)]
	for i := range dry {
		dry[i][0], dry[i][1] = 0, 0
	}
	g.voices.Stream(dry)

	g.updateEQ(len(samples))

	sumSq := 0.0
	pk := 0.0
	for i := range samples {
		dl, dr := dry[i][0], dry[i][1]

		rv := g.reverbMix.next()
		mono := (dl + dr) * 0.5
		wl := g.revL.process(mono)
		wr := g.revR.process(mono)

		dm := g.delayMix.next()
		el, er := g.delay.process(dl, dr)

		l := dl + wl*rv + el*dm
		r := dr + wr*rv + er*dm

		l = g.eqHigh.process(0, g.eqMid.process(0, g.eqLow.process(0, l)))
		r = g.eqHigh.process(1, g.eqMid.process(1, g.eqLow.process(1, r)))

		m := g.master.next()
		l, r = g.limit.process(l*m, r*m)

		samples[i][0] = l
		samples[i][1] = r

		sumSq += (l*l + r*r) * 0.5
		if a := math.Max(math.Abs(l), math.Abs(r)); a > pk {
			pk = a
		}
	}

	if len(samples) > 0 {
		g.rms.Store(math.Float64bits(math.Sqrt(sumSq / float64(len(samples)))))
		g.peak.Store(math.Float64bits(pk))
	}
	return len(samples), true
}

func (g *Graph) Err() error { return nil }

// updateEQ advances the block-rate gain ramps and recomputes coefficients
// only when a band actually moved
func (g *Graph) updateEQ(n int) {
	sr := int(g.rate)
	if v := g.eqLowDB.step(n); math.Abs(v-g.curLowDB) > 0.01 {
		g.curLowDB = v
		g.eqLow.setLowShelf(eqLowFreq, v, sr)
	}
	if v := g.eqMidDB.step(n); math.Abs(v-g.curMidDB) > 0.01 {
		g.curMidDB = v
		g.eqMid.setPeak(eqMidFreq, v, eqMidQ, sr)
	}
	if v := g.eqHighDB.step(n); math.Abs(v-g.curHighDB) > 0.01 {
		g.curHighDB = v
		g.eqHigh.setHighShelf(eqHighFreq, v, sr)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampDB(v float64) float64 {
	if v < -18 {
		return -18
	}
	if v > 18 {
		return 18
	}
	return v
}
