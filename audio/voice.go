package audio

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// MaxVoices is the polyphony ceiling. Triggers past it are dropped with no
// signal to the caller.
const MaxVoices = 24

const (
	minVoiceFreq = 40.0
	maxVoiceFreq = 8000.0

	// Depth-lowpass cutoff range: far entities muffle toward the minimum
	depthCutoffMin = 450.0
	depthCutoffMax = 9500.0

	voiceAttack  = 0.004 // seconds
	voiceLifeMax = 2.0   // hard envelope cap, seconds
	voiceTail    = 512   // silent samples streamed after release

	// FM burst applies only to small/high triggers
	fmBurstMinFreq = 700.0
	fmRatio        = 2.7
	fmIndexStart   = 2.4
	fmBurstDecay   = 0.06 // seconds

	dopplerSpeedRef = 80.0
)

// SourceKind selects a voice's signal source
type SourceKind int

const (
	SourceSynth SourceKind = iota
	SourceSample
)

// VoiceSource is the tagged source variant: pure synthesis, or a loaded
// mono sample buffer played at the pitch-ratio rate
type VoiceSource struct {
	Kind   SourceKind
	Sample []float64
}

// TriggerParams carries one impact's worth of voice parameters
type TriggerParams struct {
	SizeFactor float64 // 0 small .. 1 large; shifts octaves down as it grows
	BaseFreq   float64 // raw pre-quantization frequency
	Pan        float64 // -1 left .. 1 right
	Depth      float64 // 0 near .. 1 far
	ZVel       float64 // closing speed toward the listener, positive = approaching
	Doppler    float64 // doppler knob 0..1
	Reverse    bool    // sample mode: play the buffer backwards
	Volume     float64 // 0..1
	Music      MusicSettings
	Source     VoiceSource
}

// VoiceEngine starts bounded-polyphony voices into the graph. Trigger is
// called from the simulation tick; voices render and retire themselves on
// the audio path.
type VoiceEngine struct {
	graph  *Graph
	active atomic.Int32
	max    int32
	log    *zap.Logger

	triggered atomic.Uint64
	rejected  atomic.Uint64
}

// NewVoiceEngine creates a voice engine feeding the given graph
func NewVoiceEngine(graph *Graph, log *zap.Logger) *VoiceEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &VoiceEngine{graph: graph, max: MaxVoices, log: log}
}

// ActiveVoices returns the live voice count
func (ve *VoiceEngine) ActiveVoices() int {
	return int(ve.active.Load())
}

// Stats returns triggered and rejected counts
func (ve *VoiceEngine) Stats() (triggered, rejected uint64) {
	return ve.triggered.Load(), ve.rejected.Load()
}

// Trigger starts one voice. Silently dropped at the polyphony ceiling or
// for an inaudible volume.
func (ve *VoiceEngine) Trigger(p TriggerParams) {
	if p.Volume <= 0.001 {
		return
	}
	if ve.active.Add(1) > ve.max {
		ve.active.Add(-1)
		ve.rejected.Add(1)
		return
	}

	freq := QuantizeFreq(p.BaseFreq, p.Music)
	freq *= math.Exp2(float64(octaveShift(p.SizeFactor)))
	freq *= dopplerRatio(p.ZVel, p.Doppler)
	freq = clampFreq(freq)

	v := ve.newVoice(p, freq)
	speaker.Lock()
	ve.graph.AddVoice(v)
	speaker.Unlock()
	ve.triggered.Add(1)
}

// octaveShift maps size to pitch register: big bodies speak low
func octaveShift(size float64) int {
	switch {
	case size > 0.75:
		return -2
	case size > 0.45:
		return -1
	case size < 0.2:
		return 1
	}
	return 0
}

// dopplerRatio derives the pitch multiplier from approach velocity scaled
// by the doppler knob
func dopplerRatio(zvel, knob float64) float64 {
	k := clamp01(knob)
	shift := zvel / dopplerSpeedRef
	if shift > 0.5 {
		shift = 0.5
	} else if shift < -0.5 {
		shift = -0.5
	}
	return 1 + shift*k
}

func clampFreq(f float64) float64 {
	if f < minVoiceFreq {
		return minVoiceFreq
	}
	if f > maxVoiceFreq {
		return maxVoiceFreq
	}
	return f
}

// depthCutoff interpolates the muffling cutoff exponentially: linear depth
// steps sound like even muffling steps
func depthCutoff(depth float64) float64 {
	d := clamp01(depth)
	return depthCutoffMax * math.Pow(depthCutoffMin/depthCutoffMax, d)
}

func (ve *VoiceEngine) newVoice(p TriggerParams, freq float64) *voice {
	sr := int(ve.graph.SampleRate())

	// Bigger bodies ring longer; the hard cap bounds teardown latency
	decaySecs := 0.15 + 0.9*clamp01(p.SizeFactor)
	life := int(voiceLifeMax * float64(sr))

	v := &voice{
		rate:       sr,
		counter:    &ve.active,
		volume:     clamp01(p.Volume),
		attack:     int(voiceAttack * float64(sr)),
		decayCoeff: math.Exp(-1.0 / (decaySecs * float64(sr) / 6.9)),
		life:       life,
		env:        0,
	}

	pan := p.Pan
	if pan < -1 {
		pan = -1
	} else if pan > 1 {
		pan = 1
	}
	// Equal-power pan law
	angle := (pan + 1) * math.Pi / 4
	v.gainL = math.Cos(angle)
	v.gainR = math.Sin(angle)

	v.lp.setCutoff(depthCutoff(p.Depth), sr)

	if p.Source.Kind == SourceSample && len(p.Source.Sample) > 0 {
		v.sample = p.Source.Sample
		v.sampleStep = freq / 440.0
		if p.Reverse {
			v.samplePos = float64(len(p.Source.Sample) - 1)
			v.sampleStep = -v.sampleStep
		}
	} else {
		v.freq = freq
		if freq >= fmBurstMinFreq || p.SizeFactor < 0.2 {
			v.fmIndex = fmIndexStart
			v.fmCoeff = math.Exp(-1.0 / (fmBurstDecay * float64(sr)))
		}
	}
	return v
}

// voice is one ephemeral streamer: oscillator or sample playback through an
// attack/exponential-decay envelope, depth lowpass and equal-power pan. It
// decrements the engine's polyphony counter the moment its envelope ends,
// then streams a short silent tail before draining so the mixer never
// truncates mid-ramp.
type voice struct {
	rate    int
	counter *atomic.Int32

	// Synth source
	freq    float64
	phase   float64
	fmPhase float64
	fmIndex float64
	fmCoeff float64

	// Sample source
	sample     []float64
	samplePos  float64
	sampleStep float64

	volume     float64
	attack     int
	decayCoeff float64
	env        float64
	pos        int
	life       int

	lp           onePoleLP
	gainL, gainR float64

	released bool
	tailLeft int
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if v.released {
			if v.tailLeft <= 0 {
				return i, false
			}
			samples[i][0], samples[i][1] = 0, 0
			v.tailLeft--
			continue
		}

		raw := v.nextRaw()
		env := v.nextEnv()
		s := v.lp.process(raw*env*v.volume) * 0.5

		samples[i][0] = s * v.gainL
		samples[i][1] = s * v.gainR
		v.pos++

		if v.done() {
			v.released = true
			v.tailLeft = voiceTail
			v.counter.Add(-1)
		}
	}
	return len(samples), true
}

func (v *voice) Err() error { return nil }

func (v *voice) nextRaw() float64 {
	if v.sample != nil {
		return v.nextSample()
	}

	mod := 0.0
	if v.fmIndex > 0.001 {
		v.fmPhase += v.freq * fmRatio / float64(v.rate)
		v.fmPhase -= math.Floor(v.fmPhase)
		mod = v.fmIndex * math.Sin(2*math.Pi*v.fmPhase)
		v.fmIndex *= v.fmCoeff
	}

	out := math.Sin(2*math.Pi*v.phase + mod)
	v.phase += v.freq / float64(v.rate)
	v.phase -= math.Floor(v.phase)
	return out
}

// nextSample reads the buffer with linear interpolation; reversed playback
// walks the position backwards
func (v *voice) nextSample() float64 {
	pos := v.samplePos
	last := len(v.sample) - 1
	if pos < 0 || pos > float64(last) {
		return 0
	}
	i := int(pos)
	out := v.sample[i]
	if i < last {
		out += (v.sample[i+1] - v.sample[i]) * (pos - float64(i))
	}
	v.samplePos += v.sampleStep
	return out
}

func (v *voice) nextEnv() float64 {
	if v.pos < v.attack {
		v.env = float64(v.pos+1) / float64(v.attack+1)
		return v.env
	}
	if v.pos == v.attack {
		v.env = 1
	}
	v.env *= v.decayCoeff
	return v.env
}

func (v *voice) done() bool {
	if v.pos >= v.life {
		return true
	}
	if v.pos <= v.attack {
		return false
	}
	if v.env < 0.001 {
		return true
	}
	if v.sample != nil && (v.samplePos < 0 || v.samplePos > float64(len(v.sample)-1)) {
		return true
	}
	return false
}
