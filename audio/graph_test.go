package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func TestSmoothedParamConvergesWithoutOvershoot(t *testing.T) {
	p := newSmoothedParam(0, 0.01, 44100)
	p.Set(1)

	prev := 0.0
	for i := 0; i < 44100; i++ {
		v := p.next()
		if v < prev-1e-12 {
			t.Fatalf("ramp reversed at sample %d: %f after %f", i, v, prev)
		}
		if v > 1+1e-9 {
			t.Fatalf("ramp overshot at sample %d: %f", i, v)
		}
		prev = v
	}
	if math.Abs(prev-1) > 0.001 {
		t.Errorf("ramp at %f after 1s, want ~1", prev)
	}
}

func TestSmoothedParamNeverSteps(t *testing.T) {
	p := newSmoothedParam(0, 0.05, 44100)
	p.Set(1)
	first := p.next()
	if first > 0.01 {
		t.Errorf("first sample after Set jumped to %f", first)
	}
}

func TestSmoothedParamBlockStepMatchesPerSample(t *testing.T) {
	a := newSmoothedParam(0, 0.02, 44100)
	b := newSmoothedParam(0, 0.02, 44100)
	a.Set(1)
	b.Set(1)

	for i := 0; i < 512; i++ {
		a.next()
	}
	b.step(512)

	if math.Abs(a.current()-b.current()) > 1e-9 {
		t.Errorf("block step %f != per-sample %f", b.current(), a.current())
	}
}

func TestPingPongDelayCrossFeed(t *testing.T) {
	sr := 1000
	d := newPingPongDelay(10*time.Millisecond, 15*time.Millisecond, 0.5, 0.4, sr)
	nL, nR := 10, 15

	var firstL, firstR int = -1, -1
	for i := 0; i < 100; i++ {
		inL := 0.0
		if i == 0 {
			inL = 1.0 // impulse on the left line only
		}
		outL, outR := d.process(inL, 0)
		if firstL < 0 && outL != 0 {
			firstL = i
		}
		if firstR < 0 && outR != 0 {
			firstR = i
		}
	}

	if firstL != nL {
		t.Errorf("left echo at step %d, want %d", firstL, nL)
	}
	// The right line only sees the impulse through the cross-feed path
	if firstR != nL+nR {
		t.Errorf("cross-fed right echo at step %d, want %d", firstR, nL+nR)
	}
}

func TestBiquadUnityAtZeroGain(t *testing.T) {
	var f biquad
	f.setPeak(1200, 0, 0.9, 44100)

	for i := 0; i < 64; i++ {
		in := math.Sin(float64(i) * 0.3)
		out := f.process(0, in)
		if math.Abs(out-in) > 1e-9 {
			t.Fatalf("0 dB peak filter altered sample %d: %f -> %f", i, in, out)
		}
	}
}

func TestBiquadShelfBoostsBand(t *testing.T) {
	var f biquad
	f.setLowShelf(220, 12, 44100)

	// A 60 Hz tone must come out louder through a +12 dB low shelf
	in, out := 0.0, 0.0
	phase := 0.0
	for i := 0; i < 44100; i++ {
		x := math.Sin(2 * math.Pi * phase)
		y := f.process(0, x)
		phase += 60.0 / 44100.0
		if i > 2000 { // skip transient
			in += x * x
			out += y * y
		}
	}
	if out <= in*1.5 {
		t.Errorf("low shelf boost ineffective: out energy %f vs in %f", out, in)
	}
}

func TestLimiterHoldsCeiling(t *testing.T) {
	l := newLimiter(0.85, 44100)

	var maxOut float64
	for i := 0; i < 8820; i++ { // 200ms of a hot signal
		x := 2.0 * math.Sin(2*math.Pi*float64(i)*440/44100)
		a, b := l.process(x, x)
		if i > 441 { // allow the attack to engage
			maxOut = math.Max(maxOut, math.Max(math.Abs(a), math.Abs(b)))
		}
	}
	if maxOut > 0.95 {
		t.Errorf("limiter let %f through a 0.85 threshold", maxOut)
	}
}

func TestGraphStreamsSilenceWhenEmpty(t *testing.T) {
	g := NewGraph(DefaultGraphSettings())
	buf := make([][2]float64, 512)

	n, ok := g.Stream(buf)
	if n != len(buf) || !ok {
		t.Fatalf("empty graph stream = (%d, %v), want (%d, true)", n, ok, len(buf))
	}
	for i, s := range buf {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("empty graph produced signal at sample %d: %v", i, s)
		}
	}
	if rms, _ := g.Levels(); rms != 0 {
		t.Errorf("empty graph rms = %f", rms)
	}
}

func TestGraphProcessesVoiceSignal(t *testing.T) {
	g := NewGraph(DefaultGraphSettings())

	phase := 0.0
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := 0.5 * math.Sin(2*math.Pi*phase)
			samples[i][0], samples[i][1] = v, v
			phase += 440.0 / 44100.0
		}
		return len(samples), true
	})
	g.AddVoice(tone)

	buf := make([][2]float64, 1024)
	for i := 0; i < 20; i++ {
		g.Stream(buf)
	}

	rms, peak := g.Levels()
	if rms <= 0 {
		t.Error("graph rms zero with an active voice")
	}
	if peak > 1.0 {
		t.Errorf("graph peak %f exceeds full scale through the limiter", peak)
	}
	for i, s := range buf {
		if math.IsNaN(s[0]) || math.IsNaN(s[1]) || math.IsInf(s[0], 0) || math.IsInf(s[1], 0) {
			t.Fatalf("non-finite output at sample %d", i)
		}
	}
}

func TestGraphMasterRampMutes(t *testing.T) {
	g := NewGraph(DefaultGraphSettings())
	g.AddVoice(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i][0], samples[i][1] = 0.5, 0.5
		}
		return len(samples), true
	}))

	buf := make([][2]float64, 1024)
	g.Stream(buf)
	g.SetMaster(0)

	// Ramp covers a step within ~paramTau; stream well past it
	for i := 0; i < 20; i++ {
		g.Stream(buf)
	}
	if _, peak := g.Levels(); peak > 0.01 {
		t.Errorf("peak %f after master ramped to zero", peak)
	}
}
