package bridge

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/avikern/thrum/audio"
	"github.com/avikern/thrum/sim"
	"github.com/avikern/thrum/vmath"
)

// Base frequencies fed into harmonic quantization, per event kind. Merges
// speak low and heavy, wall taps sit in the middle, body contacts ring
// higher.
const (
	baseFreqWall      = 196.0
	baseFreqCollision = 330.0
	baseFreqMerge     = 110.0

	impulseFullScale = 40.0 // impulse mapping saturates here
	impulseGainFloor = 0.3
)

// Triggerer is the voice-engine surface the bridge needs. *audio.Engine
// satisfies it.
type Triggerer interface {
	Trigger(p audio.TriggerParams)
}

// EventBridge is the only sim-to-audio path: it drains the per-tick impact
// snapshots and converts each into at most one voice trigger, applying the
// spatial mapping, the per-entity cooldown and source-bank resolution.
type EventBridge struct {
	out    Triggerer
	mapper *SpatialMapper
	bank   SourceBank
	music  audio.MusicSettings
	log    *zap.Logger

	triggered  uint64
	suppressed uint64
}

// NewEventBridge wires the bridge. bank may be nil: every trigger then uses
// the synthesis path.
func NewEventBridge(out Triggerer, mapper *SpatialMapper, bank SourceBank, log *zap.Logger) *EventBridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventBridge{
		out:    out,
		mapper: mapper,
		bank:   bank,
		music:  audio.DefaultMusic(),
		log:    log,
	}
}

// SetMusic swaps the harmonic grid for subsequent triggers
func (b *EventBridge) SetMusic(m audio.MusicSettings) {
	b.music = m
}

// Music returns the active harmonic grid
func (b *EventBridge) Music() audio.MusicSettings {
	return b.music
}

// Stats returns triggered and cooldown-suppressed counts
func (b *EventBridge) Stats() (triggered, suppressed uint64) {
	return b.triggered, b.suppressed
}

// Reset clears cooldown and counter state, keeping the wiring
func (b *EventBridge) Reset() {
	b.mapper.Reset()
	b.triggered, b.suppressed = 0, 0
}

// Dispatch converts one tick's impact snapshots into voice triggers.
// now is simulation time, used for the cooldown clock.
func (b *EventBridge) Dispatch(impacts []sim.Impact, p sim.Params, now float64) {
	for _, imp := range impacts {
		if !b.mapper.Allow(imp.EntityID, now) {
			b.suppressed++
			continue
		}
		b.out.Trigger(b.trigger(imp, p))
		b.triggered++
	}
}

func (b *EventBridge) trigger(imp sim.Impact, p sim.Params) audio.TriggerParams {
	gain := impulseGainFloor + (1-impulseGainFloor)*vmath.Clamp01(imp.Impulse/impulseFullScale)

	// The listener sits at the near face (z min): negative world z-velocity
	// is an approach
	approach := -imp.VelZ

	t := audio.TriggerParams{
		SizeFactor: b.mapper.SizeFactor(imp.Radius),
		BaseFreq:   baseFreq(imp.Kind),
		Pan:        b.mapper.Pan(imp.Pos),
		Depth:      b.mapper.Depth(imp.Pos),
		ZVel:       approach,
		Doppler:    vmath.Clamp01(p.Doppler),
		Volume:     b.mapper.Volume(imp.Radius, imp.Pos) * gain,
		Music:      b.music,
	}

	if imp.Source.Valid() && b.bank != nil {
		if buf, ok := b.bank.Resolve(imp.Source); ok && len(buf) > 0 {
			t.Source = audio.VoiceSource{Kind: audio.SourceSample, Sample: buf}
			t.Reverse = rand.Float64() < vmath.Clamp01(p.ReverseProb)
		}
	}
	return t
}

func baseFreq(k sim.ImpactKind) float64 {
	switch k {
	case sim.ImpactWall:
		return baseFreqWall
	case sim.ImpactMerge:
		return baseFreqMerge
	}
	return baseFreqCollision
}
