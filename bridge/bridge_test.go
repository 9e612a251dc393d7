package bridge

import (
	"math"
	"testing"

	"github.com/avikern/thrum/audio"
	"github.com/avikern/thrum/sim"
	"github.com/avikern/thrum/vmath"
)

// recorder captures trigger parameters instead of starting voices
type recorder struct {
	params []audio.TriggerParams
}

func (r *recorder) Trigger(p audio.TriggerParams) {
	r.params = append(r.params, p)
}

func testImpact(id uint64, kind sim.ImpactKind) sim.Impact {
	return sim.Impact{
		Kind:     kind,
		EntityID: id,
		Pos:      sim.DefaultBounds().Center(),
		Radius:   3,
		Impulse:  20,
	}
}

func TestSpatialMapperRanges(t *testing.T) {
	b := sim.DefaultBounds()
	m := NewSpatialMapper(b)

	if got := m.Pan(vmath.Vec3{X: b.Min.X}); got != -1 {
		t.Errorf("pan at left wall = %f, want -1", got)
	}
	if got := m.Pan(vmath.Vec3{X: b.Max.X}); got != 1 {
		t.Errorf("pan at right wall = %f, want 1", got)
	}
	if got := m.Pan(b.Center()); math.Abs(got) > 1e-9 {
		t.Errorf("pan at center = %f, want 0", got)
	}

	if got := m.Depth(vmath.Vec3{Z: b.Min.Z}); got != 0 {
		t.Errorf("depth at front = %f, want 0", got)
	}
	if got := m.Depth(vmath.Vec3{Z: b.Max.Z}); got != 1 {
		t.Errorf("depth at back = %f, want 1", got)
	}

	// Volume: bigger and closer is louder, always in (0, 1]
	loud := m.Volume(sim.SpawnRadiusMax, b.Center())
	quiet := m.Volume(sim.SpawnRadiusMin, b.Min)
	if loud <= quiet {
		t.Errorf("big central body %f not louder than small corner body %f", loud, quiet)
	}
	if loud > 1 || quiet <= 0 {
		t.Errorf("volumes out of range: %f, %f", loud, quiet)
	}
}

func TestCooldownSuppressesFlooding(t *testing.T) {
	m := NewSpatialMapper(sim.DefaultBounds())

	if !m.Allow(7, 0) {
		t.Fatal("first trigger blocked")
	}
	if m.Allow(7, 0.01) {
		t.Error("trigger allowed inside the cooldown window")
	}
	if !m.Allow(8, 0.01) {
		t.Error("cooldown leaked across entities")
	}
	if !m.Allow(7, TriggerCooldown+0.01) {
		t.Error("trigger blocked after the cooldown elapsed")
	}
}

func TestDispatchAppliesCooldown(t *testing.T) {
	rec := &recorder{}
	br := NewEventBridge(rec, NewSpatialMapper(sim.DefaultBounds()), nil, nil)

	// Same entity twice in one tick: sustained contact, one voice
	impacts := []sim.Impact{
		testImpact(1, sim.ImpactWall),
		testImpact(1, sim.ImpactWall),
		testImpact(2, sim.ImpactCollision),
	}
	br.Dispatch(impacts, sim.DefaultParams(), 0)

	if len(rec.params) != 2 {
		t.Fatalf("dispatched %d triggers, want 2", len(rec.params))
	}
	triggered, suppressed := br.Stats()
	if triggered != 2 || suppressed != 1 {
		t.Errorf("stats = (%d, %d), want (2, 1)", triggered, suppressed)
	}
}

func TestDispatchKindFrequencies(t *testing.T) {
	rec := &recorder{}
	br := NewEventBridge(rec, NewSpatialMapper(sim.DefaultBounds()), nil, nil)

	br.Dispatch([]sim.Impact{
		testImpact(1, sim.ImpactMerge),
		testImpact(2, sim.ImpactWall),
		testImpact(3, sim.ImpactCollision),
	}, sim.DefaultParams(), 0)

	if rec.params[0].BaseFreq >= rec.params[1].BaseFreq {
		t.Error("merge not pitched below wall")
	}
	if rec.params[1].BaseFreq >= rec.params[2].BaseFreq {
		t.Error("wall not pitched below collision")
	}
}

func TestDispatchDopplerApproachSign(t *testing.T) {
	rec := &recorder{}
	br := NewEventBridge(rec, NewSpatialMapper(sim.DefaultBounds()), nil, nil)

	// The listener is at the near face: negative world z-velocity approaches
	toward := testImpact(1, sim.ImpactCollision)
	toward.VelZ = -40
	away := testImpact(2, sim.ImpactCollision)
	away.VelZ = 40
	br.Dispatch([]sim.Impact{toward, away}, sim.DefaultParams(), 0)

	if rec.params[0].ZVel <= 0 {
		t.Errorf("approaching body ZVel = %f, want positive", rec.params[0].ZVel)
	}
	if rec.params[1].ZVel >= 0 {
		t.Errorf("receding body ZVel = %f, want negative", rec.params[1].ZVel)
	}
}

func TestDispatchResolvesSampleSource(t *testing.T) {
	bank := NewMemoryBank(4)
	ref := bank.Acquire(make([]float64, 256))

	rec := &recorder{}
	br := NewEventBridge(rec, NewSpatialMapper(sim.DefaultBounds()), bank, nil)

	imp := testImpact(1, sim.ImpactCollision)
	imp.Source = ref
	br.Dispatch([]sim.Impact{imp}, sim.DefaultParams(), 0)

	if rec.params[0].Source.Kind != audio.SourceSample {
		t.Error("valid bank ref did not resolve to a sample source")
	}

	// Invalidated slot falls back to synthesis without error
	bank.Invalidate(ref)
	imp.EntityID = 2
	br.Dispatch([]sim.Impact{imp}, sim.DefaultParams(), 1)
	if rec.params[1].Source.Kind != audio.SourceSynth {
		t.Error("stale bank ref did not fall back to synth")
	}
}

func TestMemoryBankGenerations(t *testing.T) {
	bank := NewMemoryBank(1)

	first := bank.Acquire([]float64{1})
	bank.Invalidate(first)
	second := bank.Acquire([]float64{2})

	if first.Slot != second.Slot {
		t.Fatal("single-slot bank did not reuse the slot")
	}
	if _, ok := bank.Resolve(first); ok {
		t.Error("stale generation resolved")
	}
	if buf, ok := bank.Resolve(second); !ok || buf[0] != 2 {
		t.Error("live generation failed to resolve")
	}

	// Full bank returns the invalid zero ref
	if ref := bank.Acquire([]float64{3}); ref.Valid() {
		t.Error("full bank handed out a slot")
	}
}

func TestDispatchReverseFollowsKnob(t *testing.T) {
	bank := NewMemoryBank(4)
	ref := bank.Acquire(make([]float64, 64))

	rec := &recorder{}
	br := NewEventBridge(rec, NewSpatialMapper(sim.DefaultBounds()), bank, nil)

	p := sim.DefaultParams()
	p.ReverseProb = 1

	imp := testImpact(1, sim.ImpactCollision)
	imp.Source = ref
	br.Dispatch([]sim.Impact{imp}, p, 0)
	if !rec.params[0].Reverse {
		t.Error("reverse prob 1 did not reverse a sample trigger")
	}

	p.ReverseProb = 0
	imp.EntityID = 2
	br.Dispatch([]sim.Impact{imp}, p, 1)
	if rec.params[1].Reverse {
		t.Error("reverse prob 0 reversed a trigger")
	}
}
