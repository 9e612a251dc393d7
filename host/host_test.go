package host

import (
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/avikern/thrum/audio"
	"github.com/avikern/thrum/bridge"
	"github.com/avikern/thrum/sim"
	"github.com/avikern/thrum/vmath"
)

func testApp(t *testing.T) *App {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("simulation screen: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	s := sim.New(sim.DefaultBounds(), nil)
	br := bridge.NewEventBridge(nopTriggerer{}, bridge.NewSpatialMapper(s.Bounds()), nil, nil)
	a := New(screen, s, br, nil, sim.DefaultParams(), nil)
	a.width, a.height = 80, 24
	return a
}

type nopTriggerer struct{}

func (nopTriggerer) Trigger(audio.TriggerParams) {}

func TestProjectionRoundTrip(t *testing.T) {
	a := testApp(t)

	for _, cell := range [][2]int{{0, 1}, {40, 12}, {79, 22}} {
		pos := a.worldFromCell(cell[0], cell[1])
		cx, cy := a.cellFromWorld(pos)
		if cx != cell[0] || cy != cell[1] {
			t.Errorf("cell (%d,%d) round-tripped to (%d,%d)", cell[0], cell[1], cx, cy)
		}
	}
}

func TestWorldFromCellStaysInBounds(t *testing.T) {
	a := testApp(t)
	b := a.sim.Bounds()

	for cx := 0; cx < 80; cx += 13 {
		for cy := 1; cy < 23; cy += 5 {
			p := a.worldFromCell(cx, cy)
			if p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
				t.Errorf("cell (%d,%d) mapped outside bounds: %v", cx, cy, p)
			}
		}
	}
}

func TestThrowVelocityFromPointerTrail(t *testing.T) {
	start := time.Now()
	history := []pointerSample{
		{pos: vmath.Vec3{X: 0, Y: 50, Z: 30}, at: start},
		{pos: vmath.Vec3{X: 10, Y: 50, Z: 30}, at: start.Add(100 * time.Millisecond)},
	}

	vel, ok := throwVelocity(history, start.Add(110*time.Millisecond))
	if !ok {
		t.Fatal("moving pointer produced no throw")
	}
	if math.Abs(vel.X-100) > 1 {
		t.Errorf("throw vx = %f, want ~100", vel.X)
	}

	// A stale trail (pointer parked before release) throws nothing
	if _, ok := throwVelocity(history, start.Add(2*time.Second)); ok {
		t.Error("stale pointer trail produced a throw")
	}
	if _, ok := throwVelocity(history[:1], start); ok {
		t.Error("single-sample trail produced a throw")
	}
}

func TestAdjustKnobClamps(t *testing.T) {
	a := testApp(t)

	a.sel = 0 // tempo, max 2
	for i := 0; i < 100; i++ {
		a.adjustKnob(knobStep)
	}
	if a.params.Tempo != 2 {
		t.Errorf("tempo = %f after overdrive, want clamp at 2", a.params.Tempo)
	}
	for i := 0; i < 100; i++ {
		a.adjustKnob(-knobStep)
	}
	if a.params.Tempo != 0 {
		t.Errorf("tempo = %f after underdrive, want clamp at 0", a.params.Tempo)
	}
}

func TestKnobTableCoversAllParams(t *testing.T) {
	knobs := knobTable()
	if len(knobs) != 12 {
		t.Fatalf("knob table has %d entries, want 12", len(knobs))
	}
	seen := map[string]bool{}
	for _, k := range knobs {
		if seen[k.name] {
			t.Errorf("duplicate knob %q", k.name)
		}
		seen[k.name] = true

		// get/set must address the same field
		var p sim.Params
		k.set(&p, 0.42)
		if k.get(&p) != 0.42 {
			t.Errorf("knob %q get/set mismatch", k.name)
		}
	}
}

func TestBeginPressSpawnsOrGrabs(t *testing.T) {
	a := testApp(t)

	pos := a.sim.Bounds().Center()
	a.beginPress(pos)
	if a.sim.Pool().Len() != 1 {
		t.Fatal("press on empty space did not spawn")
	}
	if a.pointer.grabbed != nil {
		t.Fatal("press on empty space grabbed something")
	}

	// Second press on the same spot grabs the spawned entity
	a.pointer = pointerState{}
	a.beginPress(pos)
	if a.pointer.grabbed == nil {
		t.Fatal("press on an entity did not grab it")
	}
	if a.sim.Pool().Len() != 1 {
		t.Error("grab press spawned a duplicate")
	}
}

func TestDragPaintSpacing(t *testing.T) {
	a := testApp(t)

	start := a.sim.Bounds().Center()
	a.beginPress(start)

	// A tiny move stays under the spacing threshold: no new spawn
	a.continuePress(vmath.V3Add(start, vmath.Vec3{X: a.cellWidth() * 0.5}))
	if a.sim.Pool().Len() != 1 {
		t.Error("paint ignored the minimum spacing")
	}

	// A wide move paints
	a.continuePress(vmath.V3Add(start, vmath.Vec3{X: a.cellWidth() * 10}))
	if a.sim.Pool().Len() != 2 {
		t.Error("wide paint move did not spawn")
	}
}

func TestHeadlessRunAdvancesSim(t *testing.T) {
	s := sim.New(sim.DefaultBounds(), nil)
	br := bridge.NewEventBridge(nopTriggerer{}, bridge.NewSpatialMapper(s.Bounds()), nil, nil)

	RunHeadless(s, br, sim.DefaultParams(), 120, 8)

	if s.Now() <= 0 {
		t.Error("headless run did not advance time")
	}
	if s.Pool().Len() == 0 {
		t.Error("headless run lost all seeded entities")
	}
}
