package sim

import (
	"math/rand"
	"testing"
)

func TestPoolSpawnDespawnBalance(t *testing.T) {
	p := NewPool()
	spawns, despawns := 0, 0

	for i := 0; i < 1000; i++ {
		if p.Len() == 0 || rand.Float64() < 0.6 {
			p.Acquire()
			spawns++
		} else {
			p.RemoveAt(rand.Intn(p.Len()))
			despawns++
		}
	}

	if p.Len() != spawns-despawns {
		t.Errorf("live count = %d, want spawns-despawns = %d", p.Len(), spawns-despawns)
	}
}

func TestPoolReleaseClearsTransientState(t *testing.T) {
	p := NewPool()
	e := p.Acquire()
	e.Source = SourceRef{Slot: 3, Gen: 7}
	e.Overlay = Overlay{Count: 4, TTL: 2.5}
	e.Radius = 3
	e.CapturedAt = 1.5
	e.Grace = 1.2
	e.Deform.ScaleX = 1.3
	e.Deform.Verts[2] = 0.2

	p.RemoveAt(0)

	// The freed entity must come back pristine
	e2 := p.Acquire()
	if e2.Source.Valid() {
		t.Error("reacquired entity retains audio-source reference")
	}
	if e2.Overlay.Active() {
		t.Error("reacquired entity retains overlay state")
	}
	if e2.CapturedAt != 0 || e2.Grace != 0 {
		t.Error("reacquired entity retains capture state")
	}
	if e2.Radius != 0 {
		t.Error("reacquired entity retains radius")
	}
	if e2.Deform.ScaleX != 1 || e2.Deform.Verts[2] != 0 {
		t.Error("reacquired entity retains deformation state")
	}
	if e2.ID == 0 {
		t.Error("reacquired entity has no ID")
	}
}

func TestPoolRemoveAtSwapsLast(t *testing.T) {
	p := NewPool()
	for i := 0; i < 5; i++ {
		p.Acquire()
	}
	lastID := p.Entities[4].ID

	p.RemoveAt(1)

	if p.Len() != 4 {
		t.Fatalf("len = %d, want 4", p.Len())
	}
	if p.Entities[1].ID != lastID {
		t.Errorf("slot 1 holds ID %d, want displaced last element %d", p.Entities[1].ID, lastID)
	}
}

func TestPoolRemoveAtOutOfRange(t *testing.T) {
	p := NewPool()
	p.Acquire()
	p.RemoveAt(-1)
	p.RemoveAt(5)
	if p.Len() != 1 {
		t.Errorf("out-of-range removal changed live count: %d", p.Len())
	}
}

func TestPoolParticleLifecycle(t *testing.T) {
	p := NewPool()
	for i := 0; i < 10; i++ {
		pt := p.AcquireParticle()
		pt.Life = 1
	}
	for i := 9; i >= 0; i -= 2 {
		p.RemoveParticleAt(i)
	}
	if len(p.Particles) != 5 {
		t.Errorf("particle count = %d, want 5", len(p.Particles))
	}
	pt := p.AcquireParticle()
	if pt.Life != 0 {
		t.Error("reacquired particle retains life")
	}
}

func TestPoolReleaseAll(t *testing.T) {
	p := NewPool()
	for i := 0; i < 20; i++ {
		p.Acquire()
		p.AcquireParticle()
	}
	p.ReleaseAll()
	if p.Len() != 0 || len(p.Particles) != 0 {
		t.Errorf("pool not empty after ReleaseAll: %d entities, %d particles", p.Len(), len(p.Particles))
	}
	// Pool stays usable
	if e := p.Acquire(); e == nil || e.ID == 0 {
		t.Error("pool unusable after ReleaseAll")
	}
}
