package bridge

import (
	"sync"

	"github.com/avikern/thrum/sim"
)

// SourceBank resolves an entity's weak audio-source reference to a sample
// buffer. A failed resolve is normal (slot invalidated or reused); the
// caller falls back to the default synthesis path.
type SourceBank interface {
	Resolve(ref sim.SourceRef) ([]float64, bool)
}

type bankSlot struct {
	gen    uint32
	sample []float64
	used   bool
}

// MemoryBank is the in-process SourceBank: generation-counted slots holding
// mono sample buffers. Slot numbers are 1-based to match sim.SourceRef's
// zero-is-empty convention.
type MemoryBank struct {
	mu    sync.Mutex
	slots []bankSlot
}

// NewMemoryBank creates a bank with the given slot capacity
func NewMemoryBank(capacity int) *MemoryBank {
	return &MemoryBank{slots: make([]bankSlot, capacity)}
}

// Acquire claims a free slot for the sample and returns its reference.
// Returns an invalid ref when the bank is full.
func (b *MemoryBank) Acquire(sample []float64) sim.SourceRef {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.slots {
		if !b.slots[i].used {
			b.slots[i].used = true
			b.slots[i].gen++
			b.slots[i].sample = sample
			return sim.SourceRef{Slot: i + 1, Gen: b.slots[i].gen}
		}
	}
	return sim.SourceRef{}
}

// Invalidate frees the referenced slot. Stale references are ignored.
func (b *MemoryBank) Invalidate(ref sim.SourceRef) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := ref.Slot - 1
	if i < 0 || i >= len(b.slots) {
		return
	}
	if b.slots[i].used && b.slots[i].gen == ref.Gen {
		b.slots[i].used = false
		b.slots[i].sample = nil
	}
}

// Resolve returns the sample for a live, generation-matching reference
func (b *MemoryBank) Resolve(ref sim.SourceRef) ([]float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := ref.Slot - 1
	if i < 0 || i >= len(b.slots) {
		return nil, false
	}
	s := &b.slots[i]
	if !s.used || s.gen != ref.Gen {
		return nil, false
	}
	return s.sample, true
}
