package sim

import (
	"github.com/avikern/thrum/vmath"
)

// ImpactKind discriminates the audio-relevant simulation events
type ImpactKind uint8

const (
	ImpactWall ImpactKind = iota
	ImpactCollision
	ImpactMerge
)

func (k ImpactKind) String() string {
	switch k {
	case ImpactWall:
		return "wall"
	case ImpactCollision:
		return "collision"
	case ImpactMerge:
		return "merge"
	}
	return "unknown"
}

// Impact is a value snapshot of an entity at the moment of an event.
// Snapshots, not pointers: the entity may be removed or reused before the
// bridge drains the queue.
type Impact struct {
	Kind     ImpactKind
	EntityID uint64
	Pos      vmath.Vec3
	VelZ     float64 // for doppler
	Radius   float64
	Impulse  float64
	Source   SourceRef
}

func (s *Sim) emit(kind ImpactKind, e *Entity, impulse float64) {
	s.impacts = append(s.impacts, Impact{
		Kind:     kind,
		EntityID: e.ID,
		Pos:      e.Pos,
		VelZ:     e.Vel.Z,
		Radius:   e.Radius,
		Impulse:  impulse,
		Source:   e.Source,
	})
}

// ClosestPair tracks near-miss pairs for presentation (proximity arcs);
// it has no effect on behavior
type ClosestPair struct {
	A, B   uint64
	DistSq float64
}

func (s *Sim) trackClosest(a, b *Entity, distSq float64) {
	for i := range s.closest {
		if s.closest[i].A == 0 || distSq < s.closest[i].DistSq {
			copy(s.closest[i+1:], s.closest[i:len(s.closest)-1])
			s.closest[i] = ClosestPair{A: a.ID, B: b.ID, DistSq: distSq}
			return
		}
	}
}
