package bridge

import (
	"github.com/avikern/thrum/sim"
	"github.com/avikern/thrum/vmath"
)

// TriggerCooldown is the minimum spacing between voice triggers from one
// entity, in simulation seconds. Sustained contact (resting on the floor
// under gravity) would otherwise flood the voice engine every tick.
const TriggerCooldown = 0.06

const (
	volumeSizeFloor   = 0.35 // smallest body still speaks at this fraction
	volumeDistFalloff = 0.6  // attenuation at the far corner of the volume
	mapperPruneLen    = 4096
	mapperPruneAge    = 2.0
)

// SpatialMapper converts entity state into voice trigger parameters: pan
// from x, depth from z, volume from size and listener distance, plus the
// per-entity trigger cooldown.
type SpatialMapper struct {
	bounds   sim.Bounds
	center   vmath.Vec3
	halfDiag float64
	last     map[uint64]float64
}

// NewSpatialMapper builds a mapper for the given world volume
func NewSpatialMapper(b sim.Bounds) *SpatialMapper {
	c := b.Center()
	half := vmath.V3Scale(vmath.V3Sub(b.Max, b.Min), 0.5)
	return &SpatialMapper{
		bounds:   b,
		center:   c,
		halfDiag: vmath.V3Mag(half),
		last:     make(map[uint64]float64),
	}
}

// Pan maps horizontal position into [-1, 1]
func (m *SpatialMapper) Pan(pos vmath.Vec3) float64 {
	w := m.bounds.Max.X - m.bounds.Min.X
	if w <= 0 {
		return 0
	}
	return vmath.Clamp((pos.X-m.bounds.Min.X)/w*2-1, -1, 1)
}

// Depth maps z into [0, 1], 0 nearest the listener
func (m *SpatialMapper) Depth(pos vmath.Vec3) float64 {
	d := m.bounds.Max.Z - m.bounds.Min.Z
	if d <= 0 {
		return 0
	}
	return vmath.Clamp01((pos.Z - m.bounds.Min.Z) / d)
}

// SizeFactor normalizes a radius against the spawn range; merged giants
// clamp to 1
func (m *SpatialMapper) SizeFactor(radius float64) float64 {
	return vmath.Clamp01((radius - sim.SpawnRadiusMin) / (sim.SpawnRadiusMax - sim.SpawnRadiusMin))
}

// Volume combines the size factor with distance attenuation from the
// listener at the volume center
func (m *SpatialMapper) Volume(radius float64, pos vmath.Vec3) float64 {
	size := m.SizeFactor(radius)
	dist := 0.0
	if m.halfDiag > 0 {
		dist = vmath.Clamp01(vmath.V3Dist(pos, m.center) / m.halfDiag)
	}
	return (volumeSizeFloor + (1-volumeSizeFloor)*size) * (1 - volumeDistFalloff*dist)
}

// Allow gates one entity's triggers by the cooldown and records the hit.
// now is simulation time.
func (m *SpatialMapper) Allow(id uint64, now float64) bool {
	if t, ok := m.last[id]; ok && now-t < TriggerCooldown {
		return false
	}
	if len(m.last) > mapperPruneLen {
		m.prune(now)
	}
	m.last[id] = now
	return true
}

func (m *SpatialMapper) prune(now float64) {
	for id, t := range m.last {
		if now-t > mapperPruneAge {
			delete(m.last, id)
		}
	}
}

// Reset clears all cooldown state
func (m *SpatialMapper) Reset() {
	m.last = make(map[uint64]float64)
}
