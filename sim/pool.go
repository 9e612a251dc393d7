package sim

// Pool is fixed-shape reusable storage for entities and debris particles.
// Live lists stay dense: removal is swap-with-last plus truncate, so order
// is never preserved (irrelevant to simulation; draw sorting is the
// renderer's concern). Free lists are LIFO stacks; allocation happens only
// on exhaustion.
type Pool struct {
	Entities  []*Entity
	Particles []*Particle

	freeEnts  []*Entity
	freeParts []*Particle
	nextID    uint64
}

const poolPrealloc = 64

func NewPool() *Pool {
	p := &Pool{
		Entities:  make([]*Entity, 0, poolPrealloc),
		Particles: make([]*Particle, 0, poolPrealloc*4),
		freeEnts:  make([]*Entity, 0, poolPrealloc),
		freeParts: make([]*Particle, 0, poolPrealloc*4),
	}
	for i := 0; i < poolPrealloc; i++ {
		p.freeEnts = append(p.freeEnts, &Entity{})
	}
	for i := 0; i < poolPrealloc*4; i++ {
		p.freeParts = append(p.freeParts, &Particle{})
	}
	return p
}

// Acquire returns a fully reset entity appended to the live list
func (p *Pool) Acquire() *Entity {
	var e *Entity
	if n := len(p.freeEnts); n > 0 {
		e = p.freeEnts[n-1]
		p.freeEnts = p.freeEnts[:n-1]
	} else {
		e = &Entity{}
	}
	p.nextID++
	e.reset()
	e.ID = p.nextID
	p.Entities = append(p.Entities, e)
	return e
}

// RemoveAt releases the entity at index i. O(1): the last live entity is
// swapped into the hole and the list truncated.
func (p *Pool) RemoveAt(i int) {
	n := len(p.Entities)
	if i < 0 || i >= n {
		return
	}
	e := p.Entities[i]
	p.Entities[i] = p.Entities[n-1]
	p.Entities = p.Entities[:n-1]
	e.reset()
	e.ID = 0
	p.freeEnts = append(p.freeEnts, e)
}

// AcquireParticle returns a reset particle appended to the live list
func (p *Pool) AcquireParticle() *Particle {
	var pt *Particle
	if n := len(p.freeParts); n > 0 {
		pt = p.freeParts[n-1]
		p.freeParts = p.freeParts[:n-1]
	} else {
		pt = &Particle{}
	}
	pt.reset()
	p.Particles = append(p.Particles, pt)
	return pt
}

// RemoveParticleAt releases the particle at index i, swap-with-last
func (p *Pool) RemoveParticleAt(i int) {
	n := len(p.Particles)
	if i < 0 || i >= n {
		return
	}
	pt := p.Particles[i]
	p.Particles[i] = p.Particles[n-1]
	p.Particles = p.Particles[:n-1]
	pt.reset()
	p.freeParts = append(p.freeParts, pt)
}

// ReleaseAll returns every live entity and particle to the free lists
func (p *Pool) ReleaseAll() {
	for _, e := range p.Entities {
		e.reset()
		e.ID = 0
		p.freeEnts = append(p.freeEnts, e)
	}
	p.Entities = p.Entities[:0]
	for _, pt := range p.Particles {
		pt.reset()
		p.freeParts = append(p.freeParts, pt)
	}
	p.Particles = p.Particles[:0]
}

// Len returns the live entity count
func (p *Pool) Len() int {
	return len(p.Entities)
}
