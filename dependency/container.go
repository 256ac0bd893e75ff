package dependency

import "github.com/rpmpkg/core/pool"

// Container is an ordered sequence of reldep ids (spec §3,
// "DependencyContainer"). Duplicates are allowed, and insertion order is
// preserved because it is observable — e.g. a package's requires list
// position can matter for marker/prereq handling. Each Container owns its
// sequence; Clone deep-copies it.
type Container struct {
	pool *pool.Pool
	ids  []pool.Id
}

// NewContainer returns an empty container bound to p.
func NewContainer(p *pool.Pool) *Container {
	return &Container{pool: p}
}

// ContainerFromIds builds a container from an existing id slice, copying it
// so later mutation of ids doesn't alias the container's storage.
func ContainerFromIds(p *pool.Pool, ids []pool.Id) *Container {
	c := &Container{pool: p, ids: make([]pool.Id, len(ids))}
	copy(c.ids, ids)
	return c
}

// Add appends a reldep to the end of the sequence.
func (c *Container) Add(r Reldep) {
	c.ids = append(c.ids, r.Id)
}

// AddId appends an already-interned id.
func (c *Container) AddId(id pool.Id) {
	c.ids = append(c.ids, id)
}

// Len returns the number of entries, duplicates included.
func (c *Container) Len() int {
	return len(c.ids)
}

// Get returns the i'th reldep.
func (c *Container) Get(i int) Reldep {
	return Reldep{Pool: c.pool, Id: c.ids[i]}
}

// Ids returns the backing id slice. Callers must treat it as read-only; use
// Clone to get an independently mutable copy.
func (c *Container) Ids() []pool.Id {
	return c.ids
}

// Clone deep-copies the container.
func (c *Container) Clone() *Container {
	return ContainerFromIds(c.pool, c.ids)
}

// Each iterates the sequence in insertion order.
func (c *Container) Each(fn func(Reldep)) {
	for _, id := range c.ids {
		fn(Reldep{Pool: c.pool, Id: id})
	}
}
