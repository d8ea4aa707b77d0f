package state

import "sync"

// Pool manages reusable scratch buffers for the cycle engine.
// Every cycle allocates short-lived primitive sequences (sorted copies of
// form output, intermediate merge results); the pool lets the next cycle
// reuse them instead of allocating again.
//
// Only buffers private to a running cycle are ever returned to the pool.
// A buffer that became the primitive sequence of a returned State is never
// recycled, so States stay immutable.
//
// Pool is safe for concurrent use: several chains of State values may
// cycle on different goroutines with the same pool.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a new buffer pool.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				b := make([]Primitive, 0, 64)
				return &b
			},
		},
	}
}

// Get retrieves an empty buffer with at least capHint capacity.
func (p *Pool) Get(capHint int) *[]Primitive {
	b := p.pool.Get().(*[]Primitive)
	if cap(*b) < capHint {
		*b = make([]Primitive, 0, capHint)
	}
	*b = (*b)[:0]
	return b
}

// Put returns a buffer to the pool.
// The elements are cleared so the pool does not keep primitives alive.
func (p *Pool) Put(b *[]Primitive) {
	if b == nil {
		return
	}
	clear((*b)[:cap(*b)])
	*b = (*b)[:0]
	p.pool.Put(b)
}

// Warmup pre-allocates count buffers of capHint capacity.
func (p *Pool) Warmup(count int, capHint int) {
	buffers := make([]*[]Primitive, count)
	for i := range buffers {
		buffers[i] = p.Get(capHint)
	}
	for _, b := range buffers {
		p.Put(b)
	}
}

// DefaultPool is the process-wide pool used by States created without WithPool.
var DefaultPool = NewPool()
