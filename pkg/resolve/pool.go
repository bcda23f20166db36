package resolve

import (
	"sync"

	"github.com/bastiangx/addrserve/pkg/region"
)

// Pool hands out resolvers bound to one catalog. A resolver taken from the
// pool belongs to the caller until Put.
type Pool struct {
	pool sync.Pool
}

func NewPool(cat *region.Catalog) *Pool {
	p := &Pool{}
	p.pool.New = func() any { return New(cat) }
	return p
}

// Get returns a reset resolver.
func (p *Pool) Get() *Resolver {
	r := p.pool.Get().(*Resolver)
	r.Reset()
	return r
}

func (p *Pool) Put(r *Resolver) {
	if r == nil {
		return
	}
	p.pool.Put(r)
}
