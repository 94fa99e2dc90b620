package duk

import (
	"fmt"
	"log"
	"sync"
)

// Pool manages a fixed-size pool of pre-warmed Contexts. A Context is not
// shareable across concurrent callers, so hosts that script concurrently
// check one out per unit of work and return it afterwards.
type Pool struct {
	contexts chan *Context
	size     int
	mu       sync.Mutex
}

// NewPool creates a pool of size Contexts, evaluating each setup script in
// every Context before it enters the pool.
func NewPool(size int, setup []string, opts ...Option) (*Pool, error) {
	return newPool(size, setup, func() *Context { return New(opts...) })
}

// newPool builds the pool from a Context factory. Tests inject fake-backed
// Contexts here.
func newPool(size int, setup []string, factory func() *Context) (*Pool, error) {
	pool := &Pool{
		contexts: make(chan *Context, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		c := factory()
		if err := warmContext(c, setup); err != nil {
			c.Close()
			pool.Dispose()
			return nil, fmt.Errorf("warming pool context %d: %w", i, err)
		}
		pool.contexts <- c
	}

	return pool, nil
}

func warmContext(c *Context, setup []string) error {
	for _, src := range setup {
		if _, err := c.EvalString(src); err != nil {
			return fmt.Errorf("setup script: %w", err)
		}
	}
	return nil
}

// Get acquires a Context from the pool. Blocks until one is available.
func (p *Pool) Get() (*Context, error) {
	c, ok := <-p.contexts
	if !ok {
		return nil, fmt.Errorf("context pool is disposed")
	}
	return c, nil
}

// Put returns a Context to the pool. A Context that was closed or disabled
// by a fatal engine fault is discarded instead of being reused.
func (p *Pool) Put(c *Context) {
	if c.closed || c.poisoned {
		log.Printf("duk: discarding context %s (closed or disabled)", c.id)
		if !c.closed {
			c.Close()
		}
		return
	}
	select {
	case p.contexts <- c:
	default:
		c.Close()
	}
}

// Dispose closes every Context in the pool. Contexts checked out at the
// time of the call are closed when returned via Put.
func (p *Pool) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		select {
		case c := <-p.contexts:
			c.Close()
		default:
			return
		}
	}
}
