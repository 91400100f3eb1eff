package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock stamps outgoing ops with this peer's site id and a Lamport counter.
type Clock struct {
	site    string
	lamport atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

func (c *Clock) Site() string { return c.site }

// Stamp assigns the next Lamport value and the site id to op.
func (c *Clock) Stamp(op Op) Op {
	op.Lamport = c.lamport.Add(1)
	op.Site = c.site
	return op
}

// Observe advances the counter past a remote timestamp.
func (c *Clock) Observe(remote uint64) {
	for {
		cur := c.lamport.Load()
		if remote <= cur || c.lamport.CompareAndSwap(cur, remote) {
			return
		}
	}
}

// Now returns the last assigned or observed value.
func (c *Clock) Now() uint64 { return c.lamport.Load() }

// NewStrokeID returns a fresh identifier for a stroke.
func NewStrokeID() string { return uuid.NewString() }
