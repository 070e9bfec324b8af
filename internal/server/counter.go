package server

import "sync/atomic"

// ConnCounter is the single atomic active-connection counter shared across
// a listener's current incarnation and any listener it is mid-restart with,
// per spec.md §4.6 ("the connection counter is shared across both so their
// natural exit decrements it").
type ConnCounter struct {
	n atomic.Int64
}

func (c *ConnCounter) Inc() int64 { return c.n.Add(1) }
func (c *ConnCounter) Dec() int64 { return c.n.Add(-1) }
func (c *ConnCounter) Load() int64 { return c.n.Load() }

// TryAcquire increments the counter and returns true unless limit is set
// and the pre-increment value already met or exceeded it, in which case the
// counter is restored and false is returned; a zero limit therefore rejects
// every acquire. A nil limit
// means no cap, matching the management listener which never enforces
// max_connections.
func (c *ConnCounter) TryAcquire(limit *uint64) bool {
	if limit == nil {
		c.Inc()
		return true
	}
	before := c.n.Add(1) - 1
	if before >= int64(*limit) {
		c.Dec()
		return false
	}
	return true
}
