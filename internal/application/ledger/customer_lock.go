package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// customerKey identifies one customer's ledger within one tenant
type customerKey struct {
	tenantID   uuid.UUID
	customerID uuid.UUID
}

type customerLock struct {
	mu   sync.Mutex
	refs int
}

// customerLocks serializes ledger recomputation per customer. Concurrent
// writes for different customers proceed in parallel; writes for the same
// customer queue behind each other. Lock entries are reference counted so
// the map does not grow with tenant count.
type customerLocks struct {
	mu    sync.Mutex
	locks map[customerKey]*customerLock
}

func newCustomerLocks() *customerLocks {
	return &customerLocks{
		locks: make(map[customerKey]*customerLock),
	}
}

// Acquire blocks until the customer's lock is held and returns the release
// function. The release function must be called exactly once.
func (c *customerLocks) Acquire(tenantID, customerID uuid.UUID) func() {
	key := customerKey{tenantID: tenantID, customerID: customerID}

	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &customerLock{}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}
