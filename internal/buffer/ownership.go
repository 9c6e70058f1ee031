package buffer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Owner is a foreign object with its own reference count, typically the
// host object that exported a buffer.
type Owner interface {
	IncRef()
	DecRef()
}

// HostLock guards the host runtime's bookkeeping. Reference counts of
// foreign objects are only decremented while it is held.
type HostLock interface {
	Lock()
	Unlock()
}

// Handle ties the lifetime of an Owner to native memory. Acquiring the
// handle increments the owner's count; Release decrements it exactly once,
// whichever goroutine calls it.
type Handle struct {
	owner    Owner
	lock     HostLock
	once     sync.Once
	released atomic.Bool
}

// Acquire increments the owner's reference count and returns a handle that
// gives it back on Release. lock may be nil.
func Acquire(owner Owner, lock HostLock) *Handle {
	owner.IncRef()
	Logger().WithFields(logrus.Fields{
		"owner": fmt.Sprintf("%T", owner),
	}).Debug("Acquired foreign buffer owner")
	return &Handle{owner: owner, lock: lock}
}

// Release decrements the owner's reference count under the host lock.
// Calls after the first are no-ops.
func (h *Handle) Release() {
	h.once.Do(func() {
		if h.lock != nil {
			h.lock.Lock()
			defer h.lock.Unlock()
		}
		h.owner.DecRef()
		h.released.Store(true)
		Logger().WithFields(logrus.Fields{
			"owner": fmt.Sprintf("%T", h.owner),
		}).Debug("Released foreign buffer owner")
	})
}

// Released reports whether Release has run.
func (h *Handle) Released() bool { return h.released.Load() }

// RefCounter is an Owner backed by a plain counter. It suits hosts that do
// not track ownership themselves and tests.
type RefCounter struct {
	count atomic.Int64
}

// IncRef increments the count.
func (r *RefCounter) IncRef() { r.count.Add(1) }

// DecRef decrements the count.
func (r *RefCounter) DecRef() { r.count.Add(-1) }

// Count returns the current count.
func (r *RefCounter) Count() int64 { return r.count.Load() }
