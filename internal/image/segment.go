package image

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Releaser is notified once when the memory of a data segment is no longer
// referenced by any image.
type Releaser interface {
	Release()
}

// DataSegment is a reference-counted block of sample memory shared by all
// images that view it. The memory is either allocated by the segment itself
// or borrowed from an external owner, in which case the owner's Releaser is
// called exactly once when the last image lets go of the segment.
type DataSegment struct {
	data     []byte
	refCount atomic.Int32
	external bool
	releaser Releaser
	cleanup  runtime.Cleanup
	once     sync.Once
	mu       sync.Mutex // For safe deallocation
}

// newDataSegment allocates a zeroed segment of size bytes with refCount = 1.
func newDataSegment(size int) *DataSegment {
	seg := &DataSegment{data: make([]byte, size)}
	seg.refCount.Store(1)
	return seg
}

// NewExternalSegment wraps memory the segment does not own. The releaser
// may be nil. If every image referencing the segment becomes unreachable
// without being released, the releaser is called from the runtime cleanup
// goroutine.
func NewExternalSegment(data []byte, releaser Releaser) *DataSegment {
	seg := &DataSegment{data: data, external: true, releaser: releaser}
	seg.refCount.Store(0)
	if releaser != nil {
		seg.cleanup = runtime.AddCleanup(seg, func(r Releaser) { r.Release() }, releaser)
	}
	return seg
}

// Bytes returns the whole memory block of the segment.
func (s *DataSegment) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsExternal reports whether the memory belongs to someone else.
func (s *DataSegment) IsExternal() bool { return s.external }

// RefCount returns the number of images holding the segment.
func (s *DataSegment) RefCount() int { return int(s.refCount.Load()) }

func (s *DataSegment) addRef() {
	s.refCount.Add(1)
}

// release decrements the reference count and drops the memory if it reaches 0.
func (s *DataSegment) release() {
	if s.refCount.Add(-1) > 0 {
		return
	}
	s.once.Do(func() {
		s.mu.Lock()
		s.data = nil
		s.mu.Unlock()
		if s.releaser != nil {
			s.cleanup.Stop()
			s.releaser.Release()
		}
	})
}
