// Package hostsim implements the driver contract on plain host memory.
// Every region is backed by the Go heap, so the full ownership and transfer
// machinery runs on machines without an accelerator, the way a CPU backend
// stands in for a GPU one. Region semantics (who may dereference what) are
// enforced one layer up, in internal/memory.
package hostsim

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/axon-gpu/axon/internal/driver"
)

// Option configures a Driver.
type Option func(*Driver)

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) { d.log = log }
}

// WithRegionLimit caps the bytes that may be live in a region at once.
// Zero or negative means unlimited.
func WithRegionLimit(region driver.Region, bytes int64) Option {
	return func(d *Driver) { d.limit[region] = bytes }
}

// WithAllocFailure installs a hook consulted before every allocation.
// A non-nil return fails the allocation with that error. Used to exercise
// allocation failure paths in tests.
func WithAllocFailure(f func(region driver.Region, size uintptr) error) Option {
	return func(d *Driver) { d.failAlloc = f }
}

// WithFreeFailure installs a hook consulted before every free. A non-nil
// return fails the free with that error while leaving the allocation live,
// simulating a deferred error surfacing from earlier asynchronous work.
func WithFreeFailure(f func(p driver.Ptr) error) Option {
	return func(d *Driver) { d.failFree = f }
}

// allocation is one slot in the owner table. Freed slots are kept as
// tombstones so double frees are detected rather than misreported as
// unknown handles.
type allocation struct {
	buf    []byte
	region driver.Region
	size   uintptr
	freed  bool
}

// Driver simulates an accelerator runtime on host memory. It keeps the
// authoritative owner table: every live allocation is a slot keyed by
// handle, with per-region used/peak accounting.
type Driver struct {
	mu         sync.Mutex
	allocs     map[uint64]*allocation
	nextHandle uint64
	used       map[driver.Region]int64
	peak       map[driver.Region]int64
	limit      map[driver.Region]int64

	streamMu sync.Mutex
	streamID int32
	streams  []*driver.Stream

	failAlloc func(driver.Region, uintptr) error
	failFree  func(driver.Ptr) error

	log *zap.Logger
}

var _ driver.Driver = (*Driver)(nil)

// New creates a host-simulated driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		allocs: make(map[uint64]*allocation),
		used:   make(map[driver.Region]int64),
		peak:   make(map[driver.Region]int64),
		limit:  make(map[driver.Region]int64),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name identifies the driver implementation.
func (d *Driver) Name() string { return "hostsim" }

// Alloc reserves size bytes of host memory tagged with the given region.
func (d *Driver) Alloc(region driver.Region, size uintptr) (driver.Ptr, error) {
	if !region.Allocatable() {
		return driver.Ptr{}, fmt.Errorf("hostsim: alloc in %s: %w", region, driver.ErrRegionMismatch)
	}
	if size == 0 {
		return driver.Ptr{}, fmt.Errorf("hostsim: alloc in %s: %w", region, driver.ErrInvalidSize)
	}
	if d.failAlloc != nil {
		if err := d.failAlloc(region, size); err != nil {
			return driver.Ptr{}, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if limit := d.limit[region]; limit > 0 && d.used[region]+int64(size) > limit {
		return driver.Ptr{}, fmt.Errorf("hostsim: %s region needs %d bytes, %d available: %w",
			region, size, limit-d.used[region], driver.ErrOutOfMemory)
	}

	// Round up so adjacent allocations never share a cache line.
	const alignment = 64
	alignedSize := (size + alignment - 1) &^ (alignment - 1)
	buf := make([]byte, alignedSize)

	d.nextHandle++
	handle := d.nextHandle
	d.allocs[handle] = &allocation{buf: buf, region: region, size: size}

	d.used[region] += int64(size)
	if d.used[region] > d.peak[region] {
		d.peak[region] = d.used[region]
	}

	d.log.Debug("alloc",
		zap.Uint64("handle", handle),
		zap.Stringer("region", region),
		zap.Uint64("bytes", uint64(size)))

	return driver.NewPtr(unsafe.Pointer(&buf[0]), handle, size, region), nil
}

// Free releases an allocation. Tokens must match the slot they were issued
// for; freed slots remain as tombstones for double-free detection.
func (d *Driver) Free(p driver.Ptr) error {
	if p.Region() == driver.Host || p.Handle() == 0 {
		return fmt.Errorf("hostsim: free %s token: %w", p.Region(), driver.ErrBadHandle)
	}

	d.mu.Lock()
	a, ok := d.allocs[p.Handle()]
	switch {
	case !ok:
		d.mu.Unlock()
		return fmt.Errorf("hostsim: free handle %d: %w", p.Handle(), driver.ErrBadHandle)
	case a.freed:
		d.mu.Unlock()
		return fmt.Errorf("hostsim: free handle %d: %w", p.Handle(), driver.ErrDoubleFree)
	case a.region != p.Region():
		d.mu.Unlock()
		return fmt.Errorf("hostsim: free %s token against %s slot: %w",
			p.Region(), a.region, driver.ErrRegionMismatch)
	}
	d.mu.Unlock()

	if d.failFree != nil {
		if err := d.failFree(p); err != nil {
			// Allocation stays live so the caller may retry.
			return err
		}
	}

	d.mu.Lock()
	a.freed = true
	a.buf = nil
	d.used[a.region] -= int64(a.size)
	d.mu.Unlock()

	d.log.Debug("free",
		zap.Uint64("handle", p.Handle()),
		zap.Stringer("region", p.Region()),
		zap.Uint64("bytes", uint64(a.size)))

	return nil
}

// Memcpy copies n bytes between endpoints, blocking until complete. All
// hostsim regions are host-mapped, so every combination of endpoints is a
// plain memory copy.
func (d *Driver) Memcpy(dst, src driver.Ptr, n uintptr) error {
	if n == 0 {
		return nil
	}
	if err := checkEndpoint("dst", dst, n); err != nil {
		return err
	}
	if err := checkEndpoint("src", src, n); err != nil {
		return err
	}
	copy(unsafe.Slice((*byte)(dst.Raw()), n), unsafe.Slice((*byte)(src.Raw()), n))
	return nil
}

// MemcpyAsync enqueues the copy on s and returns immediately. Endpoint
// validation happens now; the bytes move when the stream reaches the task.
func (d *Driver) MemcpyAsync(dst, src driver.Ptr, n uintptr, s *driver.Stream) error {
	if n == 0 {
		return nil
	}
	if err := checkEndpoint("dst", dst, n); err != nil {
		return err
	}
	if err := checkEndpoint("src", src, n); err != nil {
		return err
	}
	s.Submit(func() {
		copy(unsafe.Slice((*byte)(dst.Raw()), n), unsafe.Slice((*byte)(src.Raw()), n))
	})
	return nil
}

func checkEndpoint(name string, p driver.Ptr, n uintptr) error {
	if p.Raw() == nil {
		return fmt.Errorf("hostsim: memcpy %s: %w", name, driver.ErrBadHandle)
	}
	if n > p.Size() {
		return fmt.Errorf("hostsim: memcpy %s: %d bytes exceeds %d-byte allocation", name, n, p.Size())
	}
	return nil
}

// CreateStream creates an ordered execution queue owned by this driver.
func (d *Driver) CreateStream(nonBlocking bool, priority int) (*driver.Stream, error) {
	id := int(atomic.AddInt32(&d.streamID, 1))
	s := driver.NewStream(id, nonBlocking, priority)

	d.streamMu.Lock()
	d.streams = append(d.streams, s)
	d.streamMu.Unlock()

	return s, nil
}

// Synchronize blocks until every stream created by this driver drains.
func (d *Driver) Synchronize() error {
	d.streamMu.Lock()
	streams := make([]*driver.Stream, len(d.streams))
	copy(streams, d.streams)
	d.streamMu.Unlock()

	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// Close destroys all streams. Live allocations are logged, not reclaimed:
// leaked memory stays leaked.
func (d *Driver) Close() error {
	d.streamMu.Lock()
	streams := d.streams
	d.streams = nil
	d.streamMu.Unlock()

	for _, s := range streams {
		s.Destroy()
	}

	d.mu.Lock()
	live := 0
	for _, a := range d.allocs {
		if !a.freed {
			live++
		}
	}
	d.mu.Unlock()

	if live > 0 {
		d.log.Warn("driver closed with live allocations", zap.Int("count", live))
	}
	return nil
}

// Stats returns live and peak byte counts for a region.
func (d *Driver) Stats(region driver.Region) (used, peak int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.used[region], d.peak[region]
}
