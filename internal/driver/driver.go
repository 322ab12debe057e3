// Package driver defines the contract between the ownership layer and an
// accelerator runtime: raw allocation primitives per memory region, blocking
// and stream-ordered copies, and stream creation. Implementations live in
// subpackages (hostsim, webgpu); the ownership layer in internal/memory never
// touches a runtime directly.
package driver

import (
	"errors"
	"unsafe"
)

// Region identifies a class of accelerator-visible memory.
type Region int

// Supported memory regions.
const (
	// Device is device-exclusive memory. Host code cannot dereference it.
	Device Region = iota
	// Locked is page-locked (pinned) host memory, visible to the device.
	Locked
	// Unified is migratable memory visible to both host and device.
	Unified
	// Host marks plain, unowned host memory used as a copy endpoint.
	// It is never a valid allocation region.
	Host
)

// String returns a human-readable region name.
func (r Region) String() string {
	switch r {
	case Device:
		return "device"
	case Locked:
		return "locked"
	case Unified:
		return "unified"
	case Host:
		return "host"
	default:
		return "unknown"
	}
}

// HostAccessible reports whether host code may dereference memory in this
// region directly, without a transfer.
func (r Region) HostAccessible() bool {
	return r == Locked || r == Unified || r == Host
}

// Allocatable reports whether Alloc accepts this region.
func (r Region) Allocatable() bool {
	return r == Device || r == Locked || r == Unified
}

// Ptr is an opaque allocation token. For host-visible memory it carries the
// host address; for device-only memory the address may be nil and the handle
// identifies the allocation in the driver's owner table. A Ptr says nothing
// about ownership: the memory package layers exclusive ownership on top.
type Ptr struct {
	p      unsafe.Pointer
	handle uint64
	size   uintptr
	region Region
}

// NewPtr builds a token for an allocation. Intended for Driver
// implementations.
func NewPtr(p unsafe.Pointer, handle uint64, size uintptr, region Region) Ptr {
	return Ptr{p: p, handle: handle, size: size, region: region}
}

// HostPtr wraps plain host memory as a copy endpoint.
func HostPtr(p unsafe.Pointer, size uintptr) Ptr {
	return Ptr{p: p, size: size, region: Host}
}

// Raw returns the host-visible address, or nil if the region is not
// host-mapped by the driver.
func (p Ptr) Raw() unsafe.Pointer { return p.p }

// Handle returns the driver-assigned allocation handle.
func (p Ptr) Handle() uint64 { return p.handle }

// Size returns the allocation size in bytes.
func (p Ptr) Size() uintptr { return p.size }

// Region returns the memory region this token belongs to.
func (p Ptr) Region() Region { return p.region }

// IsZero reports whether p is the zero token (no allocation).
func (p Ptr) IsZero() bool { return p.p == nil && p.handle == 0 }

// Driver is the accelerator runtime seen by the ownership layer.
//
// Alloc and Free are paired: a Ptr produced by Alloc must be passed back to
// the same driver's Free, never to another driver or after a successful Free.
// Memcpy blocks until all bytes have moved and is valid for any combination
// of endpoint regions. MemcpyAsync only enqueues on the stream and returns
// immediately; completion is observed through Stream.Synchronize.
type Driver interface {
	// Name identifies the driver implementation.
	Name() string

	// Alloc reserves size bytes in the given region.
	Alloc(region Region, size uintptr) (Ptr, error)

	// Free releases an allocation. A failure may surface a deferred error
	// from unrelated prior asynchronous work; in that case the allocation
	// is still live and Free may be retried.
	Free(p Ptr) error

	// Memcpy copies n bytes from src to dst, blocking until complete.
	Memcpy(dst, src Ptr, n uintptr) error

	// MemcpyAsync enqueues a copy of n bytes on s and returns immediately.
	MemcpyAsync(dst, src Ptr, n uintptr, s *Stream) error

	// CreateStream creates an ordered execution queue.
	CreateStream(nonBlocking bool, priority int) (*Stream, error)

	// Synchronize blocks until all streams created by this driver drain.
	Synchronize() error

	// Close tears down the driver. Outstanding allocations are reported,
	// not reclaimed.
	Close() error
}

// Errors shared by driver implementations.
var (
	// ErrOutOfMemory indicates the backing region is exhausted.
	ErrOutOfMemory = errors.New("driver: out of memory")

	// ErrInvalidSize indicates a non-positive allocation size.
	ErrInvalidSize = errors.New("driver: size must be positive")

	// ErrBadHandle indicates a token unknown to this driver.
	ErrBadHandle = errors.New("driver: unknown allocation handle")

	// ErrDoubleFree indicates a token that was already freed.
	ErrDoubleFree = errors.New("driver: double free detected")

	// ErrRegionMismatch indicates a token used against the wrong region.
	ErrRegionMismatch = errors.New("driver: region mismatch")
)
