// Copyright 2026 The Axon Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package memory provides the public API for owning accelerator memory.
//
// The package defines exclusively-owning handles over heterogeneous memory
// regions and the contracts that move data between them:
//   - Box[T, P]: owning handle for a single value
//   - Buffer[T, P]: owning handle for a contiguous sequence
//   - Device, Locked, Unified: memory policies selected at the type level
//   - CopyBuffer / CopyBufferAsync and friends: blocking and stream-ordered
//     transfer contracts
//   - Promise: single-shot deferred work bound to a stream
//
// Example:
//
//	rt := hostsim.New()
//	defer rt.Close()
//	ctx := memory.NewContext(rt)
//
//	host, _ := memory.NewBufferFromSlice[float32, memory.Locked](ctx, data)
//	defer host.Free()
//	dev, _ := memory.NewBufferUninitialized[float32, memory.Device](ctx, host.Len())
//	defer dev.Free()
//	_ = memory.CopyBuffer(dev, host)
package memory

import (
	"cmp"
	"hash/maphash"

	"github.com/axon-gpu/axon/driver"
	internalmemory "github.com/axon-gpu/axon/internal/memory"
)

// Type aliases for the public API.

// Policy is the sealed capability descriptor for one memory region. Only
// Device, Locked, and Unified satisfy it.
type Policy = internalmemory.Policy

// HostPolicy narrows Policy to host-dereferenceable regions (Locked,
// Unified). Direct access APIs require it at compile time.
type HostPolicy = internalmemory.HostPolicy

// Device is the policy for device-exclusive memory.
type Device = internalmemory.Device

// Locked is the policy for page-locked (pinned) host memory.
type Locked = internalmemory.Locked

// Unified is the policy for migratable host+device memory.
type Unified = internalmemory.Unified

// Context binds owning handles to an accelerator driver.
type Context = internalmemory.Context

// Option configures a Context.
type Option = internalmemory.Option

// WithLogger attaches a structured logger to a Context.
var WithLogger = internalmemory.WithLogger

// Box is an exclusively-owning handle for a single value of type T in the
// region selected by P.
type Box[T any, P Policy] = internalmemory.Box[T, P]

// Buffer is an exclusively-owning handle for a contiguous sequence of T in
// the region selected by P.
type Buffer[T any, P Policy] = internalmemory.Buffer[T, P]

// Raw is an opaque ownership token produced by decomposing a handle.
type Raw = internalmemory.Raw

// Promise is a single-shot unit of deferred work bound to a stream.
type Promise = internalmemory.Promise

// Executor is the stream-scoped execution context handed to a promise's
// closure.
type Executor = internalmemory.Executor

// Errors.
var (
	ErrSizeOverflow    = internalmemory.ErrSizeOverflow
	ErrReleased        = internalmemory.ErrReleased
	ErrContextMismatch = internalmemory.ErrContextMismatch
	ErrAlreadyResolved = internalmemory.ErrAlreadyResolved
	ErrDiscarded       = internalmemory.ErrDiscarded
)

// AllocError reports a rejected allocation.
type AllocError = internalmemory.AllocError

// SizeMismatchError reports a copy between endpoints of different element
// counts.
type SizeMismatchError = internalmemory.SizeMismatchError

// ReleaseError reports a failed explicit release; the handle it came from
// is still live.
type ReleaseError = internalmemory.ReleaseError

// NewContext creates a context over the given driver.
func NewContext(d driver.Driver, opts ...Option) *Context {
	return internalmemory.NewContext(d, opts...)
}

// Box constructors and access.

// NewBox allocates room for one T and writes val into it.
func NewBox[T any, P Policy](ctx *Context, val T) (*Box[T, P], error) {
	return internalmemory.NewBox[T, P](ctx, val)
}

// NewBoxUninitialized allocates room for one T without writing anything.
// The caller must fully initialize the value before any read.
func NewBoxUninitialized[T any, P Policy](ctx *Context) (*Box[T, P], error) {
	return internalmemory.NewBoxUninitialized[T, P](ctx)
}

// AdoptRawBox reconstructs a Box from a token produced by IntoRaw.
func AdoptRawBox[T any, P Policy](ctx *Context, raw Raw) *Box[T, P] {
	return internalmemory.AdoptRawBox[T, P](ctx, raw)
}

// Deref returns a pointer to the boxed value. Host-dereferenceable
// policies only.
func Deref[T any, P HostPolicy](b *Box[T, P]) *T {
	return internalmemory.Deref(b)
}

// Load reads the boxed value. Host-dereferenceable policies only.
func Load[T any, P HostPolicy](b *Box[T, P]) T {
	return internalmemory.Load(b)
}

// Store writes the boxed value. Host-dereferenceable policies only.
func Store[T any, P HostPolicy](b *Box[T, P], val T) {
	internalmemory.Store(b, val)
}

// LeakRef consumes the box and returns a pointer valid for the remainder
// of the process.
func LeakRef[T any, P HostPolicy](b *Box[T, P]) *T {
	return internalmemory.LeakRef(b)
}

// BoxEqual reports whether two boxes hold equal values.
func BoxEqual[T comparable, P HostPolicy](a, b *Box[T, P]) bool {
	return internalmemory.BoxEqual(a, b)
}

// BoxCompare orders two boxes by their contained values.
func BoxCompare[T cmp.Ordered, P HostPolicy](a, b *Box[T, P]) int {
	return internalmemory.BoxCompare(a, b)
}

// BoxHash hashes the contained value.
func BoxHash[T comparable, P HostPolicy](seed maphash.Seed, b *Box[T, P]) uint64 {
	return internalmemory.BoxHash(seed, b)
}

// Buffer constructors and access.

// NewBuffer allocates a buffer of count elements, every one set to val.
// Host-dereferenceable policies only.
func NewBuffer[T any, P HostPolicy](ctx *Context, val T, count int) (*Buffer[T, P], error) {
	return internalmemory.NewBuffer[T, P](ctx, val, count)
}

// NewBufferFromSlice allocates a buffer sized to vals and copies every
// element in. Host-dereferenceable policies only.
func NewBufferFromSlice[T any, P HostPolicy](ctx *Context, vals []T) (*Buffer[T, P], error) {
	return internalmemory.NewBufferFromSlice[T, P](ctx, vals)
}

// NewBufferUninitialized allocates room for count elements without writing
// them. The overflow check runs before any driver call; the caller must
// initialize every element it will read.
func NewBufferUninitialized[T any, P Policy](ctx *Context, count int) (*Buffer[T, P], error) {
	return internalmemory.NewBufferUninitialized[T, P](ctx, count)
}

// Slice exposes the buffer as a []T aliasing the allocation. Valid only
// while the buffer is live. Host-dereferenceable policies only.
func Slice[T any, P HostPolicy](b *Buffer[T, P]) []T {
	return internalmemory.Slice(b)
}

// AdoptRawParts reconstructs a buffer from a token and capacity produced by
// IntoRawParts.
func AdoptRawParts[T any, P Policy](ctx *Context, raw Raw, capacity int) *Buffer[T, P] {
	return internalmemory.AdoptRawParts[T, P](ctx, raw, capacity)
}

// Synchronous transfers. Blocking; valid for any region combination; a
// length mismatch is refused with SizeMismatchError.

// CopyBox copies the value of src into dst, blocking until complete.
func CopyBox[T any, Pd, Ps Policy](dst *Box[T, Pd], src *Box[T, Ps]) error {
	return internalmemory.CopyBox(dst, src)
}

// CopyBoxIn copies *src from host memory into dst.
func CopyBoxIn[T any, P Policy](dst *Box[T, P], src *T) error {
	return internalmemory.CopyBoxIn(dst, src)
}

// CopyBoxOut copies the value of src into *dst in host memory.
func CopyBoxOut[T any, P Policy](dst *T, src *Box[T, P]) error {
	return internalmemory.CopyBoxOut(dst, src)
}

// CopyBuffer copies the full contents of src into dst, blocking until
// complete.
func CopyBuffer[T any, Pd, Ps Policy](dst *Buffer[T, Pd], src *Buffer[T, Ps]) error {
	return internalmemory.CopyBuffer(dst, src)
}

// CopyIn copies src from host memory into dst.
func CopyIn[T any, P Policy](dst *Buffer[T, P], src []T) error {
	return internalmemory.CopyIn(dst, src)
}

// CopyOut copies the contents of src into dst in host memory.
func CopyOut[T any, P Policy](dst []T, src *Buffer[T, P]) error {
	return internalmemory.CopyOut(dst, src)
}

// Asynchronous transfers. Enqueue on a stream and return immediately.
// Host-side endpoints must be Locked or Unified handles, and every handle
// must stay live until the stream is synchronized. Completion is observed
// only via Stream.Synchronize.

// CopyBoxAsync enqueues a copy of src's value into dst on s.
func CopyBoxAsync[T any, Pd, Ps Policy](s *driver.Stream, dst *Box[T, Pd], src *Box[T, Ps]) error {
	return internalmemory.CopyBoxAsync(s, dst, src)
}

// CopyBufferAsync enqueues a copy of src's full contents into dst on s.
func CopyBufferAsync[T any, Pd, Ps Policy](s *driver.Stream, dst *Buffer[T, Pd], src *Buffer[T, Ps]) error {
	return internalmemory.CopyBufferAsync(s, dst, src)
}

// NewPromise binds fn to a stream as a single-shot unit of deferred work.
// Nothing runs until Resolve.
func NewPromise(ctx *Context, stream *driver.Stream, fn func(*Executor)) *Promise {
	return internalmemory.NewPromise(ctx, stream, fn)
}
