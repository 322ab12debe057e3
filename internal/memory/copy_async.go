package memory

import (
	"github.com/axon-gpu/axon/internal/driver"
)

// Asynchronous transfer contract. These functions enqueue the copy on a
// stream and return immediately; the bytes move when the stream reaches the
// operation. Within one stream, copies execute in strict submission order;
// across streams there is no order at all.
//
// The caller carries obligations the type system cannot check:
//
//   - Host-side memory must be pinned for the duration of the transfer.
//     These entry points therefore accept only owning handles, never Go
//     slices; route host data through a Locked or Unified handle first.
//   - Every handle involved must stay live and untouched by any other
//     operation until the caller has observed, through Stream.Synchronize,
//     that this specific copy completed. Releasing or rewriting a handle
//     with a copy in flight corrupts the transfer.
//
// Once enqueued, a copy cannot be cancelled. Size mismatches are still
// detected synchronously, before anything is enqueued.

// CopyBoxAsync enqueues a copy of src's value into dst on s.
func CopyBoxAsync[T any, Pd, Ps Policy](s *driver.Stream, dst *Box[T, Pd], src *Box[T, Ps]) error {
	if err := checkPair(dst.ctx, src.ctx, dst.ptr, src.ptr); err != nil {
		return err
	}
	n := sizeOf[T]()
	if n == 0 {
		return nil
	}
	return dst.ctx.drv.MemcpyAsync(dst.ptr, src.ptr, n, s)
}

// CopyBufferAsync enqueues a copy of src's full contents into dst on s.
// Element counts must match.
func CopyBufferAsync[T any, Pd, Ps Policy](s *driver.Stream, dst *Buffer[T, Pd], src *Buffer[T, Ps]) error {
	if err := checkPair(dst.ctx, src.ctx, dst.ptr, src.ptr); err != nil {
		return err
	}
	if dst.cap != src.cap {
		return &SizeMismatchError{Dst: dst.cap, Src: src.cap}
	}
	n := uintptr(dst.cap) * sizeOf[T]()
	if n == 0 {
		return nil
	}
	return dst.ctx.drv.MemcpyAsync(dst.ptr, src.ptr, n, s)
}
