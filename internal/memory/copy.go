package memory

import (
	"runtime"
	"unsafe"

	"github.com/axon-gpu/axon/internal/driver"
)

// Synchronous transfer contract. Every function here blocks until all bytes
// have moved, for any combination of Device, Locked, and Unified endpoints;
// the driver picks the physical path. Because the call does not return
// mid-flight, there are no lifetime or aliasing obligations beyond the
// usual exclusive-ownership rule, and the functions are safe to call from
// ordinary code.
//
// Source and destination must hold the same element count; a mismatch is
// refused with a SizeMismatchError, never truncated.

// CopyBox copies the value of src into dst, blocking until complete.
func CopyBox[T any, Pd, Ps Policy](dst *Box[T, Pd], src *Box[T, Ps]) error {
	if err := checkPair(dst.ctx, src.ctx, dst.ptr, src.ptr); err != nil {
		return err
	}
	n := sizeOf[T]()
	if n == 0 {
		return nil
	}
	return dst.ctx.drv.Memcpy(dst.ptr, src.ptr, n)
}

// CopyBoxIn copies *src from host memory into dst, blocking until complete.
func CopyBoxIn[T any, P Policy](dst *Box[T, P], src *T) error {
	if dst.ptr.IsZero() {
		return ErrReleased
	}
	n := sizeOf[T]()
	if n == 0 {
		return nil
	}
	err := dst.ctx.drv.Memcpy(dst.ptr, driver.HostPtr(unsafe.Pointer(src), n), n)
	runtime.KeepAlive(src)
	return err
}

// CopyBoxOut copies the value of src into *dst in host memory, blocking
// until complete.
func CopyBoxOut[T any, P Policy](dst *T, src *Box[T, P]) error {
	if src.ptr.IsZero() {
		return ErrReleased
	}
	n := sizeOf[T]()
	if n == 0 {
		return nil
	}
	err := src.ctx.drv.Memcpy(driver.HostPtr(unsafe.Pointer(dst), n), src.ptr, n)
	runtime.KeepAlive(dst)
	return err
}

// CopyBuffer copies the full contents of src into dst, blocking until
// complete. Element counts must match.
func CopyBuffer[T any, Pd, Ps Policy](dst *Buffer[T, Pd], src *Buffer[T, Ps]) error {
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
	return dst.ctx.drv.Memcpy(dst.ptr, src.ptr, n)
}

// CopyIn copies src from host memory into dst, blocking until complete.
// Element counts must match.
func CopyIn[T any, P Policy](dst *Buffer[T, P], src []T) error {
	if dst.ptr.IsZero() {
		return ErrReleased
	}
	if dst.cap != len(src) {
		return &SizeMismatchError{Dst: dst.cap, Src: len(src)}
	}
	n := uintptr(dst.cap) * sizeOf[T]()
	if n == 0 {
		return nil
	}
	err := dst.ctx.drv.Memcpy(dst.ptr, driver.HostPtr(unsafe.Pointer(&src[0]), n), n)
	runtime.KeepAlive(src)
	return err
}

// CopyOut copies the contents of src into dst in host memory, blocking
// until complete. Element counts must match.
func CopyOut[T any, P Policy](dst []T, src *Buffer[T, P]) error {
	if src.ptr.IsZero() {
		return ErrReleased
	}
	if len(dst) != src.cap {
		return &SizeMismatchError{Dst: len(dst), Src: src.cap}
	}
	n := uintptr(src.cap) * sizeOf[T]()
	if n == 0 {
		return nil
	}
	err := src.ctx.drv.Memcpy(driver.HostPtr(unsafe.Pointer(&dst[0]), n), src.ptr, n)
	runtime.KeepAlive(dst)
	return err
}

func checkPair(dstCtx, srcCtx *Context, dst, src driver.Ptr) error {
	if dst.IsZero() || src.IsZero() {
		return ErrReleased
	}
	if dstCtx != srcCtx {
		return ErrContextMismatch
	}
	return nil
}
