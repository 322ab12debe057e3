package memory

import (
	"errors"
	"fmt"

	"github.com/axon-gpu/axon/internal/driver"
)

// Sentinel errors returned by the ownership layer.
var (
	// ErrSizeOverflow indicates count * element size exceeds the address
	// space. Always detected before any driver call.
	ErrSizeOverflow = errors.New("memory: byte size overflows address space")

	// ErrReleased indicates an operation on a handle whose allocation has
	// already been released or consumed.
	ErrReleased = errors.New("memory: handle already released")

	// ErrContextMismatch indicates a copy between handles bound to
	// different contexts.
	ErrContextMismatch = errors.New("memory: handles bound to different contexts")

	// ErrAlreadyResolved indicates a second Resolve on a promise.
	ErrAlreadyResolved = errors.New("memory: promise already resolved")

	// ErrDiscarded indicates Resolve on a discarded promise.
	ErrDiscarded = errors.New("memory: promise discarded")
)

// AllocError reports a rejected allocation. The driver's error is preserved
// untouched in Err.
type AllocError struct {
	Region driver.Region
	Size   uintptr
	Err    error
}

// Error implements the error interface.
func (e *AllocError) Error() string {
	return fmt.Sprintf("memory: alloc %d bytes in %s: %v", e.Size, e.Region, e.Err)
}

// Unwrap returns the driver's error.
func (e *AllocError) Unwrap() error { return e.Err }

// SizeMismatchError reports a copy between endpoints of different element
// counts. The copy is refused; nothing is truncated.
type SizeMismatchError struct {
	Dst, Src int
}

// Error implements the error interface.
func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("memory: copy size mismatch: dst holds %d elements, src holds %d", e.Dst, e.Src)
}

// ReleaseError reports a failed explicit release. The handle it was returned
// from is still live and usable: the caller may retry the release, keep the
// handle, or escalate.
type ReleaseError struct {
	Region driver.Region
	Err    error
}

// Error implements the error interface.
func (e *ReleaseError) Error() string {
	return fmt.Sprintf("memory: release %s allocation: %v", e.Region, e.Err)
}

// Unwrap returns the driver's error.
func (e *ReleaseError) Unwrap() error { return e.Err }
