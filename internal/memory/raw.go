package memory

import "github.com/axon-gpu/axon/internal/driver"

// Raw is an opaque ownership token produced by decomposing a handle
// (IntoRaw, IntoRawParts, Leak). Whoever holds the token is responsible for
// the allocation; reconstructing a handle with AdoptRawBox or AdoptRawParts
// moves that responsibility back.
//
// A token must only be adopted once, by a handle of the same element type
// and policy that produced it, against the same context. Violating that is
// not a reported error: it corrupts the owner table the same way a double
// free would.
type Raw struct {
	ptr driver.Ptr
}

// Region returns the region the underlying allocation lives in.
func (r Raw) Region() driver.Region { return r.ptr.Region() }

// Size returns the allocation size in bytes.
func (r Raw) Size() uintptr { return r.ptr.Size() }

// IsZero reports whether the token carries no allocation.
func (r Raw) IsZero() bool { return r.ptr.IsZero() }
