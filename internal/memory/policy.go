// Package memory provides exclusively-owning handles over accelerator
// memory regions and the copy contracts that move data between them.
//
// A handle is parameterized by an element type and a memory Policy. Only
// host-dereferenceable policies (Locked, Unified) expose direct access; a
// Device handle can be reached solely through transfer operations. The
// package never talks to hardware itself: all allocation, free, and copy
// primitives go through a driver.Driver bound to a Context.
package memory

import "github.com/axon-gpu/axon/internal/driver"

// Policy is a sealed, process-wide capability descriptor for one memory
// region. Policies are zero-size types selected at the type level; they
// carry no state and are never owned by a handle. The constraint is sealed:
// only Device, Locked, and Unified satisfy it.
type Policy interface {
	region() driver.Region
	hostAccessible() bool
}

// HostPolicy narrows Policy to regions host code may dereference directly.
// APIs that read or write through a handle without a transfer (Deref, Slice,
// value comparison) require it, which makes "no direct access to device
// memory" a compile-time rule rather than a runtime check.
type HostPolicy interface {
	Policy
	hostPolicy()
}

// Device is the policy for device-exclusive memory. Not host-dereferenceable:
// any access goes through a sync or async transfer into host-visible memory.
type Device struct{}

func (Device) region() driver.Region { return driver.Device }
func (Device) hostAccessible() bool  { return false }

// Locked is the policy for page-locked (pinned) host memory. Pinned pages
// are safe endpoints for stream-ordered transfers.
type Locked struct{}

func (Locked) region() driver.Region { return driver.Locked }
func (Locked) hostAccessible() bool  { return true }
func (Locked) hostPolicy()           {}

// Unified is the policy for migratable memory visible to host and device.
type Unified struct{}

func (Unified) region() driver.Region { return driver.Unified }
func (Unified) hostAccessible() bool  { return true }
func (Unified) hostPolicy()           {}
