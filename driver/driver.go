// Copyright 2026 The Axon Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package driver defines the accelerator runtime contract consumed by the
// memory package: per-region allocation primitives, blocking and
// stream-ordered copies, and stream creation.
//
// Implementations:
//   - driver/hostsim: host-memory simulation, runs anywhere
//   - driver/webgpu: WebGPU-backed device memory (Windows)
//
// Example:
//
//	rt := hostsim.New()
//	defer rt.Close()
//	ctx := memory.NewContext(rt)
package driver

import (
	"unsafe"

	"github.com/axon-gpu/axon/internal/driver"
)

// Region identifies a class of accelerator-visible memory.
type Region = driver.Region

// Region constants.
const (
	Device  Region = driver.Device
	Locked  Region = driver.Locked
	Unified Region = driver.Unified
	Host    Region = driver.Host
)

// Ptr is an opaque allocation token issued by a Driver.
type Ptr = driver.Ptr

// NewPtr builds an allocation token. Intended for Driver implementations.
func NewPtr(p unsafe.Pointer, handle uint64, size uintptr, region Region) Ptr {
	return driver.NewPtr(p, handle, size, region)
}

// HostPtr wraps plain host memory as a copy endpoint.
func HostPtr(p unsafe.Pointer, size uintptr) Ptr {
	return driver.HostPtr(p, size)
}

// Driver is the accelerator runtime seen by the ownership layer.
type Driver = driver.Driver

// Stream is an ordered, FIFO execution queue. Operations submitted to the
// same stream never reorder relative to each other; operations on distinct
// streams have no relative order.
type Stream = driver.Stream

// NewStream creates a stream and starts its worker. Intended for Driver
// implementations of CreateStream.
func NewStream(id int, nonBlocking bool, priority int) *Stream {
	return driver.NewStream(id, nonBlocking, priority)
}

// Errors shared by driver implementations.
var (
	ErrOutOfMemory    = driver.ErrOutOfMemory
	ErrInvalidSize    = driver.ErrInvalidSize
	ErrBadHandle      = driver.ErrBadHandle
	ErrDoubleFree     = driver.ErrDoubleFree
	ErrRegionMismatch = driver.ErrRegionMismatch
)
