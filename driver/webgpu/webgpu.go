//go:build windows

// Copyright 2026 The Axon Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU-backed accelerator driver. Device
// allocations live in GPU storage buffers; Locked and Unified fall back to
// host memory since WebGPU exposes neither pinned nor managed host memory.
//
// Windows only, matching the platform support of the wgpu bindings.
package webgpu

import (
	internalwebgpu "github.com/axon-gpu/axon/internal/driver/webgpu"
)

// Driver is a WebGPU-backed accelerator runtime.
type Driver = internalwebgpu.Driver

// Option configures a Driver.
type Option = internalwebgpu.Option

// WithLogger attaches a structured logger.
var WithLogger = internalwebgpu.WithLogger

// New creates a WebGPU driver. Returns an error if no adapter or device is
// available.
func New(opts ...Option) (*Driver, error) {
	return internalwebgpu.New(opts...)
}
