// Copyright 2026 The Axon Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package driver defines the accelerator runtime contract consumed by the
// memory package.
//
// # Overview
//
// A Driver exposes the raw primitives the ownership layer builds on:
//   - Alloc / Free: per-region allocation paired with opaque Ptr tokens
//   - Memcpy: blocking copy between any two endpoints
//   - MemcpyAsync: enqueue-only copy on a Stream
//   - CreateStream / Synchronize: ordered execution queues
//
// # Implementations
//
//   - driver/hostsim: host-memory simulation, runs anywhere
//   - driver/webgpu: WebGPU-backed device memory (Windows)
//
// Applications normally do not call a Driver directly; they hand it to
// memory.NewContext and work with owning handles instead.
package driver
