// Copyright 2026 The Axon Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package memory provides exclusively-owning handles over accelerator memory.
//
// # Overview
//
// Axon layers single-owner semantics over the raw allocation primitives of an
// accelerator runtime. This package provides:
//   - Box[T, P]: owning handle for a single value
//   - Buffer[T, P]: owning handle for a contiguous sequence
//   - Device, Locked, Unified: memory policies selected at the type level
//   - Blocking and stream-ordered copy contracts between any two regions
//   - Promise: single-shot deferred work bound to a stream
//
// # Basic Usage
//
//	import (
//	    "github.com/axon-gpu/axon/driver/hostsim"
//	    "github.com/axon-gpu/axon/memory"
//	)
//
//	func main() {
//	    rt := hostsim.New()
//	    defer rt.Close()
//	    ctx := memory.NewContext(rt)
//
//	    host, _ := memory.NewBufferFromSlice[float32, memory.Locked](ctx, data)
//	    defer host.Free()
//	    dev, _ := memory.NewBufferUninitialized[float32, memory.Device](ctx, host.Len())
//	    defer dev.Free()
//
//	    _ = memory.CopyBuffer(dev, host)
//	}
//
// # Memory Policies
//
// Every handle is parameterized by a policy:
//   - Device: device-exclusive memory, reachable only through transfers
//   - Locked: page-locked (pinned) host memory, directly dereferenceable
//   - Unified: migratable memory visible to host and device
//
// Direct access (Deref, Load, Store, Slice) requires the HostPolicy
// constraint, so dereferencing device memory is rejected at compile time.
//
// # Release
//
// Release is explicit and two-tiered. TryFree returns a ReleaseError and
// leaves the handle live and usable, so a deferred failure surfacing from
// earlier asynchronous work can be retried. Free is the defer-friendly path:
// a failure there has no caller to report to and is escalated as fatal
// through the context's logger.
//
// # Asynchronous Transfers
//
// CopyBoxAsync and CopyBufferAsync enqueue on a stream and return
// immediately. Host-side endpoints must be Locked or Unified handles, never
// raw Go slices, and every handle must stay live until the stream is
// synchronized. Within one stream, copies run in strict submission order;
// across streams there is no order at all.
package memory
