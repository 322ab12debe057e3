// Copyright 2026 The Axon Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package hostsim provides the host-simulated accelerator driver.
//
// # Overview
//
// Every region is backed by the Go heap, so the full ownership and transfer
// machinery runs on machines without an accelerator. The driver keeps the
// authoritative owner table, per-region used/peak accounting, and detects
// double frees and mismatched tokens.
//
// # Options
//
//   - WithLogger: structured logging for alloc/free events
//   - WithRegionLimit: cap the live bytes of one region
//   - WithAllocFailure / WithFreeFailure: fault-injection hooks for
//     exercising failure paths in tests
//
// # Basic Usage
//
//	rt := hostsim.New(hostsim.WithRegionLimit(driver.Device, 1<<30))
//	defer rt.Close()
//	ctx := memory.NewContext(rt)
package hostsim
