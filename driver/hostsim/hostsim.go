// Copyright 2026 The Axon Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package hostsim provides the host-simulated accelerator driver. All
// regions are backed by host memory, so the full ownership and transfer
// machinery runs on machines without an accelerator.
package hostsim

import (
	internalhostsim "github.com/axon-gpu/axon/internal/driver/hostsim"
)

// Driver simulates an accelerator runtime on host memory.
type Driver = internalhostsim.Driver

// Option configures a Driver.
type Option = internalhostsim.Option

// Options.
var (
	// WithLogger attaches a structured logger.
	WithLogger = internalhostsim.WithLogger
	// WithRegionLimit caps the live bytes of one region.
	WithRegionLimit = internalhostsim.WithRegionLimit
	// WithAllocFailure installs an allocation fault-injection hook.
	WithAllocFailure = internalhostsim.WithAllocFailure
	// WithFreeFailure installs a free fault-injection hook.
	WithFreeFailure = internalhostsim.WithFreeFailure
)

// New creates a host-simulated driver.
//
// Example:
//
//	rt := hostsim.New()
//	defer rt.Close()
//	ctx := memory.NewContext(rt)
func New(opts ...Option) *Driver {
	return internalhostsim.New(opts...)
}
