// Copyright 2026 The Axon Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package memory_test

import (
	"testing"

	"github.com/axon-gpu/axon/driver/hostsim"
	"github.com/axon-gpu/axon/memory"
)

// End-to-end pass through the public API: allocate in every region, move
// data host -> device -> host, and defer-release everything.
func TestPublicRoundTrip(t *testing.T) {
	rt := hostsim.New()
	defer rt.Close()
	ctx := memory.NewContext(rt)

	host, err := memory.NewBufferFromSlice[float32, memory.Locked](ctx, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("NewBufferFromSlice: %v", err)
	}
	defer host.Free()

	dev, err := memory.NewBufferUninitialized[float32, memory.Device](ctx, 3)
	if err != nil {
		t.Fatalf("NewBufferUninitialized: %v", err)
	}
	defer dev.Free()

	if err := memory.CopyBuffer(dev, host); err != nil {
		t.Fatalf("CopyBuffer to device: %v", err)
	}

	out := make([]float32, 3)
	if err := memory.CopyOut(out, dev); err != nil {
		t.Fatalf("CopyOut: %v", err)
	}
	for i, want := range []float32{1, 2, 3} {
		if out[i] != want {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestPublicPromiseOverStream(t *testing.T) {
	rt := hostsim.New()
	defer rt.Close()
	ctx := memory.NewContext(rt)

	s, err := ctx.CreateStream(true, 0)
	if err != nil {
		t.Fatalf("CreateStream: %v", err)
	}

	box, err := memory.NewBox[int64, memory.Unified](ctx, 0)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	defer box.Free()

	p := memory.NewPromise(ctx, s, func(e *memory.Executor) {
		e.Enqueue(func() { memory.Store(box, 41) })
		e.Enqueue(func() { memory.Store(box, memory.Load(box)+1) })
	})

	if err := p.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	s.Synchronize()

	if got := memory.Load(box); got != 42 {
		t.Errorf("Load = %d, want 42", got)
	}
}
