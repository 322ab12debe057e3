package memory

import (
	"github.com/axon-gpu/axon/internal/driver"
)

// Executor is the execution context a promise's closure runs with. Its
// primitives are bounded to one stream: everything enqueued through it
// lands on that stream, in submission order. An Executor must not be kept
// past the closure's return; the stream it wraps is not owned by it.
type Executor struct {
	ctx    *Context
	stream *driver.Stream
}

// Context returns the memory context the executor operates in.
func (e *Executor) Context() *Context { return e.ctx }

// Stream returns the stream this executor is scoped to, for use with the
// async transfer functions.
func (e *Executor) Stream() *driver.Stream { return e.stream }

// Enqueue submits work to the executor's stream. The task runs after every
// operation already enqueued on the stream and before anything enqueued
// later.
func (e *Executor) Enqueue(task func()) {
	e.stream.Submit(task)
}

// Promise is a single-shot unit of work bound to a stream. It starts
// Pending; Resolve runs the closure exactly once with an Executor scoped to
// the stream, after which the promise is consumed. Discard drops the
// closure without running it. Both states are terminal.
type Promise struct {
	ctx    *Context
	stream *driver.Stream
	fn     func(*Executor)
	state  promiseState
}

type promiseState int

const (
	pending promiseState = iota
	resolved
	discarded
)

// NewPromise binds fn to a stream. Nothing runs until Resolve.
func NewPromise(ctx *Context, stream *driver.Stream, fn func(*Executor)) *Promise {
	return &Promise{ctx: ctx, stream: stream, fn: fn}
}

// Resolve runs the closure with an Executor scoped to the promise's stream
// and consumes the promise. A second Resolve returns ErrAlreadyResolved; a
// Resolve after Discard returns ErrDiscarded.
func (p *Promise) Resolve() error {
	switch p.state {
	case resolved:
		return ErrAlreadyResolved
	case discarded:
		return ErrDiscarded
	}
	p.state = resolved
	fn := p.fn
	p.fn = nil
	fn(&Executor{ctx: p.ctx, stream: p.stream})
	return nil
}

// Discard drops the closure without running it. No side effects occur on
// the stream. Discarding a resolved or discarded promise is a no-op.
func (p *Promise) Discard() {
	if p.state == pending {
		p.state = discarded
		p.fn = nil
	}
}

// Ready always reports false. Readiness signaling is not implemented:
// completion of work enqueued during Resolve is observed only through
// Stream.Synchronize on the promise's stream.
func (p *Promise) Ready() bool { return false }

// Stream returns the stream the promise is bound to.
func (p *Promise) Stream() *driver.Stream { return p.stream }
