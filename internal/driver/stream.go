package driver

import (
	"sync"
	"sync/atomic"
)

// Stream is an ordered execution queue. Tasks submitted to the same stream
// run in strict submission order on a dedicated worker goroutine; tasks on
// distinct streams have no relative order. This mirrors accelerator stream
// semantics: the host thread never blocks on Submit, only on Synchronize.
type Stream struct {
	id          int
	nonBlocking bool
	priority    int

	tasks     chan func()
	wg        sync.WaitGroup
	destroyed atomic.Bool
	done      chan struct{}
}

const streamQueueDepth = 1024

// NewStream creates a stream and starts its worker. Drivers call this from
// CreateStream; the flags are recorded for the runtime's benefit and do not
// change ordering semantics.
func NewStream(id int, nonBlocking bool, priority int) *Stream {
	s := &Stream{
		id:          id,
		nonBlocking: nonBlocking,
		priority:    priority,
		tasks:       make(chan func(), streamQueueDepth),
		done:        make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// ID returns the driver-assigned stream identifier.
func (s *Stream) ID() int { return s.id }

// NonBlocking reports whether the stream was created non-blocking.
func (s *Stream) NonBlocking() bool { return s.nonBlocking }

// Priority returns the stream's scheduling priority hint.
func (s *Stream) Priority() int { return s.priority }

// Submit enqueues a task. Tasks execute in FIFO order relative to other
// tasks on this stream. Once enqueued a task cannot be cancelled.
// Panics if the stream has been destroyed.
func (s *Stream) Submit(task func()) {
	if s.destroyed.Load() {
		panic("driver: submit on destroyed stream")
	}
	s.wg.Add(1)
	s.tasks <- task
}

// Synchronize blocks until every task enqueued so far has completed.
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Destroy drains the stream and stops its worker. Idempotent.
func (s *Stream) Destroy() {
	if s.destroyed.Swap(true) {
		return
	}
	s.wg.Wait()
	close(s.tasks)
	<-s.done
}
