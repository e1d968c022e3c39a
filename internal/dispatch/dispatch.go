// Package dispatch runs closures one at a time on a dedicated goroutine.
//
// Tasks submitted with Async run in submission order. Sync submits a task and
// waits for it to finish, which gives the caller a happens-before edge with
// everything the worker did up to and including that task. The backlog is
// unbounded.
package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/caffix/queue"

	"github.com/willibrandon/logsink/selflog"
)

// Queue is a single-consumer serial task queue.
type Queue struct {
	tasks   queue.Queue
	done    chan struct{}
	stopped chan struct{}

	// mu orders appends against Close so every accepted task runs.
	mu        sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	executed  atomic.Uint64
	panics    atomic.Uint64
}

// New starts a queue and its worker.
func New() *Queue {
	q := &Queue{
		tasks:   queue.NewQueue(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go q.worker()
	return q
}

// Async schedules task and returns immediately.
// It reports false when the queue has been closed and the task was discarded.
func (q *Queue) Async(task func()) bool {
	if task == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed.Load() {
		return false
	}
	q.tasks.Append(task)
	return true
}

// Sync schedules task and blocks until it has run.
// It reports false if the queue was closed first; in that case it returns
// only after the worker has exited. Calling Sync from inside a task deadlocks.
func (q *Queue) Sync(task func()) bool {
	if task == nil {
		return false
	}

	finished := make(chan struct{})
	if !q.Async(func() {
		defer close(finished)
		task()
	}) {
		<-q.stopped
		return false
	}

	<-finished
	return true
}

// Close stops accepting tasks, runs everything already queued and waits for
// the worker to exit. It is safe to call more than once.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed.Store(true)
		q.mu.Unlock()
		close(q.done)
	})
	<-q.stopped
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	return q.closed.Load()
}

// Len returns the number of tasks waiting to run.
func (q *Queue) Len() int {
	return q.tasks.Len()
}

// Stats returns the number of tasks run and the number that panicked.
func (q *Queue) Stats() (executed, panics uint64) {
	return q.executed.Load(), q.panics.Load()
}

func (q *Queue) worker() {
	defer close(q.stopped)

	for {
		select {
		case <-q.tasks.Signal():
			q.drain()
		case <-q.done:
			q.drain()
			return
		}
	}
}

func (q *Queue) drain() {
	for {
		element, ok := q.tasks.Next()
		if !ok {
			return
		}
		if task, ok := element.(func()); ok {
			q.run(task)
		}
	}
}

func (q *Queue) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.panics.Add(1)
			if selflog.IsEnabled() {
				selflog.Printf("[dispatch] task panic: %v", r)
			}
		}
	}()

	task()
	q.executed.Add(1)
}
