// Package logsink is an asynchronous, process-lifetime logging sink.
//
// Every mutation of the sink's history and emitter registry runs on one
// worker goroutine, so emitters see one record at a time and the history
// order is the order in which Log calls were queued. Log never blocks;
// Subscribe, Unsubscribe, GetMessages and Close wait for their task to run.
//
//	sink := logsink.New()
//	defer sink.Close()
//
//	em, err := emitters.NewJSONEmitter("~/.config/app/log")
//	if err == nil {
//		sink.Subscribe(em)
//	}
//
//	m := sink.I("app/startup")
//	defer m.End()
//	m.Printf("loaded %d plugins", n)
package logsink

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/willibrandon/logsink/core"
	"github.com/willibrandon/logsink/internal/dispatch"
	"github.com/willibrandon/logsink/selflog"
)

var (
	// ErrSinkClosed is returned when subscribing to a sink that has been closed.
	ErrSinkClosed = errors.New("logsink: sink closed")

	// ErrNilEmitter is returned when subscribing a nil emitter.
	ErrNilEmitter = errors.New("logsink: nil emitter")
)

const (
	sectionSubscribe   = "log/emitter/subscribe"
	sectionUnsubscribe = "log/emitter/unsubscribe"
)

// LogSink serializes log records and emitter management through one worker.
type LogSink struct {
	queue    *dispatch.Queue
	capacity int
	metrics  *sinkMetrics

	// Owned by the worker goroutine.
	messages []*core.SinkMessage
	emitters []core.Emitter
	torndown bool

	closeOnce sync.Once
	closeErr  error
}

// New creates a sink and starts its worker.
func New(opts ...Option) *LogSink {
	cfg := &config{capacity: DefaultMessageCapacity}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.capacity <= 0 {
		cfg.capacity = DefaultMessageCapacity
	}

	s := &LogSink{
		queue:    dispatch.New(),
		capacity: cfg.capacity,
	}
	if cfg.registerer != nil {
		s.metrics = newSinkMetrics(cfg.registerer)
	}

	for _, em := range cfg.emitters {
		if err := s.Subscribe(em); err != nil && selflog.IsEnabled() {
			selflog.Printf("[sink] initial subscribe of %T failed: %v", em, err)
		}
	}
	return s
}

// Log queues msg for history and delivery to every subscribed emitter.
// It returns immediately.
func (s *LogSink) Log(msg core.SinkMessage) {
	rec := &msg
	if !s.queue.Async(func() { s.deliver(rec) }) && selflog.IsEnabled() {
		selflog.Printf("[sink] record dropped after close: section=%s message=%q", rec.Section, rec.Message)
	}
}

// Subscribe hands em to the sink. When Subscribe returns, em will receive
// every record logged afterwards. The sink closes em when the sink is closed.
func (s *LogSink) Subscribe(em core.Emitter) error {
	if em == nil {
		return ErrNilEmitter
	}

	s.NewMessage(sectionSubscribe, core.Debug).Printf("Subscribe: %T", em).End()

	rejected := true
	s.queue.Sync(func() {
		if s.torndown {
			return
		}
		s.emitters = append(s.emitters, em)
		s.metrics.setEmitters(len(s.emitters))
		rejected = false
	})

	if rejected {
		closeEmitter(em)
		return ErrSinkClosed
	}
	return nil
}

// Unsubscribe removes em, matched by identity. When Unsubscribe returns, em
// receives no further records. The caller owns em again and must close it.
func (s *LogSink) Unsubscribe(em core.Emitter) {
	if em == nil {
		return
	}

	s.queue.Sync(func() {
		s.emitters = removeEmitters(s.emitters, em)
		s.metrics.setEmitters(len(s.emitters))
	})

	s.NewMessage(sectionUnsubscribe, core.Debug).Printf("Unsubscribe: %T", em).End()
}

// GetMessages returns a copy of every record the sink has processed so far.
func (s *LogSink) GetMessages() []core.SinkMessage {
	var out []core.SinkMessage
	if !s.queue.Sync(func() { out = s.snapshot() }) {
		// The worker has exited, nothing mutates history any more.
		out = s.snapshot()
	}
	return out
}

// Emitters returns the number of subscribed emitters.
func (s *LogSink) Emitters() int {
	n := 0
	s.queue.Sync(func() { n = len(s.emitters) })
	return n
}

// Pending returns the number of queued tasks not yet run.
func (s *LogSink) Pending() int {
	return s.queue.Len()
}

// Close detaches every emitter in one step, closes them in subscription
// order and stops the worker once all queued records are in history.
// Records logged by an emitter's Close are kept in history but delivered to
// no emitter. Close is idempotent; later calls return the first result.
func (s *LogSink) Close() error {
	s.closeOnce.Do(func() {
		var detached []core.Emitter
		s.queue.Sync(func() {
			detached, s.emitters = s.emitters, nil
			s.torndown = true
			s.metrics.setEmitters(0)
		})

		var errs []error
		for _, em := range detached {
			if err := closeEmitter(em); err != nil {
				errs = append(errs, fmt.Errorf("close %T: %w", em, err))
			}
		}

		s.queue.Close()
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *LogSink) deliver(msg *core.SinkMessage) {
	s.messages = append(s.messages, msg)
	s.metrics.logged(msg.Severity, len(s.messages))

	var failed []core.Emitter
	kept := s.emitters[:0]
	for _, em := range s.emitters {
		if s.emit(em, msg) {
			kept = append(kept, em)
		} else {
			failed = append(failed, em)
		}
	}
	if len(failed) == 0 {
		return
	}

	// A panicking emitter is dropped, not retried.
	clear(s.emitters[len(kept):])
	s.emitters = kept
	s.metrics.setEmitters(len(s.emitters))
	for _, em := range failed {
		if err := closeEmitter(em); err != nil && selflog.IsEnabled() {
			selflog.Printf("[sink] closing failed emitter %T: %v", em, err)
		}
	}
}

func (s *LogSink) emit(em core.Emitter, msg *core.SinkMessage) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			s.metrics.failed()
			if selflog.IsEnabled() {
				selflog.Printf("[sink] emitter %T panicked, removing it: %v", em, r)
			}
		}
	}()

	em.Log(msg)
	s.metrics.delivered()
	return true
}

func (s *LogSink) snapshot() []core.SinkMessage {
	out := make([]core.SinkMessage, len(s.messages))
	for i, m := range s.messages {
		out[i] = *m
	}
	return out
}

func closeEmitter(em core.Emitter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in Close: %v", r)
		}
	}()
	return em.Close()
}

func removeEmitters(list []core.Emitter, em core.Emitter) []core.Emitter {
	out := list[:0]
	for _, e := range list {
		if !sameEmitter(e, em) {
			out = append(out, e)
		}
	}
	// Clear the tail so removed emitters are not kept alive by the backing array.
	for i := len(out); i < len(list); i++ {
		list[i] = nil
	}
	return out
}

func sameEmitter(a, b core.Emitter) bool {
	if !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
