package emitters

import (
	"strings"

	"github.com/willibrandon/logsink"
	"github.com/willibrandon/logsink/core"
	"github.com/willibrandon/logsink/selflog"
)

// FilterEmitter forwards to its target only the records matching a predicate.
type FilterEmitter struct {
	target    core.Emitter
	predicate func(*core.SinkMessage) bool
}

// NewFilterEmitter wraps target. It panics if either argument is nil.
func NewFilterEmitter(target core.Emitter, predicate func(*core.SinkMessage) bool) *FilterEmitter {
	if target == nil {
		panic("target emitter cannot be nil")
	}
	if predicate == nil {
		panic("predicate cannot be nil")
	}
	return &FilterEmitter{target: target, predicate: predicate}
}

// Log forwards msg when the predicate accepts it. A panicking predicate rejects.
func (f *FilterEmitter) Log(msg *core.SinkMessage) {
	if msg == nil || !f.accept(msg) {
		return
	}
	f.target.Log(msg)
}

// Close closes the target.
func (f *FilterEmitter) Close() error {
	return f.target.Close()
}

// Target returns the wrapped emitter.
func (f *FilterEmitter) Target() core.Emitter {
	return f.target
}

func (f *FilterEmitter) accept(msg *core.SinkMessage) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if selflog.IsEnabled() {
				selflog.Printf("[filter] predicate panic for %T: %v", f.target, r)
			}
		}
	}()
	return f.predicate(msg)
}

// MinimumSeverity accepts records passing sw.
func MinimumSeverity(sw *logsink.SeveritySwitch) func(*core.SinkMessage) bool {
	return func(msg *core.SinkMessage) bool {
		return sw.IsEnabled(msg.Severity)
	}
}

// SectionPrefix accepts records whose section starts with any of prefixes.
func SectionPrefix(prefixes ...string) func(*core.SinkMessage) bool {
	return func(msg *core.SinkMessage) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(msg.Section, p) {
				return true
			}
		}
		return false
	}
}
