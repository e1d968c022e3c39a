package emitters

import (
	"sync"

	"github.com/willibrandon/logsink/core"
)

// MemoryEmitter keeps copies of the records it receives. It backs in-process
// log views and tests, and is safe to read from any goroutine.
type MemoryEmitter struct {
	mu       sync.RWMutex
	messages []core.SinkMessage
	closed   bool
}

// NewMemoryEmitter creates an empty memory emitter.
func NewMemoryEmitter() *MemoryEmitter {
	return &MemoryEmitter{}
}

// Log stores a copy of msg.
func (m *MemoryEmitter) Log(msg *core.SinkMessage) {
	if msg == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
}

// Close marks the emitter closed. Stored records stay readable.
func (m *MemoryEmitter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemoryEmitter) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Messages returns a copy of the stored records.
func (m *MemoryEmitter) Messages() []core.SinkMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.SinkMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Count returns the number of stored records.
func (m *MemoryEmitter) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Last returns the most recent record, or nil.
func (m *MemoryEmitter) Last() *core.SinkMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.messages) == 0 {
		return nil
	}
	msg := m.messages[len(m.messages)-1]
	return &msg
}

// Find returns the stored records matching pred.
func (m *MemoryEmitter) Find(pred func(*core.SinkMessage) bool) []core.SinkMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.SinkMessage
	for i := range m.messages {
		if pred(&m.messages[i]) {
			out = append(out, m.messages[i])
		}
	}
	return out
}

// Clear drops all stored records.
func (m *MemoryEmitter) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
