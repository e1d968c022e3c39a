package logsink

import (
	"fmt"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/willibrandon/logsink/core"
)

// DefaultMessageCapacity is the default body capacity of a Message in bytes.
const DefaultMessageCapacity = 2048

// Message builds one log record. It captures the call site and time when it
// is created; the body is written through its io.Writer methods and the
// record is handed to the sink by End, which is meant to be deferred:
//
//	m := sink.W("video/provider")
//	defer m.End()
//	fmt.Fprintf(m, "frame %d is missing", n)
//
// Body bytes beyond the sink's message capacity are discarded, along with a
// multibyte character the limit would split. A Message must not be shared
// between goroutines.
type Message struct {
	sink      *LogSink
	rec       core.SinkMessage
	buf       []byte
	truncated bool
	ended     bool
}

// NewMessage starts a record for the calling statement.
func (s *LogSink) NewMessage(section string, severity core.Severity) *Message {
	return s.newMessage(section, severity, 2)
}

// E starts an Error record.
func (s *LogSink) E(section string) *Message { return s.newMessage(section, core.Error, 2) }

// A starts an Assert record.
func (s *LogSink) A(section string) *Message { return s.newMessage(section, core.Assert, 2) }

// W starts a Warning record.
func (s *LogSink) W(section string) *Message { return s.newMessage(section, core.Warning, 2) }

// I starts an Info record.
func (s *LogSink) I(section string) *Message { return s.newMessage(section, core.Info, 2) }

// D starts a Debug record.
func (s *LogSink) D(section string) *Message { return s.newMessage(section, core.Debug, 2) }

// Logf logs a formatted record in one call.
func (s *LogSink) Logf(section string, severity core.Severity, format string, args ...any) {
	s.newMessage(section, severity, 2).Printf(format, args...).End()
}

// Errorf logs a formatted Error record.
func (s *LogSink) Errorf(section, format string, args ...any) {
	s.newMessage(section, core.Error, 2).Printf(format, args...).End()
}

// Assertf logs a formatted Assert record.
func (s *LogSink) Assertf(section, format string, args ...any) {
	s.newMessage(section, core.Assert, 2).Printf(format, args...).End()
}

// Warnf logs a formatted Warning record.
func (s *LogSink) Warnf(section, format string, args ...any) {
	s.newMessage(section, core.Warning, 2).Printf(format, args...).End()
}

// Infof logs a formatted Info record.
func (s *LogSink) Infof(section, format string, args ...any) {
	s.newMessage(section, core.Info, 2).Printf(format, args...).End()
}

// Debugf logs a formatted Debug record.
func (s *LogSink) Debugf(section, format string, args ...any) {
	s.newMessage(section, core.Debug, 2).Printf(format, args...).End()
}

// newMessage captures the caller skip frames above itself.
func (s *LogSink) newMessage(section string, severity core.Severity, skip int) *Message {
	m := &Message{
		sink: s,
		buf:  make([]byte, 0, s.capacity),
		rec: core.SinkMessage{
			Section:  section,
			Severity: severity,
			Time:     time.Now(),
		},
	}

	if pc, file, line, ok := runtime.Caller(skip); ok {
		m.rec.File = file
		m.rec.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			m.rec.Func = fn.Name()
		}
	}
	return m
}

// Write appends p to the body. It always reports len(p) bytes written.
func (m *Message) Write(p []byte) (int, error) {
	n := len(p)
	if room := cap(m.buf) - len(m.buf); n > room {
		p = p[:room]
		m.truncated = true
	}
	m.buf = append(m.buf, p...)
	return n, nil
}

// WriteString appends str to the body. It always reports len(str) bytes written.
func (m *Message) WriteString(str string) (int, error) {
	n := len(str)
	if room := cap(m.buf) - len(m.buf); n > room {
		str = str[:room]
		m.truncated = true
	}
	m.buf = append(m.buf, str...)
	return n, nil
}

// Printf appends formatted text to the body.
func (m *Message) Printf(format string, args ...any) *Message {
	fmt.Fprintf(m, format, args...)
	return m
}

// Print appends the operands to the body, formatted as by fmt.Print.
func (m *Message) Print(args ...any) *Message {
	fmt.Fprint(m, args...)
	return m
}

// Len returns the number of body bytes kept so far.
func (m *Message) Len() int {
	return len(m.buf)
}

// Truncated reports whether any body bytes were discarded.
func (m *Message) Truncated() bool {
	return m.truncated
}

// End hands the record to the sink. Only the first call has an effect.
func (m *Message) End() {
	if m.ended {
		return
	}
	m.ended = true
	if m.truncated {
		m.buf = trimPartialRune(m.buf)
	}
	m.rec.Message = string(m.buf)
	m.sink.Log(m.rec)
}

// trimPartialRune drops an incomplete UTF-8 sequence from the end of b.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			return b
		}
	}
	return b
}
