package core

import "time"

// SinkMessage is a single log record as stored by the sink and seen by emitters.
// It must not be modified once it has been handed to the sink.
type SinkMessage struct {
	// Section is a slash-separated tag naming the subsystem, e.g. "audio/provider/ram".
	Section string

	// Severity of the record.
	Severity Severity

	// File, Func and Line locate the statement that produced the record.
	File string
	Func string
	Line int

	// Time is when the log statement began.
	Time time.Time

	// Message is the formatted body.
	Message string
}

// Sec returns the whole seconds of the record's timestamp.
func (m *SinkMessage) Sec() int64 {
	return m.Time.Unix()
}

// Usec returns the microsecond part of the record's timestamp.
func (m *SinkMessage) Usec() int64 {
	return int64(m.Time.Nanosecond() / 1000)
}
