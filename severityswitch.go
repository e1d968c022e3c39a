package logsink

import (
	"sync/atomic"

	"github.com/willibrandon/logsink/core"
)

// SeveritySwitch holds a minimum severity that can be changed at runtime.
// Emitters consult it to decide whether a record is shown.
type SeveritySwitch struct {
	severity atomic.Int32
}

// NewSeveritySwitch creates a switch that lets through min and anything more severe.
func NewSeveritySwitch(min core.Severity) *SeveritySwitch {
	sw := &SeveritySwitch{}
	sw.SetSeverity(min)
	return sw
}

// Severity returns the current minimum severity.
func (sw *SeveritySwitch) Severity() core.Severity {
	return core.Severity(sw.severity.Load())
}

// SetSeverity changes the minimum severity. It takes effect immediately.
func (sw *SeveritySwitch) SetSeverity(min core.Severity) {
	sw.severity.Store(int32(min))
}

// IsEnabled reports whether a record of severity s passes the switch.
// A nil switch lets everything through.
func (sw *SeveritySwitch) IsEnabled(s core.Severity) bool {
	if sw == nil {
		return true
	}
	return s.Enabled(sw.Severity())
}
