package core

import (
	"fmt"
	"strings"
)

// Severity specifies how serious a log record is.
// Lower ordinals are more severe; the ordinals are part of the JSON log format.
type Severity int

const (
	// Error is for failures the application could not recover from locally.
	Error Severity = iota

	// Assert is for violated internal expectations.
	Assert

	// Warning is for unexpected but handled conditions.
	Warning

	// Info is for normal operational messages.
	Info

	// Debug is for developer diagnostics.
	Debug
)

// severityCodes holds the single-letter id of each severity, in ordinal order.
const severityCodes = "EAWID"

var severityNames = [...]string{"Error", "Assert", "Warning", "Info", "Debug"}

// String returns the severity name.
func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// Code returns the single-letter id used in compact renderings.
func (s Severity) Code() byte {
	if !s.Valid() {
		return '?'
	}
	return severityCodes[s]
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	return s >= Error && s <= Debug
}

// Enabled reports whether s is at least as severe as min.
func (s Severity) Enabled(min Severity) bool {
	return s <= min
}

// ParseSeverity parses a severity name or single-letter code.
func ParseSeverity(str string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "error", "e":
		return Error, nil
	case "assert", "a":
		return Assert, nil
	case "warning", "warn", "w":
		return Warning, nil
	case "info", "information", "i":
		return Info, nil
	case "debug", "d":
		return Debug, nil
	default:
		return Debug, fmt.Errorf("unknown severity: %q", str)
	}
}
