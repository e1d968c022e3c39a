// Package testutil holds small helpers shared by logsink tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/willibrandon/logsink/core"
)

// Eventually polls condition every 5ms until it holds or timeout elapses.
func Eventually(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	if message == "" {
		message = "condition not met within timeout"
	}
	t.Fatal(message)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error, message string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", message, err)
	}
}

// AssertEqual fails the test if actual != expected.
func AssertEqual[T comparable](t *testing.T, actual, expected T, message string) {
	t.Helper()
	if actual != expected {
		t.Fatalf("%s: expected %v, got %v", message, expected, actual)
	}
}

// Record builds a record with fixed call-site metadata for tests.
func Record(section string, severity core.Severity, message string) core.SinkMessage {
	return core.SinkMessage{
		Section:  section,
		Severity: severity,
		File:     "testutil.go",
		Func:     "Record",
		Line:     1,
		Time:     time.Now(),
		Message:  message,
	}
}

// InSection keeps only records whose section starts with prefix.
func InSection(msgs []core.SinkMessage, prefix string) []core.SinkMessage {
	var out []core.SinkMessage
	for _, m := range msgs {
		if strings.HasPrefix(m.Section, prefix) {
			out = append(out, m)
		}
	}
	return out
}

// Bodies returns the Message field of each record.
func Bodies(msgs []core.SinkMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Message
	}
	return out
}
