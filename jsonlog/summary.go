package jsonlog

import (
	"sort"
	"time"

	"github.com/willibrandon/logsink/core"
)

// Summary describes the contents of one log file.
type Summary struct {
	Opened     time.Time
	Closed     time.Time
	CleanClose bool
	Records    int
	BySeverity map[core.Severity]int
	BySection  map[string]int
}

// Summarize tallies entries.
func Summarize(entries []Entry) Summary {
	s := Summary{
		BySeverity: make(map[core.Severity]int),
		BySection:  make(map[string]int),
	}
	for _, e := range entries {
		switch e.Kind {
		case KindOpen:
			s.Opened = e.Time
		case KindClose:
			s.Closed = e.Time
			s.CleanClose = true
		default:
			s.Records++
			s.BySeverity[e.Record.Severity]++
			s.BySection[e.Record.Section]++
		}
	}
	return s
}

// Sections returns the section names in s, most frequent first.
func (s Summary) Sections() []string {
	out := make([]string, 0, len(s.BySection))
	for name := range s.BySection {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		if s.BySection[out[i]] != s.BySection[out[j]] {
			return s.BySection[out[i]] > s.BySection[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
