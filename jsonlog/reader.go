// Package jsonlog reads files written by emitters.JSONEmitter.
//
// Each line is one JSON object: an open marker, a record, or a close marker.
//
//	{"open":[1700000000,123456]}
//	{"sec":1700000001,"usec":5,"severity":3,"section":"app","file":"main.go","func":"main.main","line":12,"message":"ready"}
//	{"close":[1700000002,42]}
package jsonlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/willibrandon/logsink/core"
)

// Kind identifies the type of a line.
type Kind int

const (
	// KindRecord is a log record.
	KindRecord Kind = iota
	// KindOpen marks when the file was opened.
	KindOpen
	// KindClose marks when the file was closed.
	KindClose
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	default:
		return "record"
	}
}

// Entry is one decoded line.
type Entry struct {
	Kind Kind
	// Time is the marker time for open/close entries and the record time otherwise.
	Time   time.Time
	Record core.SinkMessage
}

// ErrMalformed is wrapped by errors for lines that are not a known entry.
var ErrMalformed = errors.New("jsonlog: malformed line")

type rawLine struct {
	Open     *[2]int64 `json:"open"`
	Close    *[2]int64 `json:"close"`
	Sec      *int64    `json:"sec"`
	Usec     int64     `json:"usec"`
	Severity int       `json:"severity"`
	Section  string    `json:"section"`
	File     string    `json:"file"`
	Func     string    `json:"func"`
	Line     int       `json:"line"`
	Message  string    `json:"message"`
}

// Reader decodes entries line by line.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{scanner: s}
}

// Next returns the next entry, or io.EOF when the input is exhausted.
// Blank lines are skipped.
func (r *Reader) Next() (Entry, error) {
	for r.scanner.Scan() {
		r.line++
		data := r.scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		entry, err := decode(data)
		if err != nil {
			return Entry{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return entry, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Entry{}, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return Entry{}, io.EOF
}

// ReadAll decodes every remaining entry.
func (r *Reader) ReadAll() ([]Entry, error) {
	var out []Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}

// ReadFile decodes a whole log file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	entries, err := NewReader(f).ReadAll()
	if err != nil {
		return entries, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func decode(data []byte) (Entry, error) {
	var raw rawLine
	if err := json.Unmarshal(data, &raw); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case raw.Open != nil:
		return Entry{Kind: KindOpen, Time: timeval(raw.Open[0], raw.Open[1])}, nil
	case raw.Close != nil:
		return Entry{Kind: KindClose, Time: timeval(raw.Close[0], raw.Close[1])}, nil
	case raw.Sec != nil:
		sev := core.Severity(raw.Severity)
		if !sev.Valid() {
			return Entry{}, fmt.Errorf("%w: severity %d out of range", ErrMalformed, raw.Severity)
		}
		t := timeval(*raw.Sec, raw.Usec)
		return Entry{
			Kind: KindRecord,
			Time: t,
			Record: core.SinkMessage{
				Section:  raw.Section,
				Severity: sev,
				File:     raw.File,
				Func:     raw.Func,
				Line:     raw.Line,
				Time:     t,
				Message:  raw.Message,
			},
		}, nil
	default:
		return Entry{}, fmt.Errorf("%w: no open, close or sec field", ErrMalformed)
	}
}

func timeval(sec, usec int64) time.Time {
	return time.Unix(sec, usec*int64(time.Microsecond))
}
