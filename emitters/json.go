package emitters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"

	"github.com/willibrandon/logsink/core"
	"github.com/willibrandon/logsink/selflog"
)

// jsonNameLayout is the timestamp part of a JSON log file name.
const jsonNameLayout = "2006-01-02-15-04-05"

const maxNameAttempts = 16

// jsonRecord is the on-disk shape of one record. Field order is the wire order.
type jsonRecord struct {
	Sec      int64         `json:"sec"`
	Usec     int64         `json:"usec"`
	Severity core.Severity `json:"severity"`
	Section  string        `json:"section"`
	File     string        `json:"file"`
	Func     string        `json:"func"`
	Line     int           `json:"line"`
	Message  string        `json:"message"`
}

// JSONEmitter writes each record as one JSON object per line to a file
// created for the lifetime of the emitter. Every record is written straight
// to the file, without userspace buffering.
type JSONEmitter struct {
	path        string
	file        *os.File
	closed      bool
	writeErrors int
}

// NewJSONEmitter creates a uniquely named file in dir and writes the open
// marker to it. A leading "~" in dir is expanded to the home directory.
func NewJSONEmitter(dir string) (*JSONEmitter, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand log directory %q: %w", dir, err)
	}
	if err := os.MkdirAll(expanded, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, path, err := createUnique(expanded, time.Now())
	if err != nil {
		return nil, err
	}

	je := &JSONEmitter{path: path, file: file}
	je.writeTime("open")
	return je, nil
}

// createUnique opens a new file named after now plus eight random hex digits.
func createUnique(dir string, now time.Time) (*os.File, string, error) {
	stamp := now.Format(jsonNameLayout)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		path := filepath.Join(dir, stamp+"-"+suffix+".json")

		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return file, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("failed to open log file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("failed to find an unused log file name in %s", dir)
}

// Path returns the file the emitter writes to.
func (je *JSONEmitter) Path() string {
	return je.path
}

// WriteErrors returns how many writes failed.
func (je *JSONEmitter) WriteErrors() int {
	return je.writeErrors
}

// Log appends msg to the file.
func (je *JSONEmitter) Log(msg *core.SinkMessage) {
	if je.closed || msg == nil {
		return
	}

	je.write(jsonRecord{
		Sec:      msg.Sec(),
		Usec:     msg.Usec(),
		Severity: msg.Severity,
		Section:  msg.Section,
		File:     msg.File,
		Func:     msg.Func,
		Line:     msg.Line,
		Message:  msg.Message,
	})
}

// Close writes the close marker and closes the file.
func (je *JSONEmitter) Close() error {
	if je.closed {
		return nil
	}
	je.writeTime("close")
	je.closed = true

	if err := je.file.Sync(); err != nil {
		je.file.Close()
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := je.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

func (je *JSONEmitter) writeTime(key string) {
	now := time.Now()
	je.write(map[string][2]int64{
		key: {now.Unix(), int64(now.Nanosecond() / 1000)},
	})
}

func (je *JSONEmitter) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		je.writeFailed(err)
		return
	}
	data = append(data, '\n')
	if _, err := je.file.Write(data); err != nil {
		je.writeFailed(err)
	}
}

func (je *JSONEmitter) writeFailed(err error) {
	je.writeErrors++
	if selflog.IsEnabled() {
		selflog.Printf("[json] write to %s failed: %v", je.path, err)
	}
}
