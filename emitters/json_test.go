package emitters

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/willibrandon/logsink/core"
	"github.com/willibrandon/logsink/selflog"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}

	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var obj map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("line %q is not JSON: %v", scanner.Text(), err)
		}
		out = append(out, obj)
	}
	return out
}

func TestJSONEmitterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	je, err := NewJSONEmitter(dir)
	if err != nil {
		t.Fatalf("failed to create emitter: %v", err)
	}

	ts := time.Unix(1700000000, 123456789)
	je.Log(&core.SinkMessage{
		Section:  "x",
		Severity: core.Debug,
		File:     "f.c",
		Func:     "g",
		Line:     42,
		Time:     ts,
		Message:  "hi",
	})
	if err := je.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	lines := readLines(t, je.Path())
	if len(lines) != 3 {
		t.Fatalf("expected open, record and close lines, got %d", len(lines))
	}
	if _, ok := lines[0]["open"]; !ok {
		t.Errorf("first line is not an open marker: %v", lines[0])
	}
	if _, ok := lines[2]["close"]; !ok {
		t.Errorf("last line is not a close marker: %v", lines[2])
	}

	rec := lines[1]
	want := map[string]any{
		"sec":      float64(1700000000),
		"usec":     float64(123456),
		"severity": float64(4),
		"section":  "x",
		"file":     "f.c",
		"func":     "g",
		"line":     float64(42),
		"message":  "hi",
	}
	if len(rec) != len(want) {
		t.Errorf("record has fields %v", rec)
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("field %s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestJSONEmitterFieldOrder(t *testing.T) {
	je, err := NewJSONEmitter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	je.Log(&core.SinkMessage{Section: "s", Severity: core.Error, Time: time.Unix(1, 2000)})
	je.Close()

	data, _ := os.ReadFile(je.Path())
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := `{"sec":1,"usec":2,"severity":0,"section":"s","file":"","func":"","line":0,"message":""}`
	if lines[1] != want {
		t.Errorf("record line = %s\nwant          %s", lines[1], want)
	}
	if !regexp.MustCompile(`^\{"open":\[\d+,\d+\]\}$`).MatchString(lines[0]) {
		t.Errorf("open marker = %s", lines[0])
	}
	if !regexp.MustCompile(`^\{"close":\[\d+,\d+\]\}$`).MatchString(lines[2]) {
		t.Errorf("close marker = %s", lines[2])
	}
}

func TestJSONEmitterFileName(t *testing.T) {
	dir := t.TempDir()
	first, err := NewJSONEmitter(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second, err := NewJSONEmitter(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	name := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}-[0-9a-f]{8}\.json$`)
	for _, je := range []*JSONEmitter{first, second} {
		if filepath.Dir(je.Path()) != dir {
			t.Errorf("file %s not in %s", je.Path(), dir)
		}
		if !name.MatchString(filepath.Base(je.Path())) {
			t.Errorf("unexpected file name %s", filepath.Base(je.Path()))
		}
	}
	if first.Path() == second.Path() {
		t.Error("two emitters share a file")
	}
}

func TestJSONEmitterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "log")
	je, err := NewJSONEmitter(dir)
	if err != nil {
		t.Fatalf("failed to create emitter: %v", err)
	}
	defer je.Close()

	if _, err := os.Stat(je.Path()); err != nil {
		t.Errorf("log file missing: %v", err)
	}
}

func TestJSONEmitterOpenFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJSONEmitter(filepath.Join(blocker, "log")); err == nil {
		t.Fatal("expected an error when the directory cannot be created")
	}
}

func TestJSONEmitterFlushesEachRecord(t *testing.T) {
	je, err := NewJSONEmitter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer je.Close()

	je.Log(&core.SinkMessage{Section: "flush", Time: time.Now(), Message: "visible"})

	data, err := os.ReadFile(je.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"message":"visible"`) {
		t.Errorf("record not on disk before Close: %s", data)
	}
}

func TestJSONEmitterAfterClose(t *testing.T) {
	je, err := NewJSONEmitter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := je.Close(); err != nil {
		t.Fatal(err)
	}
	if err := je.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
	je.Log(&core.SinkMessage{Message: "ignored"})

	if n := len(readLines(t, je.Path())); n != 2 {
		t.Errorf("expected only markers, got %d lines", n)
	}
}

func TestJSONEmitterWriteFailure(t *testing.T) {
	var buf bytes.Buffer
	selflog.Enable(selflog.Sync(&buf))
	defer selflog.Disable()

	je, err := NewJSONEmitter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	je.file.Close()

	je.Log(&core.SinkMessage{Message: "lost"})

	if je.WriteErrors() != 1 {
		t.Errorf("expected 1 write error, got %d", je.WriteErrors())
	}
	if !strings.Contains(buf.String(), "[json] write to") {
		t.Errorf("expected selflog entry, got %q", buf.String())
	}
}
