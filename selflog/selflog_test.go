package selflog_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/willibrandon/logsink/selflog"
)

func TestSelfLog(t *testing.T) {
	selflog.Disable()
	defer selflog.Disable()

	t.Run("disabled", func(t *testing.T) {
		if selflog.IsEnabled() {
			t.Fatal("expected selflog to be disabled")
		}
		selflog.Printf("[test] dropped")
	})

	t.Run("writer", func(t *testing.T) {
		var buf bytes.Buffer
		selflog.Enable(&buf)
		defer selflog.Disable()

		selflog.Printf("[json] write failed: %s", "disk full")

		out := buf.String()
		if !strings.Contains(out, "[json] write failed: disk full") {
			t.Errorf("unexpected output: %q", out)
		}
		if !strings.HasPrefix(out, time.Now().UTC().Format("2006-01-02")) {
			t.Errorf("expected timestamp prefix, got %q", out)
		}
	})

	t.Run("func", func(t *testing.T) {
		var lines []string
		selflog.EnableFunc(func(s string) { lines = append(lines, s) })
		defer selflog.Disable()

		selflog.Printf("[sink] emitter removed")
		if len(lines) != 1 || !strings.HasSuffix(lines[0], "[sink] emitter removed") {
			t.Errorf("unexpected lines: %v", lines)
		}
	})

	t.Run("disable", func(t *testing.T) {
		var buf bytes.Buffer
		selflog.Enable(&buf)
		selflog.Printf("[test] first")
		selflog.Disable()
		selflog.Printf("[test] second")

		if strings.Contains(buf.String(), "second") {
			t.Error("output written after Disable")
		}
	})

	t.Run("nil ignored", func(t *testing.T) {
		selflog.Enable(nil)
		selflog.EnableFunc(nil)
		if selflog.IsEnabled() {
			t.Error("nil writer or func must not enable selflog")
		}
	})
}

func TestSyncWriter(t *testing.T) {
	var buf bytes.Buffer
	selflog.Enable(selflog.Sync(&buf))
	defer selflog.Disable()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			selflog.Printf("[test] line %d", n)
		}(i)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "\n"); got != 20 {
		t.Errorf("expected 20 lines, got %d", got)
	}
}
