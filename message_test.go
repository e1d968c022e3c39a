package logsink_test

import (
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/willibrandon/logsink"
	"github.com/willibrandon/logsink/core"
	"github.com/willibrandon/logsink/testutil"
)

func callerLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

func records(sink *logsink.LogSink, section string) []core.SinkMessage {
	return testutil.InSection(sink.GetMessages(), section)
}

func TestMessageCapturesCallSite(t *testing.T) {
	sink := logsink.New()
	defer sink.Close()

	m, line := sink.I("test/site"), callerLine()
	m.Printf("value=%d", 7)
	m.End()

	got := records(sink, "test/site")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	rec := got[0]
	testutil.AssertEqual(t, rec.Message, "value=7", "body")
	testutil.AssertEqual(t, rec.Severity, core.Info, "severity")
	testutil.AssertEqual(t, rec.Line, line, "line")
	if !strings.HasSuffix(rec.File, "message_test.go") {
		t.Errorf("unexpected file %q", rec.File)
	}
	if !strings.HasSuffix(rec.Func, "TestMessageCapturesCallSite") {
		t.Errorf("unexpected func %q", rec.Func)
	}
	if rec.Time.IsZero() {
		t.Error("timestamp not captured")
	}
}

func TestMessageTimestampIsConstructionTime(t *testing.T) {
	sink := logsink.New()
	defer sink.Close()

	before := time.Now()
	m := sink.D("test/time")
	time.Sleep(50 * time.Millisecond)
	m.WriteString("late")
	ended := time.Now()
	m.End()

	rec := records(sink, "test/time")[0]
	if rec.Time.Before(before) || !rec.Time.Before(ended.Add(-40*time.Millisecond)) {
		t.Fatalf("timestamp %v not taken at construction (%v)", rec.Time, before)
	}
}

func TestMessageTruncation(t *testing.T) {
	sink := logsink.New(logsink.WithMessageCapacity(16))
	defer sink.Close()

	long := strings.Repeat("abcdefghij", 4)
	m := sink.W("test/trunc")
	n, err := m.WriteString(long)
	if err != nil || n != len(long) {
		t.Fatalf("WriteString reported %d, %v", n, err)
	}
	n, err = m.Write([]byte("more"))
	if err != nil || n != 4 {
		t.Fatalf("Write reported %d, %v", n, err)
	}
	if !m.Truncated() || m.Len() != 16 {
		t.Fatalf("expected truncated 16-byte body, got %d bytes", m.Len())
	}
	m.End()

	testutil.AssertEqual(t, records(sink, "test/trunc")[0].Message, long[:16], "truncated body")
}

func TestMessageTruncationKeepsWholeRunes(t *testing.T) {
	sink := logsink.New(logsink.WithMessageCapacity(5))
	defer sink.Close()

	sink.Infof("test/utf8", "%s", "éééé")
	sink.Infof("test/utf8", "abcd%s", "é")
	sink.Infof("test/utf8", "%s", "abcdef")

	got := testutil.Bodies(records(sink, "test/utf8"))
	want := []string{"éé", "abcd", "abcde"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] || !utf8.ValidString(got[i]) {
			t.Errorf("record %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMessageDefaultCapacity(t *testing.T) {
	sink := logsink.New(logsink.WithMessageCapacity(-5))
	defer sink.Close()

	long := strings.Repeat("x", logsink.DefaultMessageCapacity+500)
	sink.Infof("test/default", "%s", long)

	got := records(sink, "test/default")[0].Message
	testutil.AssertEqual(t, len(got), logsink.DefaultMessageCapacity, "body length")
	testutil.AssertEqual(t, got, long[:logsink.DefaultMessageCapacity], "body prefix")
}

func TestMessageEndOnce(t *testing.T) {
	sink := logsink.New()
	defer sink.Close()

	m := sink.E("test/once").Print("only ", "once")
	m.End()
	m.End()

	got := records(sink, "test/once")
	testutil.AssertEqual(t, len(got), 1, "records")
	testutil.AssertEqual(t, got[0].Message, "only once", "body")
}

func TestMessageEmittedWhenPanicking(t *testing.T) {
	sink := logsink.New()
	defer sink.Close()

	func() {
		defer func() { recover() }()

		m := sink.A("test/panic")
		defer m.End()
		fmt.Fprint(m, "before panic")
		panic("unwinding")
	}()

	got := records(sink, "test/panic")
	if len(got) != 1 || got[0].Message != "before panic" || got[0].Severity != core.Assert {
		t.Fatalf("unexpected records %+v", got)
	}
}

func TestMessageEmittedOnEarlyReturn(t *testing.T) {
	sink := logsink.New()
	defer sink.Close()

	work := func(fail bool) int {
		m := sink.D("test/early")
		defer m.End()
		if fail {
			m.Printf("gave up")
			return -1
		}
		m.Printf("finished")
		return 0
	}
	work(true)
	work(false)

	got := testutil.Bodies(records(sink, "test/early"))
	if strings.Join(got, ",") != "gave up,finished" {
		t.Fatalf("unexpected bodies %v", got)
	}
}

func TestFormattedHelpers(t *testing.T) {
	sink := logsink.New()
	defer sink.Close()

	sink.Errorf("test/helpers", "e%d", 1)
	sink.Assertf("test/helpers", "a%d", 2)
	sink.Warnf("test/helpers", "w%d", 3)
	sink.Infof("test/helpers", "i%d", 4)
	sink.Debugf("test/helpers", "d%d", 5)
	sink.Logf("test/helpers", core.Warning, "l%d", 6)
	sink.NewMessage("test/helpers", core.Error).Printf("n%d", 7).End()

	want := []core.Severity{core.Error, core.Assert, core.Warning, core.Info, core.Debug, core.Warning, core.Error}
	got := records(sink, "test/helpers")
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, rec := range got {
		if rec.Severity != want[i] {
			t.Errorf("record %d: severity %v, want %v", i, rec.Severity, want[i])
		}
		if !strings.HasSuffix(rec.File, "message_test.go") {
			t.Errorf("record %d: call site %s, want message_test.go", i, rec.File)
		}
	}
}
