package emitters

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/willibrandon/logsink"
	"github.com/willibrandon/logsink/core"
	"github.com/willibrandon/logsink/selflog"
)

// ConsoleOptions configures a ConsoleEmitter.
type ConsoleOptions struct {
	// Writer receives the output. Defaults to os.Stdout.
	Writer io.Writer

	// Switch hides records less severe than its current setting. Nil shows everything.
	Switch *logsink.SeveritySwitch

	// NoColor disables ANSI colors even on a terminal.
	NoColor bool
}

// ConsoleEmitter writes records as text lines.
type ConsoleEmitter struct {
	out      io.Writer
	sw       *logsink.SeveritySwitch
	useColor bool
}

// NewConsoleEmitter creates a console emitter writing to stdout.
func NewConsoleEmitter() *ConsoleEmitter {
	return NewConsoleEmitterWithOptions(ConsoleOptions{})
}

// NewConsoleEmitterWithOptions creates a console emitter with custom options.
func NewConsoleEmitterWithOptions(opts ConsoleOptions) *ConsoleEmitter {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &ConsoleEmitter{
		out:      opts.Writer,
		sw:       opts.Switch,
		useColor: !opts.NoColor && shouldUseColor(opts.Writer),
	}
}

// Log writes msg if it passes the severity switch.
func (ce *ConsoleEmitter) Log(msg *core.SinkMessage) {
	if msg == nil || !ce.sw.IsEnabled(msg.Severity) {
		return
	}
	if _, err := io.WriteString(ce.out, FormatText(msg, ce.useColor)); err != nil && selflog.IsEnabled() {
		selflog.Printf("[console] write failed: %v", err)
	}
}

// Close does nothing; the writer belongs to the caller.
func (ce *ConsoleEmitter) Close() error {
	return nil
}

// shouldUseColor colors only the process's own terminal streams.
func shouldUseColor(w io.Writer) bool {
	if w != os.Stdout && w != os.Stderr {
		return false
	}
	return !color.NoColor
}
