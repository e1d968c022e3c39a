package emitters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/willibrandon/logsink/core"
)

var severityColors = map[core.Severity]*color.Color{
	core.Error:   color.New(color.FgRed, color.Bold),
	core.Assert:  color.New(color.FgMagenta, color.Bold),
	core.Warning: color.New(color.FgYellow),
	core.Info:    color.New(color.FgGreen),
	core.Debug:   color.New(color.FgHiBlack),
}

// FormatText renders msg as a single line:
//
//	W 14:03:27 512034 <video/provider           > [provider.go:video.Open:88]  frame 12 is missing
//
// When colorize is set the severity code is wrapped in ANSI colors.
func FormatText(msg *core.SinkMessage, colorize bool) string {
	code := string(msg.Severity.Code())
	if colorize {
		if c, ok := severityColors[msg.Severity]; ok {
			code = c.Sprint(code)
		}
	}

	t := msg.Time.Local()
	return fmt.Sprintf("%s %02d:%02d:%02d %-6d <%-25s> [%s:%s:%d]  %s\n",
		code, t.Hour(), t.Minute(), t.Second(), msg.Usec(),
		msg.Section, filepath.Base(msg.File), shortFunc(msg.Func), msg.Line, msg.Message)
}

// shortFunc drops the import path from a runtime function name.
func shortFunc(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func init() {
	for _, c := range severityColors {
		c.EnableColor()
	}
}
