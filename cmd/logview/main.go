// Command logview inspects JSON log files written by logsink's JSON emitter.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/logsink"
	"github.com/willibrandon/logsink/configuration"
	"github.com/willibrandon/logsink/core"
	"github.com/willibrandon/logsink/emitters"
	"github.com/willibrandon/logsink/jsonlog"
)

var (
	minSeverity   string
	sectionPrefix string
	noColor       bool
	demoConfig    string
	demoDir       string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "logview",
	Short:        "Inspect JSON log files",
	Long:         "logview renders and summarizes the one-object-per-line JSON logs written by logsink.",
	SilenceUsage: true,
}

func init() {
	catCmd.Flags().StringVar(&minSeverity, "min-severity", "debug", "hide records less severe than this (error, assert, warning, info, debug)")
	catCmd.Flags().StringVar(&sectionPrefix, "section", "", "only show sections starting with this prefix")
	catCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored severity codes")

	demoCmd.Flags().StringVar(&demoConfig, "config", "", "YAML sink configuration to build from")
	demoCmd.Flags().StringVar(&demoDir, "dir", "log", "directory for the demo JSON log")

	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(demoCmd)
}

// --- cat ---

var catCmd = &cobra.Command{
	Use:   "cat FILE...",
	Short: "Print records as text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, err := core.ParseSeverity(minSeverity)
		if err != nil {
			return err
		}
		files, err := readFiles(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		colorize := !noColor && out == os.Stdout && !color.NoColor
		for _, entries := range files {
			for _, e := range entries {
				if e.Kind != jsonlog.KindRecord {
					continue
				}
				if !e.Record.Severity.Enabled(threshold) || !strings.HasPrefix(e.Record.Section, sectionPrefix) {
					continue
				}
				io.WriteString(out, emitters.FormatText(&e.Record, colorize))
			}
		}
		return nil
	},
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats FILE...",
	Short: "Summarize records per severity and section",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := readFiles(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, entries := range files {
			printSummary(out, args[i], jsonlog.Summarize(entries))
		}
		return nil
	},
}

func printSummary(w io.Writer, path string, s jsonlog.Summary) {
	fmt.Fprintln(w, path)
	if !s.Opened.IsZero() {
		fmt.Fprintf(w, "  opened:  %s\n", s.Opened.Format(time.RFC3339))
	}
	if s.CleanClose {
		fmt.Fprintf(w, "  closed:  %s\n", s.Closed.Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "  closed:  no close marker")
	}
	fmt.Fprintf(w, "  records: %d\n", s.Records)

	var parts []string
	for sev := core.Error; sev <= core.Debug; sev++ {
		parts = append(parts, fmt.Sprintf("%c=%d", sev.Code(), s.BySeverity[sev]))
	}
	fmt.Fprintf(w, "  severity: %s\n", strings.Join(parts, " "))

	if sections := s.Sections(); len(sections) > 0 {
		fmt.Fprintln(w, "  sections:")
		for _, name := range sections {
			fmt.Fprintf(w, "    %-30s %d\n", name, s.BySection[name])
		}
	}
}

// readFiles decodes every file concurrently, keeping argument order.
func readFiles(paths []string) ([][]jsonlog.Entry, error) {
	out := make([][]jsonlog.Entry, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			entries, err := jsonlog.ReadFile(path)
			if err != nil {
				return err
			}
			out[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// --- demo ---

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Write a sample JSON log through a sink and summarize it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		je, err := emitters.NewJSONEmitter(demoDir)
		if err != nil {
			return err
		}

		var sink *logsink.LogSink
		if demoConfig != "" {
			cfg, err := configuration.LoadFromFile(demoConfig)
			if err != nil {
				je.Close()
				return err
			}
			sink, err = configuration.NewBuilder().Build(cfg, logsink.WithEmitter(je))
			if err != nil {
				je.Close()
				return err
			}
		} else {
			sink = logsink.New(
				logsink.WithEmitter(je),
				logsink.WithEmitter(emitters.NewConsoleEmitterWithOptions(emitters.ConsoleOptions{
					Writer:  cmd.OutOrStdout(),
					NoColor: true,
				})),
			)
		}

		writeDemoRecords(sink)
		if err := sink.Close(); err != nil {
			return err
		}

		entries, err := jsonlog.ReadFile(je.Path())
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), je.Path(), jsonlog.Summarize(entries))
		return nil
	},
}

func writeDemoRecords(sink *logsink.LogSink) {
	sink.Infof("logview/demo", "demo started")

	m := sink.D("logview/demo")
	defer m.End()
	fmt.Fprintf(m, "severities:")
	for sev := core.Error; sev <= core.Debug; sev++ {
		fmt.Fprintf(m, " %s", sev)
	}

	sink.Warnf("logview/demo/video", "keyframe %d missing, seeking from %d", 240, 0)
	sink.Errorf("logview/demo/audio", "device %q unavailable", "default")
}
