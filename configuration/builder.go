// Package configuration builds a sink and its emitters from YAML.
package configuration

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/willibrandon/logsink"
	"github.com/willibrandon/logsink/core"
	"github.com/willibrandon/logsink/emitters"
)

// ErrUnknownEmitter is returned for emitter names with no registered factory.
var ErrUnknownEmitter = errors.New("unknown emitter")

// EmitterFactory creates an emitter from its configuration arguments.
type EmitterFactory func(args map[string]any) (core.Emitter, error)

// Builder turns a Configuration into a running sink.
type Builder struct {
	factories map[string]EmitterFactory
}

// NewBuilder creates a builder with the JSON, Console and Memory factories registered.
func NewBuilder() *Builder {
	b := &Builder{factories: make(map[string]EmitterFactory)}
	b.RegisterEmitter("JSON", createJSONEmitter)
	b.RegisterEmitter("Console", createConsoleEmitter)
	b.RegisterEmitter("Memory", func(map[string]any) (core.Emitter, error) {
		return emitters.NewMemoryEmitter(), nil
	})
	return b
}

// RegisterEmitter registers factory under name. Names are case-insensitive.
func (b *Builder) RegisterEmitter(name string, factory EmitterFactory) {
	b.factories[strings.ToLower(name)] = factory
}

// Build creates every configured emitter and a sink they are subscribed to,
// in configuration order. If any emitter fails to build, the ones already
// created are closed and no sink is started.
func (b *Builder) Build(cfg *Configuration, opts ...logsink.Option) (*logsink.LogSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	built := make([]core.Emitter, 0, len(cfg.Emitters))
	for _, ec := range cfg.Emitters {
		em, err := b.createEmitter(ec)
		if err != nil {
			for _, e := range built {
				e.Close()
			}
			return nil, fmt.Errorf("failed to create emitter %s: %w", ec.Name, err)
		}
		built = append(built, em)
	}

	options := []logsink.Option{logsink.WithMessageCapacity(cfg.MessageCapacity)}
	for _, em := range built {
		options = append(options, logsink.WithEmitter(em))
	}
	return logsink.New(append(options, opts...)...), nil
}

func (b *Builder) createEmitter(ec EmitterConfiguration) (core.Emitter, error) {
	factory, ok := b.factories[strings.ToLower(ec.Name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmitter, ec.Name)
	}

	em, err := factory(ec.Args)
	if err != nil {
		return nil, err
	}

	if ec.MinimumSeverity != "" {
		min, _ := core.ParseSeverity(ec.MinimumSeverity)
		em = emitters.NewFilterEmitter(em, emitters.MinimumSeverity(logsink.NewSeveritySwitch(min)))
	}
	if len(ec.Sections) > 0 {
		em = emitters.NewFilterEmitter(em, emitters.SectionPrefix(ec.Sections...))
	}
	return em, nil
}

func createJSONEmitter(args map[string]any) (core.Emitter, error) {
	dir := GetString(args, "directory", "")
	if dir == "" {
		return nil, fmt.Errorf("directory is required")
	}
	je, err := emitters.NewJSONEmitter(dir)
	if err != nil {
		return nil, err
	}
	return je, nil
}

func createConsoleEmitter(args map[string]any) (core.Emitter, error) {
	opts := emitters.ConsoleOptions{
		NoColor: !GetBool(args, "color", true),
	}
	switch stream := GetString(args, "stream", "stdout"); stream {
	case "stdout":
		opts.Writer = os.Stdout
	case "stderr":
		opts.Writer = os.Stderr
	default:
		return nil, fmt.Errorf("unknown stream %q", stream)
	}
	return emitters.NewConsoleEmitterWithOptions(opts), nil
}
