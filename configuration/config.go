package configuration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/willibrandon/logsink/core"
)

// Configuration describes a sink and the emitters subscribed to it.
//
//	messageCapacity: 4096
//	emitters:
//	  - name: JSON
//	    args:
//	      directory: ~/.config/app/log
//	  - name: Console
//	    minimumSeverity: Warning
//	    args:
//	      stream: stderr
type Configuration struct {
	MessageCapacity int                    `yaml:"messageCapacity,omitempty"`
	Emitters        []EmitterConfiguration `yaml:"emitters,omitempty"`
}

// EmitterConfiguration selects an emitter factory by name.
type EmitterConfiguration struct {
	Name string         `yaml:"name"`
	Args map[string]any `yaml:"args,omitempty"`

	// MinimumSeverity, when set, hides less severe records from this emitter.
	MinimumSeverity string `yaml:"minimumSeverity,omitempty"`

	// Sections, when set, limits the emitter to records whose section has one of these prefixes.
	Sections []string `yaml:"sections,omitempty"`
}

// LoadFromFile reads a YAML configuration file. A leading "~" is expanded.
func LoadFromFile(path string) (*Configuration, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromYAML(data)
}

// LoadFromYAML parses and validates YAML configuration. Unknown keys are rejected.
func LoadFromYAML(data []byte) (*Configuration, error) {
	var cfg Configuration
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that do not depend on registered factories.
func (c *Configuration) Validate() error {
	if c.MessageCapacity < 0 {
		return fmt.Errorf("messageCapacity must not be negative, got %d", c.MessageCapacity)
	}
	for i, em := range c.Emitters {
		if strings.TrimSpace(em.Name) == "" {
			return fmt.Errorf("emitters[%d]: name is required", i)
		}
		if em.MinimumSeverity != "" {
			if _, err := core.ParseSeverity(em.MinimumSeverity); err != nil {
				return fmt.Errorf("emitters[%d] (%s): %w", i, em.Name, err)
			}
		}
	}
	return nil
}

// GetString gets a string argument.
func GetString(args map[string]any, key, defaultValue string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultValue
}

// GetBool gets a bool argument. The strings "true" and "false" are accepted too.
func GetBool(args map[string]any, key string, defaultValue bool) bool {
	if v, ok := args[key]; ok {
		switch val := v.(type) {
		case bool:
			return val
		case string:
			switch strings.ToLower(val) {
			case "true", "yes", "on":
				return true
			case "false", "no", "off":
				return false
			}
		}
	}
	return defaultValue
}
