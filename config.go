package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slowjs/eval"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when no -config
// flag is given. A missing file is not an error.
const DefaultConfigFile = ".slowjs.yaml"

// Config holds the settings of the command line tool.
type Config struct {
	// MaxDepth bounds the call depth; zero means the evaluator default.
	// It may not exceed eval.MaxDepthLimit.
	MaxDepth int `yaml:"max_depth"`

	// Prompt is the REPL prompt.
	Prompt string `yaml:"prompt"`

	// HistoryFile is where the REPL keeps its history. Empty disables it.
	HistoryFile string `yaml:"history_file"`

	// Color is one of "auto", "always" or "never".
	Color string `yaml:"color"`

	// Trace logs call events to stderr.
	Trace bool `yaml:"trace"`
}

func DefaultConfig() *Config {
	return &Config{
		Prompt: "> ",
		Color:  "auto",
	}
}

// LoadConfig reads the config at path. If path is empty, DefaultConfigFile
// is tried and the defaults are used when it does not exist.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses YAML config data. Keys missing from data keep their
// default values.
func ParseConfig(data []byte, path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(path string) error {
	if err := checkMaxDepth(c.MaxDepth); err != nil {
		return fmt.Errorf("%s: max_depth %w", path, err)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, c.Color)
	}
	return nil
}

func checkMaxDepth(depth int) error {
	if depth < 0 || depth > eval.MaxDepthLimit {
		return fmt.Errorf("must be between 0 and %d, got %d", eval.MaxDepthLimit, depth)
	}
	return nil
}

// UseColor reports whether diagnostics written to w get ANSI colour.
func (c *Config) UseColor(w io.Writer) bool {
	switch c.Color {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
