// Package config loads the shell's optional startup file: prompt
// text, history location, and diagnostic-log settings
// (SPEC_FULL.md §6). A shell that never sees -config runs on the
// Defaults below.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"jsh/internal/logging"
)

// Config holds everything main needs to wire up before entering the
// REPL.
type Config struct {
	Prompt      string         `yaml:"prompt"`
	HistoryFile string         `yaml:"history_file"`
	Log         logging.Config `yaml:"log"`
}

// Defaults returns the configuration used when no file is supplied.
func Defaults() Config {
	return Config{
		Prompt:      "jsh> ",
		HistoryFile: "",
		Log:         logging.Config{},
	}
}

// Load reads a YAML config file from path, overlaying it on Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "jsh> "
	}
	return cfg, nil
}
