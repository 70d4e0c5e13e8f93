// Package config loads interpreter settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultPrompt     = ">> "
	DefaultResetToken = ":reset"
	DefaultLogLevel   = "warn"
	historyFileName   = ".bfi_history"
)

// Config holds the settings a session starts with. Command-line flags
// override any of them.
type Config struct {
	Prompt      string `yaml:"prompt"`
	ResetToken  string `yaml:"reset_token"`
	HistoryFile string `yaml:"history_file"`
	DB          string `yaml:"db"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	c := Config{
		Prompt:     DefaultPrompt,
		ResetToken: DefaultResetToken,
		LogLevel:   DefaultLogLevel,
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.HistoryFile = filepath.Join(home, historyFileName)
	}
	return c
}

// DefaultPath returns $XDG_CONFIG_HOME/bfi/config.yml (or the platform
// equivalent), or "" when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bfi", "config.yml")
}

// Parse reads YAML from r on top of the defaults.
func Parse(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads the config file at path. When path is empty the default
// location is used, and a missing default file yields the defaults.
// A missing explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks fields that would leave the interactive session unusable.
func (c Config) Validate() error {
	var issues []string
	if strings.TrimSpace(c.ResetToken) == "" {
		issues = append(issues, "reset_token must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("unknown log_level %q (use debug, info, warn or error)", c.LogLevel))
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}
