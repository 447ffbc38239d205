// Package config loads nidmafni settings from a YAML file.
//
// Settings live in ~/.nidmafni/settings.yaml by default:
//
//	afni:
//	  binary: afni
//	  info_binary: 3dinfo
//	  timeout: 30s
//	defaults:
//	  p_uncorrected: 0.01
//	  p_corrected: 0.05
//	  nidm_version: 0.2.0
//	log:
//	  level: info
//
// A missing file is not an error; Load returns Default() instead.
// Environment variables override the file (see applyEnvOverrides).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the root of settings.yaml.
type Settings struct {
	AFNI     AFNISettings `yaml:"afni"`
	Defaults Defaults     `yaml:"defaults"`
	Log      LogSettings  `yaml:"log"`
}

// AFNISettings locates the AFNI command-line tools.
type AFNISettings struct {
	// Binary prints the AFNI version banner with -ver.
	Binary string `yaml:"binary"`

	// InfoBinary dumps dataset metadata and history.
	InfoBinary string `yaml:"info_binary"`

	// Timeout bounds each tool invocation ("30s"). Empty means none.
	Timeout string `yaml:"timeout,omitempty"`
}

// Defaults are used when the export command is not given explicit values.
type Defaults struct {
	PUncorrected float64 `yaml:"p_uncorrected"`
	PCorrected   float64 `yaml:"p_corrected"`
	NIDMVersion  string  `yaml:"nidm_version"`
}

// LogSettings configures the zap logger.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Development switches to zap's human-readable console encoder.
	Development bool `yaml:"development,omitempty"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		AFNI: AFNISettings{
			Binary:     "afni",
			InfoBinary: "3dinfo",
		},
		Defaults: Defaults{
			PUncorrected: 0.01,
			PCorrected:   0.05,
			NIDMVersion:  "0.2.0",
		},
		Log: LogSettings{Level: "info"},
	}
}

// DefaultPath returns ~/.nidmafni/settings.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".nidmafni", "settings.yaml"), nil
}

// Load reads settings from path on top of Default() and applies environment
// overrides.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	s.applyEnvOverrides()
	return s, nil
}

// Save writes s to path, creating the parent directory.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

const (
	EnvAFNIBinary = "NIDMAFNI_AFNI_BIN"
	EnvInfoBinary = "NIDMAFNI_3DINFO_BIN"
	EnvLogLevel   = "NIDMAFNI_LOG_LEVEL"
)

func (s *Settings) applyEnvOverrides() {
	if v := os.Getenv(EnvAFNIBinary); v != "" {
		s.AFNI.Binary = v
	}
	if v := os.Getenv(EnvInfoBinary); v != "" {
		s.AFNI.InfoBinary = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.Log.Level = v
	}
}

// ToolTimeout parses AFNI.Timeout. Empty yields zero (no timeout).
func (s *Settings) ToolTimeout() (time.Duration, error) {
	if s.AFNI.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.AFNI.Timeout)
	if err != nil {
		return 0, fmt.Errorf("afni.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("afni.timeout: negative duration %s", d)
	}
	return d, nil
}

// ValidPValue reports whether p is usable as a significance threshold.
func ValidPValue(p float64) bool {
	return p > 0 && p < 1
}

// Validate checks that the settings can drive an export.
func (s *Settings) Validate() error {
	if s.AFNI.Binary == "" {
		return fmt.Errorf("afni.binary must not be empty")
	}
	if s.AFNI.InfoBinary == "" {
		return fmt.Errorf("afni.info_binary must not be empty")
	}
	if _, err := s.ToolTimeout(); err != nil {
		return err
	}
	if !ValidPValue(s.Defaults.PUncorrected) {
		return fmt.Errorf("defaults.p_uncorrected must be in (0,1), got %g", s.Defaults.PUncorrected)
	}
	if !ValidPValue(s.Defaults.PCorrected) {
		return fmt.Errorf("defaults.p_corrected must be in (0,1), got %g", s.Defaults.PCorrected)
	}
	if s.Defaults.NIDMVersion == "" {
		return fmt.Errorf("defaults.nidm_version must not be empty")
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", s.Log.Level)
	}
	return nil
}
