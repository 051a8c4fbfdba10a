// Package config handles application configuration, the logger setup and the
// cartridge layout profiles that locate every table in the image.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadLayout overlays the JSON layout file at path on top of base.
// Fields missing in the file keep the value of base. An empty path returns
// base unchanged.
func LoadLayout(path string, base Layout) (Layout, error) {
	if path == "" {
		return base, base.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Layout{}, fmt.Errorf("layout file %s not found: %w", path, err)
		}
		return Layout{}, fmt.Errorf("reading layout file %s: %w", path, err)
	}

	layout := base
	if err := json.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parsing layout file %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout file %s: %w", path, err)
	}
	return layout, nil
}

// WriteLayout writes a layout as indented JSON, used to create a template
// for a new profile.
func WriteLayout(path string, layout Layout) error {
	data, err := json.MarshalIndent(layout, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing layout file %s: %w", path, err)
	}
	return nil
}
