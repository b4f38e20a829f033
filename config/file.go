package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrCorrupt marks stored settings that could not be decoded.
var ErrCorrupt = errors.New("corrupt settings")

// Load reads settings from path and merges them over Default. Files ending in
// .yaml or .yml are YAML, everything else JSON. Unknown keys are ignored.
//
// A missing file yields the defaults and no error. A file that cannot be
// decoded yields the defaults wholesale together with an error wrapping
// ErrCorrupt, so callers can log it and keep running.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read settings %q: %w", path, err)
	}
	return Decode(data, isYAML(path))
}

// Decode merges encoded settings over Default and sanitizes the result.
func Decode(data []byte, asYAML bool) (Config, error) {
	cfg := Default()
	var err error
	if asYAML {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return cfg.Sanitize(), nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %q: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
