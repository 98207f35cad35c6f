package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dl/rxmark/internal/annotate"
)

// FileConfig is the YAML defaults file. Unset keys leave the built-in
// default in place; command-line flags override both.
//
//	engine: pcre
//	global: true
//	case_insensitive: false
//	multiline: true
//	format: terminal
//	color: auto
//	offsets: utf16
//	locator: exact
//	escape_html: true
type FileConfig struct {
	Engine          string `yaml:"engine"`
	Global          *bool  `yaml:"global"`
	CaseInsensitive *bool  `yaml:"case_insensitive"`
	Multiline       *bool  `yaml:"multiline"`
	Format          string `yaml:"format"`
	Color           string `yaml:"color"`
	Offsets         string `yaml:"offsets"`
	Locator         string `yaml:"locator"`
	EscapeHTML      *bool  `yaml:"escape_html"`
}

// ConfigPath returns the config file location: RXMARK_CONFIG_PATH, or
// ~/.rxmark.yaml. Returns "" when neither can be determined.
func ConfigPath() string {
	if path := os.Getenv("RXMARK_CONFIG_PATH"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rxmark.yaml")
}

// LoadFile reads the config file at path. A missing file is not an error
// and yields an empty FileConfig.
func LoadFile(path string) (*FileConfig, error) {
	fc := &FileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// Apply copies the values set in the file into cfg, skipping settings for
// which changed(flagName) reports an explicit command-line flag.
func (fc *FileConfig) Apply(cfg *Config, changed func(flag string) bool) error {
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if fc.Engine != "" && !changed("engine") {
		cfg.Engine = fc.Engine
	}
	if fc.Global != nil && !changed("global") {
		cfg.Global = *fc.Global
	}
	if fc.CaseInsensitive != nil && !changed("ignore-case") {
		cfg.IgnoreCase = *fc.CaseInsensitive
	}
	if fc.Multiline != nil && !changed("multiline") {
		cfg.Multiline = *fc.Multiline
	}
	if fc.Format != "" && !changed("format") {
		cfg.Format = fc.Format
	}
	if fc.Color != "" && !changed("color") {
		mode, err := ParseColorMode(fc.Color)
		if err != nil {
			return err
		}
		cfg.Color = mode
	}
	if fc.Offsets != "" && !changed("offsets") {
		unit, err := annotate.ParseOffsetUnit(fc.Offsets)
		if err != nil {
			return err
		}
		cfg.Offsets = unit
	}
	if fc.Locator != "" && !changed("locator") {
		loc, err := annotate.ParseLocator(fc.Locator)
		if err != nil {
			return err
		}
		cfg.Locator = loc
	}
	if fc.EscapeHTML != nil && !changed("escape-html") {
		cfg.EscapeHTML = *fc.EscapeHTML
	}
	return nil
}
