package cli

import (
	"fmt"
	"strings"

	"github.com/dl/rxmark/internal/annotate"
	"github.com/dl/rxmark/internal/matcher"
	"github.com/dl/rxmark/internal/output"
)

// ColorMode controls when colored output is used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when stdout is a terminal
	ColorAlways                  // always use color
	ColorNever                   // never use color
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	}
	return "auto"
}

// ParseColorMode parses auto, always or never.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// Demo input shown by --demo.
const (
	DemoPattern = `(\b)\w+(\b)`
	DemoText    = "hell\nmy name\nis weal lamp"
)

// Config holds all configuration for an rxmark run.
type Config struct {
	Pattern    string
	Global     bool
	IgnoreCase bool
	Multiline  bool
	Engine     string

	Format     string
	Color      ColorMode
	Offsets    annotate.OffsetUnit
	Locator    annotate.Locator
	EscapeHTML bool

	// Subject text: inline Text when HasText, else the file at Path,
	// else stdin.
	Text    string
	HasText bool
	Path    string

	Watch   bool
	Demo    bool
	Verbose bool
}

// DefaultConfig returns the defaults used before the config file and flags
// are applied.
func DefaultConfig() Config {
	return Config{
		Global:     true,
		Multiline:  true,
		Engine:     matcher.EngineRE2,
		Format:     output.FormatReport,
		Color:      ColorAuto,
		Offsets:    annotate.UTF16,
		Locator:    annotate.LocateExact,
		EscapeHTML: true,
	}
}

// MatchConfig returns the matching half of the config.
func (c *Config) MatchConfig() matcher.Config {
	return matcher.Config{
		Pattern:    c.Pattern,
		Global:     c.Global,
		IgnoreCase: c.IgnoreCase,
		Multiline:  c.Multiline,
		Engine:     c.Engine,
	}
}

// AnnotateOptions returns the annotation options for the config.
func (c *Config) AnnotateOptions() annotate.Options {
	return annotate.Options{
		Unit:       c.Offsets,
		Locator:    c.Locator,
		EscapeHTML: c.EscapeHTML,
	}
}

// Validate checks that the config is valid and returns an error if not.
// An empty pattern is valid: the text is shown unhighlighted.
func (c *Config) Validate() error {
	if _, err := matcher.NewEngine(c.Engine); err != nil {
		return err
	}
	if _, err := output.NewFormatter(c.Format, output.NoStyles()); err != nil {
		return err
	}
	if c.Watch {
		if c.HasText || c.Demo {
			return fmt.Errorf("cannot use --watch with --text or --demo")
		}
		if c.Path == "" || c.Path == "-" {
			return fmt.Errorf("--watch needs a subject file")
		}
	}
	if c.HasText && c.Path != "" {
		return fmt.Errorf("cannot use --text together with a subject file")
	}
	return nil
}
