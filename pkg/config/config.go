package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/livewalk/pkg/walkthrough"
)

// Config holds all configuration options for livewalk.
type Config struct {
	// Where condition values come from
	Values ValuesConfig `koanf:"values" toml:"values"`

	// Per-role colour overrides, keyed by role name
	Palette map[string]string `koanf:"palette" toml:"palette"`

	// Configuration field scanning
	Scan ScanConfig `koanf:"scan" toml:"scan"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Watch mode settings
	Watch WatchConfig `koanf:"watch" toml:"watch"`

	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`
}

// ValuesConfig locates the condition values document.
type ValuesConfig struct {
	File   string `koanf:"file" toml:"file"`
	Strict bool   `koanf:"strict" toml:"strict"`
}

// ScanConfig controls the configuration field scan.
type ScanConfig struct {
	Root        string `koanf:"root" toml:"root"`
	KnownFields string `koanf:"known_fields" toml:"known_fields"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"` // also honour .gitignore files
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format      string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color       bool   `koanf:"color" toml:"color"`
	Source      bool   `koanf:"source" toml:"source"` // include the annotated source in text output
	LineNumbers bool   `koanf:"line_numbers" toml:"line_numbers"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMS int `koanf:"debounce_ms" toml:"debounce_ms"`
}

// AnalysisConfig bounds multi-file runs.
type AnalysisConfig struct {
	MaxFileSize int64 `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 for no limit
	Workers     int   `koanf:"workers" toml:"workers"`             // 0 for the default
}

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "markdown", "toon"}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Palette: map[string]string{},
		Scan: ScanConfig{
			Root: walkthrough.DefaultConfigRoot,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.cpp",
				"*.pb.h",
				"*.pb.cc",
			},
			Extensions: []string{
				".o",
				".d",
			},
			Dirs: []string{
				".git",
				".livewalk",
				"build",
				"ext",
				"third_party",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format:      "text",
			Color:       true,
			Source:      true,
			LineNumbers: true,
		},
		Watch: WatchConfig{
			DebounceMS: 300,
		},
		Analysis: AnalysisConfig{
			MaxFileSize: 4 << 20,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	return cfg, nil
}

// configNames are searched in order inside each search directory.
var configNames = []string{
	"livewalk.toml",
	"livewalk.yaml",
	"livewalk.yml",
	"livewalk.json",
	".livewalk.toml",
	".livewalk.yaml",
	".livewalk.yml",
	".livewalk.json",
}

// Find returns the first config file in the standard locations, or "".
func Find() string {
	for _, dir := range []string{".", ".livewalk"} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	if path := Find(); path != "" {
		if cfg, err := Load(path); err == nil {
			return cfg
		}
	}
	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// ColorPalette returns the default palette with the configured overrides applied.
func (c *Config) ColorPalette() (walkthrough.Palette, error) {
	return walkthrough.DefaultPalette().WithOverrides(c.Palette)
}

// ConfigRoot returns the scan root, falling back to the default identifier.
func (c *Config) ConfigRoot() string {
	if c.Scan.Root == "" {
		return walkthrough.DefaultConfigRoot
	}
	return c.Scan.Root
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := c.ColorPalette(); err != nil {
		return fmt.Errorf("palette: %w", err)
	}

	valid := false
	for _, f := range Formats {
		if c.Output.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("output.format: unknown format %q (want one of %s)", c.Output.Format, strings.Join(Formats, ", "))
	}

	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms: must not be negative, got %d", c.Watch.DebounceMS)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers: must not be negative, got %d", c.Analysis.Workers)
	}
	if c.Analysis.MaxFileSize < 0 {
		return fmt.Errorf("analysis.max_file_size: must not be negative, got %d", c.Analysis.MaxFileSize)
	}

	for _, pattern := range c.Exclude.Patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("exclude.patterns: %q: %w", pattern, err)
		}
	}

	return nil
}
