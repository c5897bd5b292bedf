package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/panbanda/livewalk/pkg/walkthrough"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Scan.Root != "engineConfiguration" {
		t.Errorf("Scan.Root = %q, want engineConfiguration", cfg.Scan.Root)
	}
	if cfg.Values.Strict {
		t.Error("Values.Strict should be false by default")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}
	if cfg.Watch.DebounceMS != 300 {
		t.Errorf("Watch.DebounceMS = %d, want 300", cfg.Watch.DebounceMS)
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Exclude.Dirs should have default values")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "livewalk.toml")

	content := `
[values]
file = "captures/bench.toml"
strict = true

[palette]
active_statement = "#00ff00"

[scan]
root = "config"

[exclude]
dirs = ["build", "generated"]

[output]
format = "json"

[analysis]
workers = 4
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Values.File != "captures/bench.toml" {
		t.Errorf("Values.File = %q, want captures/bench.toml", cfg.Values.File)
	}
	if !cfg.Values.Strict {
		t.Error("Values.Strict should be true")
	}
	if cfg.ConfigRoot() != "config" {
		t.Errorf("ConfigRoot() = %q, want config", cfg.ConfigRoot())
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
	if cfg.Analysis.Workers != 4 {
		t.Errorf("Analysis.Workers = %d, want 4", cfg.Analysis.Workers)
	}
	// Unset sections keep their defaults
	if cfg.Watch.DebounceMS != 300 {
		t.Errorf("Watch.DebounceMS = %d, want 300", cfg.Watch.DebounceMS)
	}

	p, err := cfg.ColorPalette()
	if err != nil {
		t.Fatalf("ColorPalette() error: %v", err)
	}
	if got := p.Color(walkthrough.RoleActiveStatement).RGB; got != (walkthrough.RGB{G: 255}) {
		t.Errorf("active colour = %v, want #00ff00", got)
	}
	if got, want := p.Color(walkthrough.RoleBrokenCode), walkthrough.DefaultPalette().Color(walkthrough.RoleBrokenCode); got != want {
		t.Errorf("broken colour = %v, want default %v", got, want)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "livewalk.yaml")

	content := `
values:
  file: values.yaml
scan:
  known_fields: fields.yaml
output:
  format: markdown
watch:
  debounce_ms: 50
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Values.File != "values.yaml" {
		t.Errorf("Values.File = %q, want values.yaml", cfg.Values.File)
	}
	if cfg.Scan.KnownFields != "fields.yaml" {
		t.Errorf("Scan.KnownFields = %q, want fields.yaml", cfg.Scan.KnownFields)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
	if cfg.Watch.DebounceMS != 50 {
		t.Errorf("Watch.DebounceMS = %d, want 50", cfg.Watch.DebounceMS)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "livewalk.json")

	content := `{
  "output": {
    "format": "toon",
    "color": false
  },
  "analysis": {
    "max_file_size": 1024
  }
}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %s, want toon", cfg.Output.Format)
	}
	if cfg.Output.Color {
		t.Error("Output.Color should be false")
	}
	if cfg.Analysis.MaxFileSize != 1024 {
		t.Errorf("Analysis.MaxFileSize = %d, want 1024", cfg.Analysis.MaxFileSize)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/livewalk.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "livewalk.toml")

	content := `[output
invalid toml`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid config")
	}
}

func TestLoadOrDefault(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	if path := Find(); path != "" {
		t.Errorf("Find() = %q, want empty", path)
	}

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}
	if cfg.Output.Format != "text" {
		t.Errorf("LoadOrDefault() returned non-default format: %s", cfg.Output.Format)
	}
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.Mkdir(filepath.Join(tmpDir, ".livewalk"), 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	content := `
[watch]
debounce_ms = 999
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".livewalk", "livewalk.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Chdir(tmpDir)

	if path := Find(); path != filepath.Join(".livewalk", "livewalk.toml") {
		t.Errorf("Find() = %q, want .livewalk/livewalk.toml", path)
	}

	cfg := LoadOrDefault()
	if cfg.Watch.DebounceMS != 999 {
		t.Errorf("LoadOrDefault() should load from file, got DebounceMS=%d", cfg.Watch.DebounceMS)
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		// Excluded directories
		{"build/generated/engine.cpp", true},
		{filepath.Join("firmware", "ext", "lib.c"), true},
		{".git/objects/file", true},

		// Excluded patterns
		{"knock_test.cpp", true},
		{"messages.pb.h", true},

		// Excluded extensions
		{"engine.o", true},

		// Not excluded
		{"controllers/engine_controller.cpp", false},
		{"init/sensor/init_maf.cpp", false},
		{"build_info.h", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.ShouldExclude(tt.path)
			if got != tt.want {
				t.Errorf("ShouldExclude(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"every format", func(c *Config) { c.Output.Format = "toon" }, false},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"bad palette role", func(c *Config) { c.Palette["sparkly"] = "#ffffff" }, true},
		{"bad palette colour", func(c *Config) { c.Palette["broken_code"] = "red" }, true},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -1 }, true},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -2 }, true},
		{"negative size", func(c *Config) { c.Analysis.MaxFileSize = -1 }, true},
		{"bad pattern", func(c *Config) { c.Exclude.Patterns = []string{"[a-"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigRootFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scan.Root = ""
	if got := cfg.ConfigRoot(); got != walkthrough.DefaultConfigRoot {
		t.Errorf("ConfigRoot() = %q, want %q", got, walkthrough.DefaultConfigRoot)
	}
}
