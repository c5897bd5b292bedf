package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/livewalk/internal/output"
	"github.com/panbanda/livewalk/pkg/analyzer/liveness"
	"github.com/panbanda/livewalk/pkg/config"
)

const idleSource = `void IdleController::update() {
	if (engineConfiguration->useIdleTiming) {
		applyTiming();
	} else {
		skipTiming();
	}
}
`

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("handler returned nil result")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return text.Text
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test", nil, nil)
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
	if server.cfg == nil {
		t.Error("NewServer() should fall back to the default config")
	}
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"walk_source":  describeWalkSource,
		"check_values": describeCheckValues,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s section", name, section)
				}
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		in   string
		want output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"json", output.FormatJSON},
		{"markdown", output.FormatMarkdown},
		{"md", output.FormatMarkdown},
		{"yaml", output.FormatTOON},
	}
	for _, tt := range tests {
		if got := getFormat(tt.in); got != tt.want {
			t.Errorf("getFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	if got := resultText(t, result); got != "Error: test error message" {
		t.Errorf("toolError text = %q, want %q", got, "Error: test error message")
	}
}

func TestToolResult(t *testing.T) {
	data := map[string]any{"key": "value", "num": 42}

	for _, format := range []output.Format{output.FormatTOON, output.FormatJSON, output.FormatMarkdown} {
		t.Run(string(format), func(t *testing.T) {
			result, _, err := toolResult(data, format)
			if err != nil {
				t.Fatalf("toolResult returned error: %v", err)
			}
			if result.IsError {
				t.Error("toolResult.IsError should be false")
			}
			if !strings.Contains(resultText(t, result), "value") {
				t.Error("toolResult text should contain the data")
			}
		})
	}
}

func TestHandleWalkSource_InlineCode(t *testing.T) {
	s := NewServer("test", nil, nil)

	result, _, err := s.handleWalkSource(context.Background(), nil, WalkSourceInput{
		Code:   idleSource,
		Values: map[string]bool{"engineConfiguration -> useIdleTiming": false},
		Format: "json",
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("handler returned tool error: %s", resultText(t, result))
	}

	var analysis liveness.Analysis
	if err := json.Unmarshal([]byte(resultText(t, result)), &analysis); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(analysis.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(analysis.Files))
	}
	fr := analysis.Files[0]
	if fr.Path != "inline.cpp" {
		t.Errorf("path = %q, want inline.cpp", fr.Path)
	}
	if len(fr.BrokenConditions) != 0 {
		t.Errorf("broken conditions = %v, want none", fr.BrokenConditions)
	}
	if fr.Summary.Ranges["inactive_branch"] == 0 {
		t.Error("expected an inactive branch for the false condition")
	}
	if len(fr.Annotations) != 0 {
		t.Error("annotations should be omitted unless requested")
	}
	if len(analysis.Summary.ConfigFields) != 1 || analysis.Summary.ConfigFields[0] != "useIdleTiming" {
		t.Errorf("config fields = %v, want [useIdleTiming]", analysis.Summary.ConfigFields)
	}
}

func TestHandleWalkSource_Paths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "controllers/idle.cpp", idleSource)
	writeFile(t, dir, "controllers/idle_test.cpp", "void t() {}\n")
	valuesFile := writeFile(t, dir, "values.toml", "[conditions]\n\"engineConfiguration->useIdleTiming\" = true\n")

	s := NewServer("test", nil, nil)
	result, _, err := s.handleWalkSource(context.Background(), nil, WalkSourceInput{
		Paths:              []string{filepath.Join(dir, "controllers")},
		ValuesFile:         valuesFile,
		IncludeAnnotations: true,
		Format:             "json",
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("handler returned tool error: %s", resultText(t, result))
	}

	var analysis liveness.Analysis
	if err := json.Unmarshal([]byte(resultText(t, result)), &analysis); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if analysis.Summary.TotalFiles != 1 {
		t.Errorf("total files = %d, want 1 (test sources are excluded)", analysis.Summary.TotalFiles)
	}
	if len(analysis.Files) == 1 && len(analysis.Files[0].Annotations) == 0 {
		t.Error("annotations were requested")
	}
	if analysis.Summary.Lines["active_statement"] == 0 {
		t.Error("expected active statements for the true condition")
	}
}

func TestHandleWalkSource_Errors(t *testing.T) {
	dir := t.TempDir()
	s := NewServer("test", nil, nil)

	tests := []struct {
		name  string
		input WalkSourceInput
	}{
		{"no sources", WalkSourceInput{Paths: []string{dir}}},
		{"missing path", WalkSourceInput{Paths: []string{filepath.Join(dir, "missing")}}},
		{"bad language", WalkSourceInput{Code: "x", Language: "rust"}},
		{"missing values file", WalkSourceInput{Code: idleSource, ValuesFile: filepath.Join(dir, "nope.toml")}},
		{"rev outside repository", WalkSourceInput{Paths: []string{dir}, Rev: "HEAD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := s.handleWalkSource(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if !result.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, result))
			}
		})
	}
}

func TestHandleWalkSource_BadPalette(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Palette["broken_code"] = "orange"
	s := NewServer("test", cfg, nil)

	result, _, err := s.handleWalkSource(context.Background(), nil, WalkSourceInput{Code: idleSource})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error, got %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "orange") {
		t.Errorf("error should name the bad colour: %s", resultText(t, result))
	}
}

func TestHandleWalkSource_Markdown(t *testing.T) {
	s := NewServer("test", nil, nil)
	result, _, err := s.handleWalkSource(context.Background(), nil, WalkSourceInput{
		Code:   idleSource,
		Format: "markdown",
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "# Liveness") {
		t.Errorf("markdown output missing heading:\n%s", text)
	}
	if !strings.Contains(text, "engineConfiguration->useIdleTiming") {
		t.Error("markdown output should list the unresolved condition")
	}
}

func TestHandleCheckValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "values.yaml", `source: ecu-capture
conditions:
  "engineConfiguration->enableMaf": true
  knockDetected: false
  rpm: null
`)

	cfg := config.DefaultConfig()
	cfg.Values.File = path
	s := NewServer("test", cfg, nil)

	result, _, err := s.handleCheckValues(context.Background(), nil, CheckValuesInput{Format: "json"})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("handler returned tool error: %s", resultText(t, result))
	}

	var report valuesReport
	if err := json.Unmarshal([]byte(resultText(t, result)), &report); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if report.Source != "ecu-capture" {
		t.Errorf("source = %q, want ecu-capture", report.Source)
	}
	if len(report.Conditions) != 2 || !report.Conditions["engineConfiguration->enableMaf"] {
		t.Errorf("conditions = %v", report.Conditions)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "rpm" {
		t.Errorf("skipped = %v, want [rpm]", report.Skipped)
	}
}

func TestHandleCheckValues_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "values.json", `{"conditions": {"a": true}, "extra": 1}`)

	s := NewServer("test", nil, nil)
	for name, input := range map[string]CheckValuesInput{
		"unconfigured":   {},
		"schema failure": {ValuesFile: bad},
	} {
		t.Run(name, func(t *testing.T) {
			result, _, err := s.handleCheckValues(context.Background(), nil, input)
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if !result.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, result))
			}
		})
	}
}

func TestParsePrompt(t *testing.T) {
	pf, err := parsePrompt([]byte("---\ndescription: Explain a branch\narguments:\n  - name: file\n    required: true\n---\n\nWalk {{file}}.\n"))
	if err != nil {
		t.Fatalf("parsePrompt() error: %v", err)
	}
	if pf.Description != "Explain a branch" {
		t.Errorf("description = %q", pf.Description)
	}
	if pf.body != "Walk {{file}}.\n" {
		t.Errorf("body = %q", pf.body)
	}
	if len(pf.Arguments) != 1 || pf.Arguments[0].Name != "file" || !pf.Arguments[0].Required {
		t.Errorf("arguments = %+v", pf.Arguments)
	}

	pf, err = parsePrompt([]byte("no frontmatter"))
	if err != nil || pf.Description != "" || pf.body != "no frontmatter" {
		t.Errorf("parsePrompt without frontmatter = %+v, %v", pf, err)
	}

	for name, content := range map[string]string{
		"unterminated":     "---\ndescription: x\n",
		"bad yaml":         "---\ndescription: [x\n---\nbody",
		"unnamed argument": "---\narguments:\n  - description: x\n---\nbody",
	} {
		if _, err := parsePrompt([]byte(content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPromptRender(t *testing.T) {
	pf := &promptFile{
		Arguments: []promptArgument{
			{Name: "feature", Required: true},
			{Name: "path", Default: "."},
		},
		body: "Explain {{feature}} in {{path}}.",
	}

	got, err := pf.render(map[string]string{"feature": "launch control"})
	if err != nil {
		t.Fatalf("render() error: %v", err)
	}
	if got != "Explain launch control in .." {
		t.Errorf("render() = %q", got)
	}

	got, err = pf.render(map[string]string{"feature": "idle", "path": "firmware"})
	if err != nil || got != "Explain idle in firmware." {
		t.Errorf("render() = %q, %v", got, err)
	}

	if _, err := pf.render(nil); err == nil {
		t.Error("expected error for missing required argument")
	}
}

func TestEmbeddedPrompts(t *testing.T) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		t.Fatalf("failed to read embedded prompts: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no prompts embedded")
	}

	for _, entry := range entries {
		t.Run(entry.Name(), func(t *testing.T) {
			content, err := promptFiles.ReadFile("prompts/" + entry.Name())
			if err != nil {
				t.Fatalf("failed to read %s: %v", entry.Name(), err)
			}
			pf, err := parsePrompt(content)
			if err != nil {
				t.Fatalf("parsePrompt() error: %v", err)
			}
			if pf.Description == "" {
				t.Error("prompt description is empty")
			}
			if !strings.Contains(pf.body, "walk_source") {
				t.Error("prompt should direct the model to walk_source")
			}

			args := map[string]string{}
			for _, arg := range pf.Arguments {
				args[arg.Name] = "firmware/controllers"
			}
			result, err := pf.handler()(context.Background(), &mcp.GetPromptRequest{
				Params: &mcp.GetPromptParams{Arguments: args},
			})
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if len(result.Messages) != 1 || result.Messages[0].Role != "user" {
				t.Fatalf("unexpected prompt messages: %+v", result.Messages)
			}
			text := result.Messages[0].Content.(*mcp.TextContent).Text
			if strings.Contains(text, "{{") {
				t.Errorf("unsubstituted placeholder in %q", text)
			}
		})
	}
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	if err != nil {
		t.Fatalf("GenerateManifest() error: %v", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if m.Name != "io.github.panbanda/livewalk" {
		t.Errorf("name = %q", m.Name)
	}
	if m.Version != "0.0.0" {
		t.Errorf("version = %q, want 0.0.0", m.Version)
	}
	if len(m.Packages) != 1 || m.Packages[0].Transport.Type != "stdio" {
		t.Fatalf("packages = %+v", m.Packages)
	}

	pkg := m.Packages[0]
	if pkg.Identifier != "ghcr.io/panbanda/livewalk:0.0.0" {
		t.Errorf("identifier = %q", pkg.Identifier)
	}
	if len(pkg.PackageArguments) != 1 || pkg.PackageArguments[0].Value != "mcp" {
		t.Errorf("package arguments = %+v", pkg.PackageArguments)
	}
	if len(pkg.EnvironmentVariables) != 1 || pkg.EnvironmentVariables[0].Name != "LIVEWALK_CONFIG" {
		t.Errorf("environment = %+v", pkg.EnvironmentVariables)
	}

	data, err = GenerateManifest("1.4.0")
	if err != nil {
		t.Fatalf("GenerateManifest() error: %v", err)
	}
	if !strings.Contains(string(data), `"ghcr.io/panbanda/livewalk:1.4.0"`) {
		t.Errorf("versioned manifest = %s", data)
	}
}
