package mcpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/livewalk/internal/fileproc"
	"github.com/panbanda/livewalk/internal/output"
	"github.com/panbanda/livewalk/internal/scanner"
	"github.com/panbanda/livewalk/internal/vcs"
	"github.com/panbanda/livewalk/pkg/analyzer/liveness"
	"github.com/panbanda/livewalk/pkg/parser"
	"github.com/panbanda/livewalk/pkg/source"
	"github.com/panbanda/livewalk/pkg/values"
	"github.com/panbanda/livewalk/pkg/walkthrough"
)

// WalkSourceInput is the input of the walk_source tool.
type WalkSourceInput struct {
	Paths              []string        `json:"paths,omitempty" jsonschema:"Files or directories to walk. Defaults to the current directory when code is empty."`
	Code               string          `json:"code,omitempty" jsonschema:"Inline C or C++ source to walk instead of paths."`
	Language           string          `json:"language,omitempty" jsonschema:"Language of code: c or cpp. Default cpp."`
	Values             map[string]bool `json:"values,omitempty" jsonschema:"Condition values keyed by condition text without whitespace."`
	ValuesFile         string          `json:"values_file,omitempty" jsonschema:"Path to a TOML, YAML or JSON values document. Defaults to the configured values file."`
	Rev                string          `json:"rev,omitempty" jsonschema:"Git revision to read paths at instead of the working tree."`
	IncludeAnnotations bool            `json:"include_annotations,omitempty" jsonschema:"Include every painted range in the result."`
	Format             string          `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// CheckValuesInput is the input of the check_values tool.
type CheckValuesInput struct {
	ValuesFile string `json:"values_file,omitempty" jsonschema:"Path to the values document. Defaults to the configured values file."`
	Format     string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// valuesReport is the check_values result.
type valuesReport struct {
	Path       string          `json:"path" toon:"path"`
	Source     string          `json:"source,omitempty" toon:"source,omitempty"`
	Conditions map[string]bool `json:"conditions" toon:"conditions"`
	Skipped    []string        `json:"skipped,omitempty" toon:"skipped,omitempty"`
}

func getFormat(format string) output.Format {
	switch format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// valueSource layers inline values over the values file.
func (s *Server) valueSource(inline map[string]bool, file string) (walkthrough.ValueSource, error) {
	if file == "" {
		file = s.cfg.Values.File
	}
	var opts []values.LoadOption
	if s.cfg.Values.Strict {
		opts = append(opts, values.Strict())
	}
	return values.Layered(inline, file, opts...)
}

func (s *Server) newAnalyzer(src walkthrough.ValueSource, annotations bool) (*liveness.Analyzer, error) {
	opts, err := liveness.ConfigOptions(s.cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, liveness.WithValues(src), liveness.WithLogger(s.logger))
	if !annotations {
		opts = append(opts, liveness.WithoutAnnotations())
	}
	return liveness.New(opts...), nil
}

func (s *Server) keep(path string) bool {
	return parser.DetectLanguage(path) != parser.LangUnknown && !s.cfg.ShouldExclude(path)
}

// Tool handlers

func (s *Server) handleWalkSource(ctx context.Context, req *mcp.CallToolRequest, input WalkSourceInput) (*mcp.CallToolResult, any, error) {
	format := getFormat(input.Format)

	palette, err := s.cfg.ColorPalette()
	if err != nil {
		return toolError(err.Error())
	}
	src, err := s.valueSource(input.Values, input.ValuesFile)
	if err != nil {
		return toolError(err.Error())
	}
	a, err := s.newAnalyzer(src, input.IncludeAnnotations)
	if err != nil {
		return toolError(err.Error())
	}
	defer a.Close()

	var analysis *liveness.Analysis
	switch {
	case input.Code != "":
		analysis, err = s.walkCode(a, input.Code, input.Language)
	case input.Rev != "":
		analysis, err = s.walkRevision(ctx, a, input.Rev, paths(input.Paths))
	default:
		analysis, err = s.walkPaths(ctx, a, paths(input.Paths))
	}

	var perrs *fileproc.ProcessingErrors
	if errors.As(err, &perrs) && analysis != nil && len(analysis.Files) > 0 {
		s.logger.Warn("some files could not be walked", "errors", len(perrs.Errors))
	} else if err != nil {
		return toolError(err.Error())
	}

	return toolResult(output.NewLivenessReport(analysis, palette, false, false), format)
}

func (s *Server) walkCode(a *liveness.Analyzer, code, language string) (*liveness.Analysis, error) {
	lang := parser.LangCPP
	name := "inline.cpp"
	switch strings.ToLower(language) {
	case "", "cpp", "c++", "cxx":
	case "c":
		lang, name = parser.LangC, "inline.c"
	default:
		return nil, fmt.Errorf("%w: %s", parser.ErrUnsupportedLanguage, language)
	}

	psr := parser.New()
	defer psr.Close()

	fr, err := a.AnalyzeSource(psr, name, []byte(code), lang)
	if err != nil {
		return nil, err
	}
	return a.Aggregate([]*liveness.FileResult{fr}), nil
}

func (s *Server) walkRevision(ctx context.Context, a *liveness.Analyzer, rev string, paths []string) (*liveness.Analysis, error) {
	repo, err := vcs.Open(paths[0])
	if err != nil {
		return nil, err
	}
	files, err := repo.ListPaths(rev, paths, s.keep)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no source files found")
	}

	src, err := source.NewRevision(repo, rev)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFrom(ctx, src, files)
}

func (s *Server) walkPaths(ctx context.Context, a *liveness.Analyzer, paths []string) (*liveness.Analysis, error) {
	files, err := scanner.NewScanner(s.cfg).Expand(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no source files found")
	}
	return a.Analyze(ctx, files)
}

func (s *Server) handleCheckValues(ctx context.Context, req *mcp.CallToolRequest, input CheckValuesInput) (*mcp.CallToolResult, any, error) {
	path := input.ValuesFile
	if path == "" {
		path = s.cfg.Values.File
	}
	if path == "" {
		return toolError("no values file given and none configured")
	}

	f, err := values.LoadFile(path, values.Strict())
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(valuesReport{
		Path:       f.Path,
		Source:     f.Source,
		Conditions: f.Conditions(),
		Skipped:    f.Skipped(),
	}, getFormat(input.Format))
}

func paths(in []string) []string {
	if len(in) == 0 {
		return []string{"."}
	}
	return in
}
