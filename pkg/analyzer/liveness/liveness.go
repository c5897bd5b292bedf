// Package liveness walks C and C++ files against sampled condition values and
// reports which code ran, which branches were skipped and which conditions
// could not be resolved.
package liveness

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/panbanda/livewalk/internal/fileproc"
	"github.com/panbanda/livewalk/pkg/analyzer"
	"github.com/panbanda/livewalk/pkg/paint"
	"github.com/panbanda/livewalk/pkg/parser"
	"github.com/panbanda/livewalk/pkg/source"
	"github.com/panbanda/livewalk/pkg/values"
	"github.com/panbanda/livewalk/pkg/walkthrough"
	"github.com/panbanda/livewalk/pkg/walkthrough/cpp"
)

// Analyzer overlays condition values onto source files.
type Analyzer struct {
	values      walkthrough.ValueSource
	palette     walkthrough.Palette
	configRoot  string
	known       values.KnownFields
	maxFileSize int64
	workers     int
	annotations bool
	logger      *slog.Logger
}

// Compile-time check that Analyzer implements FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithValues sets the condition values. Without it every condition is broken.
func WithValues(v walkthrough.ValueSource) Option {
	return func(a *Analyzer) {
		a.values = v
	}
}

// WithPalette sets the colours handed to painters.
func WithPalette(p walkthrough.Palette) Option {
	return func(a *Analyzer) {
		a.palette = p
	}
}

// WithConfigRoot sets the identifier whose "->" accesses are reported.
func WithConfigRoot(root string) Option {
	return func(a *Analyzer) {
		a.configRoot = root
	}
}

// WithKnownFields marks config fields outside the set as unknown.
func WithKnownFields(k values.KnownFields) Option {
	return func(a *Analyzer) {
		a.known = k
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithWorkers caps the number of files walked at once (0 = default).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithoutAnnotations drops per-range annotations from file results.
func WithoutAnnotations() Option {
	return func(a *Analyzer) {
		a.annotations = false
	}
}

// WithLogger traces each walk on the given logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates a new liveness analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		values:      values.Unknown{},
		palette:     walkthrough.DefaultPalette(),
		configRoot:  walkthrough.DefaultConfigRoot,
		annotations: true,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze walks every file. Files that cannot be read or parsed are left out
// of the result and returned together as a *fileproc.ProcessingErrors.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	tracker := analyzer.TrackerFromContext(ctx)
	tracker.Add(len(files))

	results, errs := fileproc.MapFilesN(ctx, files, fileproc.Options{Workers: a.workers},
		func(psr *parser.Parser, path string) (*FileResult, error) {
			fr, err := a.AnalyzeFile(psr, path)
			tracker.Done(path, err)
			return fr, err
		})

	analysis := a.Aggregate(results)
	if errs != nil {
		return analysis, errs
	}
	return analysis, nil
}

// AnalyzeFrom walks paths read from src, such as the tree at a git revision,
// the same way Analyze walks files on disk.
func (a *Analyzer) AnalyzeFrom(ctx context.Context, src source.ContentSource, paths []string) (*Analysis, error) {
	tracker := analyzer.TrackerFromContext(ctx)
	tracker.Add(len(paths))

	results, errs := fileproc.MapFilesN(ctx, paths, fileproc.Options{Workers: a.workers},
		func(psr *parser.Parser, path string) (*FileResult, error) {
			fr, err := a.readSource(psr, src, path)
			tracker.Done(path, err)
			return fr, err
		})

	analysis := a.Aggregate(results)
	if errs != nil {
		return analysis, errs
	}
	return analysis, nil
}

func (a *Analyzer) readSource(psr *parser.Parser, src source.ContentSource, path string) (*FileResult, error) {
	content, err := src.Read(path)
	if err != nil {
		return nil, err
	}
	if a.maxFileSize > 0 && int64(len(content)) > a.maxFileSize {
		return nil, fmt.Errorf("%w: %s (%d bytes)", parser.ErrFileTooLarge, path, len(content))
	}
	return a.AnalyzeSource(psr, path, content, parser.LangUnknown)
}

// AnalyzeFile parses and walks one file.
func (a *Analyzer) AnalyzeFile(psr *parser.Parser, path string) (*FileResult, error) {
	result, err := psr.ParseFileWithLimit(path, a.maxFileSize)
	if err != nil {
		return nil, err
	}
	return a.walk(result), nil
}

// AnalyzeSource walks source that did not come from disk, such as a file read
// at a git revision or code sent over MCP.
func (a *Analyzer) AnalyzeSource(psr *parser.Parser, path string, source []byte, lang parser.Language) (*FileResult, error) {
	if lang == parser.LangUnknown {
		lang = parser.DetectLanguage(path)
	}
	result, err := psr.Parse(source, lang, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a.walk(result), nil
}

func (a *Analyzer) walk(result *parser.ParseResult) *FileResult {
	rec := paint.NewRecorder(result.Source)
	walked := cpp.Walk(result, a.values, rec,
		walkthrough.WithPalette(a.palette),
		walkthrough.WithConfigRoot(a.configRoot),
		walkthrough.WithLogger(a.logger.With("file", result.Path)),
	)

	fr := &FileResult{
		Path:             result.Path,
		Language:         string(result.Language),
		Functions:        len(parser.GetFunctions(result)),
		ConfigFields:     make([]ConfigField, 0, len(walked.ConfigFields)),
		BrokenConditions: walked.BrokenConditions,
		Summary: FileSummary{
			Ranges: make(map[string]int),
			Lines:  make(map[string]int),
		},
		recorder: rec,
	}
	if fr.BrokenConditions == nil {
		fr.BrokenConditions = []string{}
	}

	for _, f := range walked.ConfigFields {
		fr.ConfigFields = append(fr.ConfigFields, ConfigField{
			Name:   f.Text,
			Line:   f.Line,
			Column: f.Column,
			Known:  a.known.Contains(f.Text),
		})
	}

	for role, n := range rec.Counts() {
		fr.Summary.Ranges[role.String()] = n
	}
	for _, role := range walkthrough.Roles() {
		if n := rec.Lines(role).GetCardinality(); n > 0 {
			fr.Summary.Lines[role.String()] = int(n)
		}
	}

	if a.annotations {
		fr.Annotations = rec.Annotations()
	}

	return fr
}

// Aggregate combines file results, in the given order, into an Analysis.
func (a *Analyzer) Aggregate(results []*FileResult) *Analysis {
	analysis := &Analysis{
		Files:      make([]FileResult, 0, len(results)),
		Summary:    NewSummary(),
		AnalyzedAt: time.Now(),
	}

	broken := make(map[string]struct{})
	fields := make(map[string]struct{})
	unknown := make(map[string]struct{})

	for _, fr := range results {
		analysis.Files = append(analysis.Files, *fr)
		analysis.Summary.TotalFiles++
		analysis.Summary.TotalFunctions += fr.Functions

		for role, n := range fr.Summary.Ranges {
			analysis.Summary.Ranges[role] += n
		}
		for role, n := range fr.Summary.Lines {
			analysis.Summary.Lines[role] += n
		}
		for _, c := range fr.BrokenConditions {
			broken[c] = struct{}{}
		}
		for _, f := range fr.ConfigFields {
			fields[f.Name] = struct{}{}
			if !f.Known {
				unknown[f.Name] = struct{}{}
			}
		}
	}

	analysis.Summary.BrokenConditions = sortedKeys(broken)
	analysis.Summary.ConfigFields = sortedKeys(fields)
	if len(unknown) > 0 {
		analysis.Summary.UnknownFields = sortedKeys(unknown)
	}

	return analysis
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close releases any resources held by the analyzer.
func (a *Analyzer) Close() {}
