package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/livewalk/internal/fileproc"
	"github.com/panbanda/livewalk/internal/output"
	"github.com/panbanda/livewalk/internal/progress"
	"github.com/panbanda/livewalk/internal/report"
	"github.com/panbanda/livewalk/internal/scanner"
	"github.com/panbanda/livewalk/internal/vcs"
	"github.com/panbanda/livewalk/pkg/analyzer"
	"github.com/panbanda/livewalk/pkg/analyzer/liveness"
	"github.com/panbanda/livewalk/pkg/config"
	"github.com/panbanda/livewalk/pkg/parser"
	"github.com/panbanda/livewalk/pkg/source"
	"github.com/panbanda/livewalk/pkg/values"
)

// walkFlags are shared by walk and watch.
func walkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "values",
			Usage: "Condition values document (TOML, YAML, or JSON); overrides values.file",
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Inline condition value as condition=true|false; wins over the values file",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Validate the values document against its schema",
		},
		&cli.StringFlag{
			Name:  "known-fields",
			Usage: "YAML list of configuration fields; others are reported as unknown",
		},
		&cli.StringFlag{
			Name:  "config-root",
			Usage: "Identifier whose -> accesses are reported (default engineConfiguration)",
		},
		&cli.BoolFlag{
			Name:  "no-source",
			Usage: "Omit the annotated source from text and markdown output",
		},
		&cli.BoolFlag{
			Name:  "annotations",
			Usage: "Include every painted range in json and toon output",
		},
	}
}

func walkCmd() *cli.Command {
	return &cli.Command{
		Name:      "walk",
		Usage:     "Paint source files with the liveness of every branch",
		ArgsUsage: "[path...]",
		Flags: append(walkFlags(),
			&cli.StringFlag{
				Name:  "rev",
				Usage: "Read files at a git revision instead of the working tree",
			},
			&cli.BoolFlag{
				Name:  "fail-on-broken",
				Usage: "Exit with status 2 when any condition has no value",
			},
			&cli.StringFlag{
				Name:  "html",
				Usage: "Also write a painted HTML report to this file",
			},
		),
		Action: runWalkCmd,
	}
}

// applyWalkFlags folds the walk flags into cfg.
func applyWalkFlags(c *cli.Context, cfg *config.Config) {
	if v := c.String("values"); v != "" {
		cfg.Values.File = v
	}
	if c.Bool("strict") {
		cfg.Values.Strict = true
	}
	if k := c.String("known-fields"); k != "" {
		cfg.Scan.KnownFields = k
	}
	if r := c.String("config-root"); r != "" {
		cfg.Scan.Root = r
	}
	if c.Bool("no-source") {
		cfg.Output.Source = false
	}
}

// newAnalyzer builds a liveness analyzer from cfg and the --set values.
func newAnalyzer(c *cli.Context, cfg *config.Config) (*liveness.Analyzer, error) {
	inline, err := values.ParseAssignments(c.StringSlice("set"))
	if err != nil {
		return nil, err
	}

	var loadOpts []values.LoadOption
	if cfg.Values.Strict {
		loadOpts = append(loadOpts, values.Strict())
	}
	src, err := values.Layered(inline, cfg.Values.File, loadOpts...)
	if err != nil {
		return nil, err
	}

	opts, err := liveness.ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, liveness.WithValues(src), liveness.WithLogger(logger(c)))
	if !c.Bool("annotations") {
		opts = append(opts, liveness.WithoutAnnotations())
	}
	return liveness.New(opts...), nil
}

func runWalkCmd(c *cli.Context) error {
	paths := getPaths(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyWalkFlags(c, cfg)

	a, err := newAnalyzer(c, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var analysis *liveness.Analysis
	if rev := c.String("rev"); rev != "" {
		analysis, err = walkRevision(c.Context, a, cfg, rev, paths)
	} else {
		analysis, err = walkFiles(c.Context, a, cfg, paths)
	}
	if err != nil {
		return err
	}
	if analysis == nil {
		color.Yellow("No source files found")
		return nil
	}

	if err := writeReport(c, cfg, analysis); err != nil {
		return err
	}
	if path := c.String("html"); path != "" {
		if err := writeHTMLReport(c, cfg, analysis, path); err != nil {
			return err
		}
	}

	if c.Bool("fail-on-broken") && len(analysis.Summary.BrokenConditions) > 0 {
		return cli.Exit(fmt.Sprintf("%d conditions have no value", len(analysis.Summary.BrokenConditions)), 2)
	}
	return nil
}

// walkFiles walks the working tree. It returns nil when no source files match.
func walkFiles(ctx context.Context, a *liveness.Analyzer, cfg *config.Config, paths []string) (*liveness.Analysis, error) {
	files, err := scanner.NewScanner(cfg).Expand(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	if len(files) == 0 {
		return nil, nil
	}

	tracker := progress.NewTracker("Walking...", len(files))
	analysis, err := a.Analyze(analyzer.WithTracker(ctx, analyzer.NewTracker(tracker.OnFile)), files)
	return finish(tracker, analysis, err)
}

// walkRevision walks paths as they were at rev.
func walkRevision(ctx context.Context, a *liveness.Analyzer, cfg *config.Config, rev string, paths []string) (*liveness.Analysis, error) {
	repo, err := vcs.Open(paths[0])
	if err != nil {
		return nil, err
	}

	files, err := repo.ListPaths(rev, paths, func(path string) bool {
		return parser.DetectLanguage(path) != parser.LangUnknown && !cfg.ShouldExclude(path)
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	src, err := source.NewRevision(repo, rev)
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker(fmt.Sprintf("Walking %s...", rev), len(files))
	analysis, err := a.AnalyzeFrom(analyzer.WithTracker(ctx, analyzer.NewTracker(tracker.OnFile)), src, files)
	return finish(tracker, analysis, err)
}

// finish closes the progress bar. Per-file failures are reported as warnings
// and the partial analysis is kept.
func finish(tracker *progress.Tracker, analysis *liveness.Analysis, err error) (*liveness.Analysis, error) {
	var perrs *fileproc.ProcessingErrors
	switch {
	case errors.As(err, &perrs):
		for _, pe := range perrs.Errors {
			tracker.Warn("Skipped %s: %v", pe.Path, pe.Err)
		}
		tracker.FinishSuccess()
		return analysis, nil
	case err != nil:
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()
	return analysis, nil
}

func writeReport(c *cli.Context, cfg *config.Config, analysis *liveness.Analysis) error {
	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	palette, err := cfg.ColorPalette()
	if err != nil {
		return err
	}
	return formatter.Output(output.NewLivenessReport(analysis, palette, cfg.Output.Source, cfg.Output.LineNumbers))
}

func writeHTMLReport(c *cli.Context, cfg *config.Config, analysis *liveness.Analysis, path string) error {
	palette, err := cfg.ColorPalette()
	if err != nil {
		return err
	}
	r, err := report.NewRenderer(palette)
	if err != nil {
		return err
	}

	meta := report.Metadata{Values: cfg.Values.File, Version: version}
	if rev := c.String("rev"); rev != "" {
		meta.Title = "Branch liveness at " + rev
	}
	if err := r.RenderToFile(path, analysis, meta); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	logger(c).Info("wrote HTML report", "path", path)
	return nil
}
