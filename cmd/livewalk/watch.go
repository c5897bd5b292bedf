package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/livewalk/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-walk files when they or the values document change",
		ArgsUsage: "[path]",
		Flags: append(walkFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Debounce duration (default from watch.debounce_ms)",
			},
		),
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	root, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if info, err := os.Stat(root); err != nil {
		return err
	} else if !info.IsDir() {
		root = filepath.Dir(root)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyWalkFlags(c, cfg)

	debounce := c.Duration("debounce")
	if debounce == 0 {
		debounce = time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	}

	watcher, err := watch.NewWatcher(root, cfg, debounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	valuesPath := ""
	if cfg.Values.File != "" {
		if valuesPath, err = filepath.Abs(cfg.Values.File); err != nil {
			return err
		}
		if err := watcher.WatchFile(valuesPath); err != nil {
			return err
		}
	}

	// Values are reloaded on every change so edits to the values document
	// take effect without a restart.
	watcher.SetCallback(func(changed []string) {
		a, err := newAnalyzer(c, cfg)
		if err != nil {
			color.Red("Error: %v", err)
			return
		}
		defer a.Close()

		target := changed
		if valuesPath != "" && slices.Contains(changed, valuesPath) {
			target = []string{root}
		}

		analysis, err := walkFiles(c.Context, a, cfg, target)
		if err != nil {
			color.Red("Error: %v", err)
			return
		}
		if analysis == nil {
			return
		}
		if err := writeReport(c, cfg, analysis); err != nil {
			color.Red("Error: %v", err)
		}
	})

	err = watcher.Start(c.Context)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nStopping watch...")
		return nil
	}
	return err
}
