package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/livewalk/internal/output"
	"github.com/panbanda/livewalk/pkg/values"
)

func valuesCmd() *cli.Command {
	return &cli.Command{
		Name:  "values",
		Usage: "Condition values document commands",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Validate a values document and list its conditions",
				ArgsUsage: "[file]",
				Action:    runValuesCheckCmd,
			},
		},
	}
}

func runValuesCheckCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	path := c.Args().First()
	if path == "" {
		path = cfg.Values.File
	}
	if path == "" {
		return fmt.Errorf("no values file given and values.file is not configured")
	}

	f, err := values.LoadFile(path, values.Strict())
	if err != nil {
		return err
	}

	conditions := f.Conditions()
	rows := make([][]string, 0, len(conditions))
	for _, k := range conditions.Keys() {
		rows = append(rows, []string{k, fmt.Sprintf("%t", conditions[k])})
	}
	for _, k := range f.Skipped() {
		rows = append(rows, []string{k, "(skipped)"})
	}

	footer := []string{fmt.Sprintf("%d conditions", len(conditions)), fmt.Sprintf("%d skipped", len(f.Skipped()))}
	table := output.NewTable("Values: "+f.Path, []string{"Condition", "Value"}, rows, footer, struct {
		Path       string     `json:"path" toon:"path"`
		Source     string     `json:"source,omitempty" toon:"source,omitempty"`
		Conditions values.Map `json:"conditions" toon:"conditions"`
		Skipped    []string   `json:"skipped,omitempty" toon:"skipped,omitempty"`
	}{f.Path, f.Source, conditions, f.Skipped()})

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(table); err != nil {
		return err
	}
	if f.Source != "" && formatter.Format() == output.FormatText {
		color.New(color.Faint).Fprintf(formatter.Writer(), "Captured from %s\n", f.Source)
	}
	return nil
}
