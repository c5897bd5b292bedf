package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/livewalk/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a livewalk configuration file for syntax errors and invalid values.

Examples:
  livewalk config validate                      # Validates default config locations
  livewalk -c livewalk.toml config validate     # Validates specific file`,
				Action: runConfigValidateCmd,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  livewalk config show                          # Show effective config
  livewalk -c livewalk.toml config show         # Show config from specific file`,
				Action: runConfigShowCmd,
			},
		},
	}
}

// configSource returns the file a command's config came from, or "".
func configSource(c *cli.Context) string {
	if path := c.String("config"); path != "" {
		return path
	}
	return config.Find()
}

func runConfigValidateCmd(c *cli.Context) error {
	source := configSource(c)
	if source == "" {
		color.Yellow("No config file found. Default configuration is valid.")
		return nil
	}

	cfg, err := config.Load(source)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return err
	}

	color.Green("Configuration valid: %s", source)
	return nil
}

func runConfigShowCmd(c *cli.Context) error {
	source := configSource(c)

	cfg := config.DefaultConfig()
	if source != "" {
		loaded, err := config.Load(source)
		if err != nil {
			return err
		}
		cfg = loaded
		fmt.Fprintf(c.App.Writer, "# Configuration from: %s\n\n", source)
	} else {
		fmt.Fprintln(c.App.Writer, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(c.App.Writer, string(content))
	return nil
}
