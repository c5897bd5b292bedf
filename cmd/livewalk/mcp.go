package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/livewalk/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that lets LLMs walk firmware
source against sampled condition values.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "livewalk": {
        "command": "livewalk",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - walk_source     Paint files or inline code and report broken conditions and config fields
  - check_values    Validate a condition values document`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest (server.json)",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return mcpserver.NewServer(version, cfg, logger(c)).Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
