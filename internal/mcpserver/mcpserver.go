package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/livewalk/pkg/config"
)

// Server wraps the MCP server and registers the livewalk tools.
type Server struct {
	server *mcp.Server
	cfg    *config.Config
	logger *slog.Logger
}

// NewServer creates a new MCP server with all livewalk tools registered.
// A nil cfg uses the defaults.
func NewServer(version string, cfg *config.Config, logger *slog.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "livewalk",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, cfg: cfg, logger: logger}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds the livewalk tools to the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "walk_source",
		Description: describeWalkSource(),
	}, s.handleWalkSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_values",
		Description: describeCheckValues(),
	}, s.handleCheckValues)
}
