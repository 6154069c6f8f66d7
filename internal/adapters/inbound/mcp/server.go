package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
)

// NewKraftlintMCPServer creates a new MCP server with the kraftlint tools and
// resources registered. projectPath is the directory that relative paths in
// tool calls resolve against.
func NewKraftlintMCPServer(projectPath string, logger *slog.Logger) *server.MCPServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := server.NewMCPServer(
		"kraftlint",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	h := &handlers{
		projectPath: projectPath,
		loader:      config.New(),
		logger:      logger,
	}
	registerTools(s, h)
	registerResources(s, h)

	return s
}
