package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const rulesURI = "kraftlint://rules"

// registerResources registers all kraftlint MCP resources on the given server.
func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResource(
		mcplib.NewResource(
			rulesURI,
			"Rules",
			mcplib.WithResourceDescription("Rule catalog and the active ruleset of the project"),
			mcplib.WithMIMEType("application/json"),
		),
		h.handleRulesResource,
	)
}

func (h *handlers) handleRulesResource(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	rs, err := h.loadRuleset("")
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(catalog(rs), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling rules: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
