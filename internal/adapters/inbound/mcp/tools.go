package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/config"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/scanner"
	"github.com/openkraft/kraftlint/internal/application"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/rules"
)

// handlers serves tool and resource requests for one project.
type handlers struct {
	projectPath string
	loader      domain.RulesetLoader
	logger      *slog.Logger
}

// registerTools registers all kraftlint MCP tools on the given server.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcplib.NewTool("kraftlint_check",
			mcplib.WithDescription("Check files against the ruleset and return the report as JSON"),
			mcplib.WithString("paths",
				mcplib.Description("Comma-separated file or directory paths relative to the project root (default: the whole project)"),
			),
			mcplib.WithString("config",
				mcplib.Description("Ruleset file relative to the project root (default: "+config.DefaultFileName+")"),
			),
		),
		h.handleCheck,
	)

	s.AddTool(
		mcplib.NewTool("kraftlint_rules",
			mcplib.WithDescription("Returns the rule catalog with the severity and state of each rule in the active ruleset"),
			mcplib.WithString("config",
				mcplib.Description("Ruleset file relative to the project root (default: "+config.DefaultFileName+")"),
			),
		),
		h.handleRules,
	)
}

func (h *handlers) handleCheck(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	rs, err := h.loadRuleset(request.GetString("config", ""))
	if err != nil {
		return errorResult(err.Error()), nil
	}

	roots := h.resolvePaths(splitAndTrim(request.GetString("paths", "")))
	if len(roots) == 0 {
		roots = []string{h.projectPath}
	}

	svc := application.NewCheckService(scanner.New(), gitinfo.New(), h.logger)
	report, err := svc.Run(ctx, roots, rs, application.RunOptions{})
	if err != nil {
		return errorResult(fmt.Sprintf("check failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *handlers) handleRules(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	rs, err := h.loadRuleset(request.GetString("config", ""))
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(catalog(rs))
}

// loadRuleset resolves the ruleset the same way the check command does,
// with relative paths anchored at the project root.
func (h *handlers) loadRuleset(configPath string) (*domain.Ruleset, error) {
	path, explicit := config.Resolve(configPath, os.Getenv(config.EnvVar))
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.projectPath, path)
	}
	return h.loader.Load(path, explicit)
}

func (h *handlers) resolvePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(h.projectPath, p)
		}
		out = append(out, p)
	}
	return out
}

// ruleInfo is one catalog entry as exposed over MCP.
type ruleInfo struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    domain.Category `json:"category"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Enabled     bool            `json:"enabled"`
	Params      domain.Params   `json:"params,omitempty"`
}

func catalog(rs *domain.Ruleset) []ruleInfo {
	defs := rules.All()
	out := make([]ruleInfo, 0, len(defs))
	for _, def := range defs {
		info := ruleInfo{
			ID:          def.ID,
			Name:        def.Name,
			Category:    def.Category,
			Description: def.Description,
			Severity:    def.DefaultSeverity,
		}
		if r, ok := rs.Rule(def.ID); ok {
			info.Severity = r.Severity
			info.Enabled = r.Enabled
			info.Params = r.Params
		}
		out = append(out, info)
	}
	return out
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// jsonResult marshals v to indented JSON and wraps it in a text result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
