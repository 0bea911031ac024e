// Package mcptools exposes stack validation and in-memory generation as
// Model Context Protocol tools, so an agent can iterate on a stack without
// touching the disk.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/stackgen/api"
	"github.com/agentic-research/stackgen/internal/config"
	"github.com/agentic-research/stackgen/internal/generator"
)

// Tool names.
const (
	ToolValidateStack  = "validate_stack"
	ToolPreviewProject = "preview_project"
	ToolListOptions    = "list_options"
)

// Tools holds the generation options shared by every tool call. Each call
// runs its own generation; nothing is cached between calls.
type Tools struct {
	opts generator.Options
}

// New returns the tool set.
func New(opts generator.Options) *Tools {
	return &Tools{opts: opts}
}

// Server returns an MCP server with every tool registered.
func (t *Tools) Server(version string) *server.MCPServer {
	s := server.NewMCPServer("stackgen", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool(ToolValidateStack,
		mcp.WithDescription("Normalize a stack configuration and report every compatibility issue."),
		mcp.WithString("config", mcp.Required(), mcp.Description("Stack configuration as JSON (comments allowed)")),
	), t.ValidateStack)

	s.AddTool(mcp.NewTool(ToolPreviewProject,
		mcp.WithDescription("Generate a project in memory. Returns the file list, or one file's content when path is set."),
		mcp.WithString("config", mcp.Required(), mcp.Description("Stack configuration as JSON (comments allowed)")),
		mcp.WithString("path", mcp.Description("Project-relative file to return")),
	), t.PreviewProject)

	s.AddTool(mcp.NewTool(ToolListOptions,
		mcp.WithDescription("List configuration categories and their allowed values."),
		mcp.WithString("ecosystem", mcp.Description("Only categories of this ecosystem (typescript, rust, python, go)")),
	), t.ListOptions)

	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func (t *Tools) ServeStdio(version string) error {
	return server.ServeStdio(t.Server(version))
}

type validateOutput struct {
	Valid  bool        `json:"valid"`
	Issues []string    `json:"issues"`
	Plan   []string    `json:"plan"`
	Config *api.Config `json:"config"`
}

// ValidateStack handles validate_stack.
func (t *Tools) ValidateStack(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, errResult := parseConfig(req)
	if errResult != nil {
		return errResult, nil
	}
	res := generator.Check(cfg, t.opts)
	return jsonResult(validateOutput{
		Valid:  res.Success,
		Issues: nonNil(res.Issues),
		Plan:   res.Plan,
		Config: res.Config,
	})
}

type previewOutput struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
	Kind           string   `json:"kind,omitempty"`
	Issues         []string `json:"issues,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	FileCount      int      `json:"fileCount"`
	DirectoryCount int      `json:"directoryCount"`
	Files          []string `json:"files,omitempty"`
}

// PreviewProject handles preview_project.
func (t *Tools) PreviewProject(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, errResult := parseConfig(req)
	if errResult != nil {
		return errResult, nil
	}
	res := generator.Generate(cfg, t.opts)
	if !res.Success {
		return jsonResult(previewOutput{Error: res.Error, Kind: string(res.Kind), Issues: res.Issues, Warnings: res.Warnings})
	}
	if p := req.GetString("path", ""); p != "" {
		data, err := res.Tree.Read(p)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read %s: %v", p, err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
	return jsonResult(previewOutput{
		Success:        true,
		Warnings:       res.Warnings,
		FileCount:      res.Snapshot.FileCount,
		DirectoryCount: res.Snapshot.DirectoryCount,
		Files:          res.Tree.Files(),
	})
}

// ListOptions handles list_options.
func (t *Tools) ListOptions(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eco := api.Ecosystem(strings.ToLower(req.GetString("ecosystem", "")))
	var out []api.Category
	for _, cat := range api.Categories {
		if eco == "" || cat.Ecosystem == "" || cat.Ecosystem == eco {
			out = append(out, cat)
		}
	}
	return jsonResult(out)
}

func parseConfig(req mcp.CallToolRequest) (*api.Config, *mcp.CallToolResult) {
	raw, err := req.RequireString("config")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	cfg, err := config.Parse([]byte(raw), ".json")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return cfg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
