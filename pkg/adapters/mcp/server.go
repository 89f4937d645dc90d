// Package mcp exposes the assistant and the diff engine as MCP tools so
// editor-side agents can drive them without going through HTTP.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/latticelabs/lattice"
	"github.com/latticelabs/lattice/internal/flow"
	"github.com/latticelabs/lattice/pkg/diff"
	"github.com/latticelabs/lattice/pkg/domain"
)

// ApplyResponse is the structured result of the apply_diff tool.
type ApplyResponse struct {
	Scene   string `json:"scene" jsonschema_description:"The patched scene document"`
	Hunks   int    `json:"hunks" jsonschema_description:"Number of hunks applied"`
	Added   int    `json:"lines_added" jsonschema_description:"Lines added by the patch"`
	Removed int    `json:"lines_removed" jsonschema_description:"Lines removed by the patch"`
}

// RunResponse is the structured result of the run_assistant tool.
type RunResponse struct {
	Intent string         `json:"intent" jsonschema_description:"The classified intent of the request"`
	Scene  string         `json:"scene,omitempty" jsonschema_description:"The patched scene, when the run modified it"`
	Events []domain.Event `json:"events" jsonschema_description:"The full progress event log of the run"`
}

// Server wraps the assistant flow and exposes it as an MCP server.
type Server struct {
	flow         *flow.Flow
	defaultModel string
	mcpServer    *server.MCPServer
}

type Option func(*Server)

// WithDefaultModel sets the model used when a tool call omits one.
func WithDefaultModel(model string) Option {
	return func(s *Server) {
		s.defaultModel = model
	}
}

// NewServer creates an MCP server driving the given flow.
func NewServer(f *flow.Flow, opts ...Option) *Server {
	s := &Server{
		flow:      f,
		mcpServer: server.NewMCPServer("lattice-mcp", strings.TrimSpace(lattice.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: apply_diff
	applyTool := mcp.NewTool("apply_diff",
		mcp.WithDescription("Apply a SEARCH/REPLACE diff to a scene document. Either all hunks apply or the document is left untouched."),
		mcp.WithString("scene", mcp.Required(), mcp.Description("The scene document to patch")),
		mcp.WithString("diff", mcp.Required(), mcp.Description("SEARCH/REPLACE blocks, optionally inside a fenced code block")),
		mcp.WithOutputSchema[ApplyResponse](),
	)
	s.mcpServer.AddTool(applyTool, mcp.NewStructuredToolHandler(s.handleApplyDiff))

	// TOOL: run_assistant
	runTool := mcp.NewTool("run_assistant",
		mcp.WithDescription("Run the scene assistant flow synchronously and return the full event log."),
		mcp.WithString("user_query", mcp.Required(), mcp.Description("The user's request")),
		mcp.WithString("model", mcp.Description("Model identifier (optional, defaults to the configured model)")),
		mcp.WithString("scene_data", mcp.Description("Current scene document (required for modifications)")),
		mcp.WithString("catalog", mcp.Description("Available node types")),
		mcp.WithString("scene_generation_guidelines", mcp.Description("Authoring guidelines for the scene")),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunAssistant))
}

func (s *Server) handleApplyDiff(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ApplyResponse, error) {
	scene, _ := args["scene"].(string)
	diffText, _ := args["diff"].(string)

	hunks, err := diff.Parse(diff.StripFences(diffText))
	if err != nil {
		return ApplyResponse{}, fmt.Errorf("invalid diff: %w", err)
	}

	patched, err := diff.ApplyHunks(scene, hunks)
	if err != nil {
		return ApplyResponse{}, fmt.Errorf("apply failed: %w", err)
	}

	summary := diff.Summarize(scene, patched)
	return ApplyResponse{
		Scene:   patched,
		Hunks:   len(hunks),
		Added:   summary.Added,
		Removed: summary.Removed,
	}, nil
}

func (s *Server) handleRunAssistant(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	query, _ := args["user_query"].(string)
	model, _ := args["model"].(string)
	if model == "" {
		model = s.defaultModel
	}

	metadata := make(map[string]any)
	for _, key := range []string{"scene_data", "catalog", "scene_generation_guidelines"} {
		if val, ok := args[key].(string); ok && val != "" {
			metadata[key] = val
		}
	}

	stream := flow.NewStream()
	shared := &domain.Shared{
		Model:     model,
		UserQuery: query,
		Metadata:  metadata,
		Events:    stream,
	}

	runErr := s.flow.Run(ctx, shared)
	stream.Close()
	events := stream.Drain(context.Background())

	if runErr != nil {
		return RunResponse{}, fmt.Errorf("assistant run failed: %w", runErr)
	}

	return RunResponse{
		Intent: string(shared.Intent),
		Scene:  shared.Scene,
		Events: events,
	}, nil
}
