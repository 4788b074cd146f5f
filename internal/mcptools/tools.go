// Package mcptools exposes skill gap computation as MCP tools.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/victorzhu443/firstplay-backend/internal/skills"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// ServerName identifies this server to MCP clients.
const ServerName = "coach_agent"

// NewServer returns an MCP server with all tools registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)
	RegisterTools(server)
	return server
}

// RegisterTools adds the coaching tools to server.
func RegisterTools(server *mcp.Server) {
	registerComputeGap(server)
}

func registerComputeGap(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compute_gap",
		Description: "Compare a candidate's skills against a job's required and preferred skills. Labels are normalized (case, whitespace and common aliases such as javascript/js) before matching. Returns overlapping skills and the required and preferred skills the candidate is missing.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input types.GapRequest) (*mcp.CallToolResult, skills.GapResult, error) {
		return nil, skills.ComputeGap(input.CandidateSkills, input.RequiredSkills, input.PreferredSkills), nil
	})
}

// ServeStdio serves the tools over stdin/stdout until ctx is cancelled or the client disconnects.
func ServeStdio(ctx context.Context, version string) error {
	return NewServer(version).Run(ctx, &mcp.StdioTransport{})
}
