// Package toolserver exposes the usecase.Toolset as MCP tools served over
// a process's standard streams.
package toolserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/naka-gawa/github-mcp/internal/domain"
	"github.com/naka-gawa/github-mcp/internal/usecase"
)

// Name is the server name announced to MCP clients.
const Name = "github-mcp"

// Server binds the toolset to an MCP server.
type Server struct {
	toolset *usecase.Toolset
	logger  *log.Logger
	mcp     *server.MCPServer
}

// New registers the four tools. A nil toolset is allowed; every call then
// fails with a precondition error.
func New(toolset *usecase.Toolset, version string, logger *log.Logger) *Server {
	s := &Server{
		toolset: toolset,
		logger:  logger,
	}
	s.mcp = server.NewMCPServer(Name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.mcp.AddTools(s.tools()...)
	return s
}

// Serve reads JSON-RPC requests from in and writes responses to out until
// ctx is cancelled or in is exhausted.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger)
	s.logger.Println("MCP server running on stdio")
	return stdio.Listen(ctx, in, out)
}

func (s *Server) handleGetMyRepos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := limitArg(req.GetArguments())
	if err != nil {
		return s.toolError(ToolGetMyRepos, err), nil
	}
	result, err := s.toolset.GetMyRepos(ctx, limit)
	if err != nil {
		return s.toolError(ToolGetMyRepos, err), nil
	}
	return s.toolResult(ToolGetMyRepos, result), nil
}

func (s *Server) handleGetRepoDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoName, err := stringArg(req.GetArguments(), "repo_name")
	if err != nil {
		return s.toolError(ToolGetRepoDetails, err), nil
	}
	result, err := s.toolset.GetRepoDetails(ctx, repoName)
	if err != nil {
		return s.toolError(ToolGetRepoDetails, err), nil
	}
	return s.toolResult(ToolGetRepoDetails, result), nil
}

func (s *Server) handleSearchMyCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, err := stringArg(args, "query")
	if err != nil {
		return s.toolError(ToolSearchMyCode, err), nil
	}
	limit, err := limitArg(args)
	if err != nil {
		return s.toolError(ToolSearchMyCode, err), nil
	}
	result, err := s.toolset.SearchMyCode(ctx, query, limit)
	if err != nil {
		return s.toolError(ToolSearchMyCode, err), nil
	}
	return s.toolResult(ToolSearchMyCode, result), nil
}

func (s *Server) handleGetRecentActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := limitArg(req.GetArguments())
	if err != nil {
		return s.toolError(ToolGetRecentActivity, err), nil
	}
	result, err := s.toolset.GetRecentActivity(ctx, limit)
	if err != nil {
		return s.toolError(ToolGetRecentActivity, err), nil
	}
	return s.toolResult(ToolGetRecentActivity, result), nil
}

func (s *Server) toolResult(tool string, result any) *mcp.CallToolResult {
	text, err := usecase.Render(result)
	if err != nil {
		return s.toolError(tool, err)
	}
	return mcp.NewToolResultText(text)
}

// toolError logs err and turns it into an error result for the caller.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Printf("Error calling tool %s (%s): %v", tool, domain.KindOf(err), err)
	return mcp.NewToolResultError("Error: " + err.Error())
}

// limitArg reads the optional "limit" argument. JSON numbers arrive as
// float64; fractional values are rejected rather than truncated.
func limitArg(args map[string]any) (int, error) {
	raw, ok := args["limit"]
	if !ok || raw == nil {
		return usecase.DefaultLimit, nil
	}
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case int:
		return v, nil
	default:
		return 0, domain.NewValidationError("limit must be a number")
	}
	if math.IsNaN(n) || n != math.Trunc(n) {
		return 0, domain.NewValidationError("limit must be a whole number")
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, domain.NewValidationError(fmt.Sprintf("limit must be between %d and %d", usecase.MinLimit, usecase.MaxLimit))
	}
	return int(n), nil
}

// stringArg reads a string argument; a missing one is empty and left to
// the toolset to reject.
func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", domain.NewValidationError(key + " must be a string")
	}
	return s, nil
}
