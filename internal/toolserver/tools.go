package toolserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ToolGetMyRepos        = "get_my_repos"
	ToolGetRepoDetails    = "get_repo_details"
	ToolSearchMyCode      = "search_my_code"
	ToolGetRecentActivity = "get_recent_activity"
)

func limitOption(description string) mcp.ToolOption {
	return mcp.WithNumber("limit",
		mcp.Description(description),
		mcp.Min(1),
		mcp.Max(100),
	)
}

// tools returns the four tool descriptors bound to their handlers.
func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolGetMyRepos,
				mcp.WithDescription("List repositories for the authenticated user. "+
					"Returns name, description, stars, forks, primary language, visibility and last update time, "+
					"sorted by most recently updated first."),
				mcp.WithReadOnlyHintAnnotation(true),
				limitOption("Maximum number of repositories to return (default: 30, max: 100)"),
			),
			Handler: s.handleGetMyRepos,
		},
		{
			Tool: mcp.NewTool(ToolGetRepoDetails,
				mcp.WithDescription("Get detailed information about one repository: "+
					"description, stats (stars, forks, watchers, open issues), language breakdown, topics and URLs. "+
					"Give the name as 'owner/repo', or just 'repo' for the current user."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("repo_name",
					mcp.Required(),
					mcp.Description("Repository name (e.g. 'owner/my-project' or 'my-project')"),
				),
			),
			Handler: s.handleGetRepoDetails,
		},
		{
			Tool: mcp.NewTool(ToolSearchMyCode,
				mcp.WithDescription("Search code across the current user's repositories. "+
					"Returns matching file paths and repositories. "+
					"Code search is rate limited to 10 requests per minute."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("Search query (e.g. 'func authenticate', 'class UserController')"),
				),
				limitOption("Maximum number of results to return (default: 30, max: 100)"),
			),
			Handler: s.handleSearchMyCode,
		},
		{
			Tool: mcp.NewTool(ToolGetRecentActivity,
				mcp.WithDescription("Get recent activity for the current user, including pushes, pull requests, "+
					"issues and repository creation, across all repositories."),
				mcp.WithReadOnlyHintAnnotation(true),
				limitOption("Maximum number of events to return (default: 30, max: 100)"),
			),
			Handler: s.handleGetRecentActivity,
		},
	}
}
