// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/github-mcp/internal/domain"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com/"
	// DefaultTimeout bounds every outbound request.
	DefaultTimeout = 30 * time.Second

	maxPageSize = 100
)

// RepositoryDetail is a repository record plus its language byte counts.
// Languages is empty, never nil, when the breakdown could not be fetched.
type RepositoryDetail struct {
	Repository *github.Repository
	Languages  map[string]int64
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	Username() string
	ListRepositories(ctx context.Context, limit int) ([]*github.Repository, error)
	GetRepositoryDetail(ctx context.Context, ownerRepo string) (*RepositoryDetail, error)
	SearchCode(ctx context.Context, query string, limit int) (*github.CodeSearchResult, error)
	ListRecentEvents(ctx context.Context, limit int) ([]*github.Event, error)
	Viewer(ctx context.Context) (*Viewer, error)
}

// Options configures a GitHubGateway.
type Options struct {
	Token    string
	Username string
	BaseURL  string        // REST base; DefaultBaseURL when empty
	Timeout  time.Duration // DefaultTimeout when zero
	Debug    bool
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
// It is safe for concurrent use; the only mutable state is the closed flag.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	transport     *http.Transport
	username      string
	logger        *log.Logger
	debug         bool
	closed        atomic.Bool
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The returned gateway owns an HTTP connection pool; call Close when done.
func NewGitHubGateway(opts Options, logger *log.Logger) (*GitHubGateway, error) {
	if opts.Token == "" {
		return nil, errors.New("github token is required")
	}
	if opts.Username == "" {
		return nil, errors.New("github username is required")
	}
	baseURL, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	rateLimited, err := newSingleRequestTransport(base, logger)
	if err != nil {
		base.CloseIdleConnections()
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	authenticated := &oauth2.Transport{
		Base:   rateLimited,
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
	}
	httpClient := &http.Client{Timeout: timeout, Transport: authenticated}
	graphqlHTTPClient := &http.Client{Timeout: timeout, Transport: &responseRecorder{base: authenticated}}

	restClient := github.NewClient(httpClient)
	restClient.BaseURL = baseURL

	var graphqlClient *githubv4.Client
	if baseURL.String() == DefaultBaseURL {
		graphqlClient = githubv4.NewClient(graphqlHTTPClient)
	} else {
		graphqlClient = githubv4.NewEnterpriseClient(graphqlURL(baseURL), graphqlHTTPClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		transport:     base,
		username:      opts.Username,
		logger:        logger,
		debug:         opts.Debug,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid GitHub API URL %q: must be absolute", raw)
	}
	return u, nil
}

// graphqlURL maps a REST base to its GraphQL endpoint. Enterprise servers
// serve REST under /api/v3/ and GraphQL under /api/graphql.
func graphqlURL(base *url.URL) string {
	u := *base
	p := strings.TrimSuffix(u.Path, "/")
	if strings.HasSuffix(p, "/v3") {
		p = strings.TrimSuffix(p, "/v3")
	}
	u.Path = p + "/graphql"
	return u.String()
}

// Username returns the account the gateway acts for.
func (g *GitHubGateway) Username() string {
	return g.username
}

// Close releases the connection pool. Calls made after Close fail with a
// precondition error. Close is idempotent.
func (g *GitHubGateway) Close() error {
	if g.closed.Swap(true) {
		return nil
	}
	g.transport.CloseIdleConnections()
	return nil
}

// Call performs exactly one authenticated request and classifies its outcome.
// path is relative to the API base and is trusted as given. v is either a
// JSON decode target or an io.Writer receiving the raw body; it may be nil.
func (g *GitHubGateway) Call(ctx context.Context, method, path string, params url.Values, v any) error {
	if g.closed.Load() {
		return domain.NewError(domain.KindPrecondition, "GitHub client is not initialized; restart the server", nil)
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	g.debugf("%s %s", method, path)
	req, err := g.restClient.NewRequest(method, path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	resp, err := g.restClient.Do(ctx, req, v)
	var httpResp *http.Response
	if resp != nil {
		httpResp = resp.Response
	}
	g.checkRateLimit(httpResp)
	if err != nil {
		return classify(httpResp, err)
	}
	return nil
}

// ListRepositories lists the user's repositories, most recently updated first.
func (g *GitHubGateway) ListRepositories(ctx context.Context, limit int) ([]*github.Repository, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(pageSize(limit)))
	params.Set("sort", "updated")
	params.Set("direction", "desc")
	params.Set("affiliation", "owner,collaborator,organization_member")

	var repos []*github.Repository
	if err := g.Call(ctx, http.MethodGet, "user/repos", params, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepositoryDetail fetches a repository and its language breakdown.
// ownerRepo is "owner/repo" or a bare "repo" owned by the configured user.
// A failed breakdown request degrades to an empty map.
func (g *GitHubGateway) GetRepositoryDetail(ctx context.Context, ownerRepo string) (*RepositoryDetail, error) {
	owner, repo := g.splitRepoName(ownerRepo)
	endpoint := fmt.Sprintf("repos/%s/%s", owner, repo)

	var repository github.Repository
	if err := g.Call(ctx, http.MethodGet, endpoint, nil, &repository); err != nil {
		return nil, err
	}

	return &RepositoryDetail{
		Repository: &repository,
		Languages:  g.fetchLanguages(ctx, endpoint+"/languages"),
	}, nil
}

// splitRepoName splits on the first "/"; a bare name belongs to the configured user.
func (g *GitHubGateway) splitRepoName(name string) (owner, repo string) {
	if owner, repo, ok := strings.Cut(name, "/"); ok {
		return owner, repo
	}
	return g.username, name
}

// SearchCode searches code in the configured user's repositories.
// The endpoint allows 10 requests per minute; exceeding it surfaces as a
// rate limit error.
func (g *GitHubGateway) SearchCode(ctx context.Context, query string, limit int) (*github.CodeSearchResult, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s user:%s", query, g.username))
	params.Set("per_page", strconv.Itoa(pageSize(limit)))

	var result github.CodeSearchResult
	if err := g.Call(ctx, http.MethodGet, "search/code", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRecentEvents lists the configured user's most recent events.
func (g *GitHubGateway) ListRecentEvents(ctx context.Context, limit int) ([]*github.Event, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(pageSize(limit)))

	var events []*github.Event
	endpoint := fmt.Sprintf("users/%s/events", url.PathEscape(g.username))
	if err := g.Call(ctx, http.MethodGet, endpoint, params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func pageSize(limit int) int {
	return max(1, min(limit, maxPageSize))
}

func (g *GitHubGateway) debugf(format string, args ...any) {
	if g.debug {
		g.logger.Printf("DEBUG: "+format, args...)
	}
}
