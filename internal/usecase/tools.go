// Package usecase contains the business logic of the application: it
// validates tool arguments, calls the gateway and reshapes its records
// into the caller-facing results in package domain.
package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-mcp/internal/domain"
	"github.com/naka-gawa/github-mcp/internal/gateway"
)

const (
	// DefaultLimit is used when a caller omits the limit argument.
	DefaultLimit = 30
	MinLimit     = 1
	MaxLimit     = 100

	sortedByRecentlyUpdated = "recently_updated"
	defaultBranch           = "main"
)

// Toolset implements the four tools on top of a gateway.Fetcher.
// A Toolset without a fetcher fails every call with a precondition error.
type Toolset struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewToolset creates a new Toolset instance.
func NewToolset(fetcher gateway.Fetcher, logger *log.Logger) *Toolset {
	return &Toolset{
		fetcher: fetcher,
		logger:  logger,
	}
}

func (t *Toolset) ready() error {
	if t == nil || t.fetcher == nil {
		return domain.NewError(domain.KindPrecondition, "GitHub client not initialized; restart the server", nil)
	}
	return nil
}

func validateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return domain.NewValidationError(fmt.Sprintf("limit must be between %d and %d", MinLimit, MaxLimit))
	}
	return nil
}

// GetMyRepos lists the user's repositories, most recently updated first.
func (t *Toolset) GetMyRepos(ctx context.Context, limit int) (*domain.RepoListing, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := t.ready(); err != nil {
		return nil, err
	}

	repos, err := t.fetcher.ListRepositories(ctx, limit)
	if err != nil {
		return nil, err
	}

	listing := &domain.RepoListing{
		Summary: domain.RepoSummary{
			User:     t.fetcher.Username(),
			SortedBy: sortedByRecentlyUpdated,
		},
		Repositories: make([]domain.RepoEntry, 0, len(repos)),
	}
	for _, repo := range repos {
		entry := domain.RepoEntry{
			Name:        repo.GetName(),
			FullName:    repo.GetFullName(),
			Description: repo.GetDescription(),
			Stars:       repo.GetStargazersCount(),
			Forks:       repo.GetForksCount(),
			Language:    repo.GetLanguage(),
			Visibility:  visibility(repo),
			UpdatedAt:   formatTime(repo.GetUpdatedAt()),
			URL:         repo.GetHTMLURL(),
		}
		listing.Summary.TotalStars += entry.Stars
		listing.Summary.TotalForks += entry.Forks
		listing.Repositories = append(listing.Repositories, entry)
	}
	listing.Summary.Count = len(listing.Repositories)
	return listing, nil
}

// GetRepoDetails describes one repository. repoName is "owner/repo" or a
// bare name owned by the configured user.
func (t *Toolset) GetRepoDetails(ctx context.Context, repoName string) (*domain.RepoDetails, error) {
	repoName = strings.TrimSpace(repoName)
	if repoName == "" {
		return nil, domain.NewValidationError("repo_name must not be empty")
	}
	if err := t.ready(); err != nil {
		return nil, err
	}

	detail, err := t.fetcher.GetRepositoryDetail(ctx, repoName)
	if err != nil {
		return nil, err
	}
	repo := detail.Repository

	branch := repo.GetDefaultBranch()
	if branch == "" {
		branch = defaultBranch
	}
	fullName := repo.GetFullName()
	if fullName == "" {
		fullName = repoName
	}
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}
	languages := detail.Languages
	if languages == nil {
		languages = map[string]int64{}
	}

	return &domain.RepoDetails{
		Name:        repo.GetName(),
		FullName:    fullName,
		Description: repo.GetDescription(),
		Stats: domain.RepoStats{
			Stars:      repo.GetStargazersCount(),
			Forks:      repo.GetForksCount(),
			Watchers:   repo.GetWatchersCount(),
			OpenIssues: repo.GetOpenIssuesCount(),
		},
		Details: domain.RepoInfo{
			PrimaryLanguage: repo.GetLanguage(),
			Visibility:      visibility(repo),
			DefaultBranch:   branch,
			CreatedAt:       formatTime(repo.GetCreatedAt()),
			UpdatedAt:       formatTime(repo.GetUpdatedAt()),
			PushedAt:        formatTime(repo.GetPushedAt()),
		},
		LanguageBreakdown:   languages,
		LanguagePercentages: t.languagePercentages(languages),
		Topics:              topics,
		URLs: domain.RepoURLs{
			HTML:     repo.GetHTMLURL(),
			Clone:    repo.GetCloneURL(),
			SSH:      repo.GetSSHURL(),
			Homepage: repo.GetHomepage(),
		},
		License: repo.GetLicense().GetName(),
	}, nil
}

// languagePercentages converts byte counts to shares of the total,
// rounded to one decimal place.
func (t *Toolset) languagePercentages(languages map[string]int64) map[string]float64 {
	percentages := make(map[string]float64, len(languages))
	data := make(stats.Float64Data, 0, len(languages))
	for _, n := range languages {
		data = append(data, float64(n))
	}
	total, err := stats.Sum(data)
	if err != nil || total <= 0 {
		return percentages
	}
	for lang, n := range languages {
		pct, err := stats.Round(float64(n)/total*100, 1)
		if err != nil {
			t.logger.Printf("could not round percentage for %s: %v", lang, err)
			continue
		}
		percentages[lang] = pct
	}
	return percentages
}

// SearchMyCode searches code across the user's repositories.
func (t *Toolset) SearchMyCode(ctx context.Context, query string, limit int) (*domain.CodeSearch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query must not be empty")
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := t.ready(); err != nil {
		return nil, err
	}

	result, err := t.fetcher.SearchCode(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	search := &domain.CodeSearch{
		Query:             query,
		TotalCount:        result.GetTotal(),
		IncompleteResults: result.GetIncompleteResults(),
		Matches:           make([]domain.CodeMatch, 0, len(result.CodeResults)),
	}
	for _, item := range result.CodeResults {
		search.Matches = append(search.Matches, domain.CodeMatch{
			Repository: item.GetRepository().GetFullName(),
			Path:       item.GetPath(),
			URL:        item.GetHTMLURL(),
		})
	}
	search.ReturnedCount = len(search.Matches)
	return search, nil
}

// GetRecentActivity lists the user's most recent events.
func (t *Toolset) GetRecentActivity(ctx context.Context, limit int) (*domain.Activity, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := t.ready(); err != nil {
		return nil, err
	}

	events, err := t.fetcher.ListRecentEvents(ctx, limit)
	if err != nil {
		return nil, err
	}

	activity := &domain.Activity{
		User:   t.fetcher.Username(),
		Events: make([]domain.ActivityEvent, 0, len(events)),
	}
	for _, event := range events {
		activity.Events = append(activity.Events, domain.ActivityEvent{
			Type:      event.GetType(),
			Repo:      event.GetRepo().GetName(),
			CreatedAt: formatTime(event.GetCreatedAt()),
			Detail:    t.eventDetail(event),
		})
	}
	activity.Count = len(activity.Events)
	return activity, nil
}

// eventDetail projects the kind-specific part of an event payload.
// Unknown kinds and undecodable payloads have no detail.
func (t *Toolset) eventDetail(event *github.Event) any {
	decode := func(v any) bool {
		if event.RawPayload == nil {
			return false
		}
		if err := json.Unmarshal(*event.RawPayload, v); err != nil {
			t.logger.Printf("could not decode %s payload: %v", event.GetType(), err)
			return false
		}
		return true
	}

	switch event.GetType() {
	case "PushEvent":
		var p github.PushEvent
		if !decode(&p) {
			return nil
		}
		count := len(p.Commits)
		if count == 0 {
			count = p.GetSize()
		}
		return domain.PushDetail{Branch: branchName(p.GetRef()), CommitCount: count}
	case "PullRequestEvent":
		var p github.PullRequestEvent
		if !decode(&p) {
			return nil
		}
		pr := p.GetPullRequest()
		return domain.ChangeDetail{Action: p.GetAction(), Title: pr.GetTitle(), Number: pr.GetNumber()}
	case "IssuesEvent":
		var p github.IssuesEvent
		if !decode(&p) {
			return nil
		}
		issue := p.GetIssue()
		return domain.ChangeDetail{Action: p.GetAction(), Title: issue.GetTitle(), Number: issue.GetNumber()}
	case "CreateEvent":
		var p github.CreateEvent
		if !decode(&p) {
			return nil
		}
		return domain.CreateDetail{RefType: p.GetRefType(), Ref: p.GetRef()}
	case "WatchEvent":
		return domain.WatchDetail{Action: "starred"}
	case "ForkEvent":
		var p github.ForkEvent
		if !decode(&p) {
			return nil
		}
		return domain.ForkDetail{Forkee: p.GetForkee().GetFullName()}
	default:
		return nil
	}
}

// branchName returns the last segment of a ref such as refs/heads/main.
func branchName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func visibility(repo *github.Repository) string {
	if v := repo.GetVisibility(); v != "" {
		return v
	}
	if repo.GetPrivate() {
		return "private"
	}
	return "public"
}

func formatTime(ts github.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

// Render encodes a tool result as the pretty-printed JSON text returned to callers.
func Render(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
