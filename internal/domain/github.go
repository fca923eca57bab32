// Package domain contains the caller-facing result structures returned by
// the tools, and the error taxonomy shared by every layer.
package domain

// RepoListing is the result of get_my_repos.
type RepoListing struct {
	Summary      RepoSummary `json:"summary"`
	Repositories []RepoEntry `json:"repositories"`
}

// RepoSummary aggregates the listed repositories.
// TotalStars and TotalForks always equal the sums over Repositories.
type RepoSummary struct {
	User       string `json:"user"`
	Count      int    `json:"count"`
	TotalStars int    `json:"total_stars"`
	TotalForks int    `json:"total_forks"`
	SortedBy   string `json:"sorted_by"`
}

// RepoEntry is the fixed projection of one repository in a listing.
type RepoEntry struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	Language    string `json:"language"`
	Visibility  string `json:"visibility"`
	UpdatedAt   string `json:"updated_at"`
	URL         string `json:"url"`
}

// RepoDetails is the result of get_repo_details.
type RepoDetails struct {
	Name                string             `json:"name"`
	FullName            string             `json:"full_name"`
	Description         string             `json:"description"`
	Stats               RepoStats          `json:"stats"`
	Details             RepoInfo           `json:"details"`
	LanguageBreakdown   map[string]int64   `json:"language_breakdown"`
	LanguagePercentages map[string]float64 `json:"language_percentages"`
	Topics              []string           `json:"topics"`
	URLs                RepoURLs           `json:"urls"`
	License             string             `json:"license,omitempty"`
}

type RepoStats struct {
	Stars      int `json:"stars"`
	Forks      int `json:"forks"`
	Watchers   int `json:"watchers"`
	OpenIssues int `json:"open_issues"`
}

type RepoInfo struct {
	PrimaryLanguage string `json:"primary_language"`
	Visibility      string `json:"visibility"`
	DefaultBranch   string `json:"default_branch"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	PushedAt        string `json:"pushed_at"`
}

type RepoURLs struct {
	HTML     string `json:"html"`
	Clone    string `json:"clone"`
	SSH      string `json:"ssh"`
	Homepage string `json:"homepage,omitempty"`
}

// CodeSearch is the result of search_my_code.
type CodeSearch struct {
	Query             string      `json:"query"`
	TotalCount        int         `json:"total_count"`
	ReturnedCount     int         `json:"returned_count"`
	IncompleteResults bool        `json:"incomplete_results"`
	Matches           []CodeMatch `json:"matches"`
}

type CodeMatch struct {
	Repository string `json:"repository"`
	Path       string `json:"path"`
	URL        string `json:"url"`
}

// Activity is the result of get_recent_activity.
type Activity struct {
	User   string          `json:"user"`
	Count  int             `json:"count"`
	Events []ActivityEvent `json:"events"`
}

// ActivityEvent is one upstream event. Detail holds one of the *Detail
// types below, or nil for event kinds without a specific projection.
type ActivityEvent struct {
	Type      string `json:"type"`
	Repo      string `json:"repo"`
	CreatedAt string `json:"created_at"`
	Detail    any    `json:"detail,omitempty"`
}

type PushDetail struct {
	Branch      string `json:"branch"`
	CommitCount int    `json:"commit_count"`
}

// ChangeDetail describes pull request and issue events.
type ChangeDetail struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Number int    `json:"number"`
}

type CreateDetail struct {
	RefType string `json:"ref_type"`
	Ref     string `json:"ref"`
}

type WatchDetail struct {
	Action string `json:"action"`
}

type ForkDetail struct {
	Forkee string `json:"forkee"`
}
