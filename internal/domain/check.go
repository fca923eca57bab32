package domain

// CheckReport is printed by the check command after probing the
// configured credentials.
type CheckReport struct {
	User          string `json:"user"`
	Login         string `json:"login"`
	LoginMatches  bool   `json:"login_matches"`
	CanListRepos  bool   `json:"can_list_repos"`
	CanListEvents bool   `json:"can_list_events"`
	RateLimit     int    `json:"rate_limit"`
	RateRemaining int    `json:"rate_remaining"`
	RateResetAt   string `json:"rate_reset_at,omitempty"`
}
