package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v84/github"

	"github.com/naka-gawa/github-mcp/internal/domain"
)

const (
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"

	maxErrorBody = 500
)

// classify maps a failed go-github call onto the domain error taxonomy.
// resp is nil when no HTTP response was received.
func classify(resp *http.Response, err error) error {
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &domain.Error{
			Kind:       domain.KindRateLimit,
			Message:    "GitHub secondary rate limit exceeded; wait a minute before retrying (code search allows 10 requests per minute)",
			StatusCode: statusOf(resp),
			Err:        err,
		}
	}
	if resp == nil {
		return domain.NewError(domain.KindTransport, "could not reach GitHub; check your network connection", err)
	}

	var rateErr *github.RateLimitError
	isRateLimited := errors.As(err, &rateErr) || resp.Header.Get(headerRateRemaining) == "0"

	e := &domain.Error{StatusCode: resp.StatusCode, Err: err}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		e.Kind = domain.KindAuthentication
		e.Message = "GitHub authentication failed; check your GITHUB_TOKEN"
	case http.StatusForbidden:
		if isRateLimited {
			e.Kind = domain.KindRateLimit
			e.Message = rateLimitMessage(resp)
		} else {
			e.Kind = domain.KindPermission
			e.Message = "access forbidden; check that your token has the 'repo' and 'read:user' scopes"
		}
	case http.StatusNotFound:
		e.Kind = domain.KindNotFound
		e.Message = "repository or resource not found, or not accessible with this token"
	case http.StatusUnprocessableEntity:
		e.Kind = domain.KindValidation
		e.Message = "GitHub rejected the request as invalid; check the query syntax"
		if msg := errorMessage(err); msg != "" {
			e.Message += ": " + msg
		}
	case http.StatusTooManyRequests:
		e.Kind = domain.KindRateLimit
		e.Message = rateLimitMessage(resp)
	default:
		e.Kind = domain.KindUpstream
		e.Body = truncate(readBody(resp, err), maxErrorBody)
		e.Message = fmt.Sprintf("GitHub API error (status %d)", resp.StatusCode)
		if e.Body != "" {
			e.Message += ": " + e.Body
		}
	}
	return e
}

func rateLimitMessage(resp *http.Response) string {
	msg := "GitHub API rate limit exceeded; wait before retrying"
	if reset := resp.Header.Get(headerRateReset); reset != "" {
		msg += " (resets at unix time " + reset + ")"
	}
	return msg
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func errorMessage(err error) string {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		return errResp.Message
	}
	return ""
}

// readBody returns the error body go-github left on the response, falling
// back to the decoded error message.
func readBody(resp *http.Response, err error) string {
	if resp.Body != nil {
		if data, readErr := io.ReadAll(resp.Body); readErr == nil && len(data) > 0 {
			return strings.TrimSpace(string(data))
		}
	}
	return errorMessage(err)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
