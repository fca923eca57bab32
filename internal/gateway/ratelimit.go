package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// RateLimitWarningThreshold is the remaining-quota level below which every
// response logs a warning.
const RateLimitWarningThreshold = 100

// RateLimitSnapshot is the quota reported by a single response.
type RateLimitSnapshot struct {
	Remaining int
	Threshold int
}

// Low reports whether the remaining quota is under the warning threshold.
func (s RateLimitSnapshot) Low() bool {
	return s.Remaining < s.Threshold
}

// rateLimitFrom reads the remaining-quota header. ok is false when the
// header is absent or malformed, in which case nothing is known.
func rateLimitFrom(resp *http.Response) (snapshot RateLimitSnapshot, ok bool) {
	if resp == nil {
		return RateLimitSnapshot{}, false
	}
	raw := resp.Header.Get(headerRateRemaining)
	if raw == "" {
		return RateLimitSnapshot{}, false
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return RateLimitSnapshot{}, false
	}
	return RateLimitSnapshot{Remaining: remaining, Threshold: RateLimitWarningThreshold}, true
}

func (g *GitHubGateway) checkRateLimit(resp *http.Response) {
	snapshot, ok := rateLimitFrom(resp)
	if ok && snapshot.Low() {
		g.logger.Printf("WARNING: GitHub API rate limit low: %d requests remaining", snapshot.Remaining)
	}
}

type attemptKey struct{}

// attempt tracks the single request a singleRequestTransport may send.
type attempt struct {
	sent       bool
	suppressed bool
	resp       *http.Response
	body       []byte
}

func (a *attempt) replay() *http.Response {
	resp := *a.resp
	resp.Body = io.NopCloser(bytes.NewReader(a.body))
	return &resp
}

// singleRequestTransport wraps the rate limit waiter so that one RoundTrip
// sends at most one request. The waiter retries on its own when a secondary
// limit's reset time is already in the past; such a retry is refused below
// the waiter and the first response is handed back instead.
type singleRequestTransport struct {
	waiter http.RoundTripper
	logger *log.Logger
}

func newSingleRequestTransport(base http.RoundTripper, logger *log.Logger) (*singleRequestTransport, error) {
	waiter, err := github_ratelimit.NewRateLimitWaiter(&sendOnceTransport{base: base},
		github_ratelimit.WithSingleSleepLimit(0, func(*github_ratelimit.CallbackContext) {
			logger.Println("WARNING: GitHub secondary rate limit hit; not retrying")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &singleRequestTransport{waiter: waiter, logger: logger}, nil
}

func (t *singleRequestTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	a := &attempt{}
	resp, err := t.waiter.RoundTrip(req.WithContext(context.WithValue(req.Context(), attemptKey{}, a)))
	if err != nil && a.suppressed && a.resp != nil {
		t.logger.Println("WARNING: GitHub secondary rate limit hit; not retrying")
		return a.replay(), nil
	}
	return resp, err
}

// sendOnceTransport sits under the waiter. It refuses a second send for the
// same attempt and keeps a copy of rate limited responses for replay.
type sendOnceTransport struct {
	base http.RoundTripper
}

var errRetryRefused = errors.New("automatic retry refused")

func (t *sendOnceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	a, ok := req.Context().Value(attemptKey{}).(*attempt)
	if !ok {
		return t.base.RoundTrip(req)
	}
	if a.sent {
		a.suppressed = true
		return nil, errRetryRefused
	}
	a.sent = true

	resp, err := t.base.RoundTrip(req)
	if err != nil || (resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests) {
		return resp, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	a.resp, a.body = resp, body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
