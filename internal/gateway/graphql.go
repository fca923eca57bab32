package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/naka-gawa/github-mcp/internal/domain"
)

// Viewer is the authenticated account as seen by the GraphQL API.
type Viewer struct {
	Login         string
	RateLimit     int
	RateRemaining int
	RateResetAt   time.Time
}

type viewerQuery struct {
	Viewer struct {
		Login githubv4.String
	}
	RateLimit struct {
		Limit     githubv4.Int
		Remaining githubv4.Int
		ResetAt   githubv4.DateTime
	}
}

// Viewer identifies the token's owner and its GraphQL quota.
func (g *GitHubGateway) Viewer(ctx context.Context) (*Viewer, error) {
	if g.closed.Load() {
		return nil, domain.NewError(domain.KindPrecondition, "GitHub client is not initialized; restart the server", nil)
	}
	g.debugf("POST graphql viewer")
	var (
		q    viewerQuery
		slot responseSlot
	)
	err := g.graphqlClient.Query(context.WithValue(ctx, responseSlotKey{}, &slot), &q, nil)
	g.checkRateLimit(slot.resp)
	if err != nil {
		if slot.resp == nil || slot.resp.StatusCode != http.StatusOK {
			return nil, classify(slot.resp, err)
		}
		return nil, domain.NewError(domain.KindUpstream, fmt.Sprintf("GitHub GraphQL query failed (check your token): %v", err), err)
	}
	return &Viewer{
		Login:         string(q.Viewer.Login),
		RateLimit:     int(q.RateLimit.Limit),
		RateRemaining: int(q.RateLimit.Remaining),
		RateResetAt:   q.RateLimit.ResetAt.Time,
	}, nil
}

type responseSlotKey struct{}

// responseSlot receives the last HTTP response seen for a GraphQL query, so
// its status can be classified like a REST failure.
type responseSlot struct {
	resp *http.Response
}

type responseRecorder struct {
	base http.RoundTripper
}

func (t *responseRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if slot, ok := req.Context().Value(responseSlotKey{}).(*responseSlot); ok && resp != nil {
		slot.resp = resp
	}
	return resp, err
}
