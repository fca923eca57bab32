package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/github-mcp/internal/domain"
	"github.com/naka-gawa/github-mcp/internal/gateway"
)

func TestChecker_Check(t *testing.T) {
	resetAt := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	authErr := domain.NewError(domain.KindAuthentication, "GitHub authentication failed; check your GITHUB_TOKEN", nil)

	testCases := []struct {
		name           string
		mockViewer     *gateway.Viewer
		mockViewerErr  error
		mockReposErr   error
		mockEventsErr  error
		expectedResult *domain.CheckReport
		expectedErr    error
		expectedLog    string
	}{
		{
			name:       "happy path - token belongs to the configured user",
			mockViewer: &gateway.Viewer{Login: "Alice", RateLimit: 5000, RateRemaining: 4321, RateResetAt: resetAt},
			expectedResult: &domain.CheckReport{
				User:          "alice",
				Login:         "Alice",
				LoginMatches:  true,
				CanListRepos:  true,
				CanListEvents: true,
				RateLimit:     5000,
				RateRemaining: 4321,
				RateResetAt:   "2026-10-15T12:00:00Z",
			},
		},
		{
			name:       "login mismatch is reported and logged",
			mockViewer: &gateway.Viewer{Login: "bob", RateLimit: 5000, RateRemaining: 5000},
			expectedResult: &domain.CheckReport{
				User:          "alice",
				Login:         "bob",
				CanListRepos:  true,
				CanListEvents: true,
				RateLimit:     5000,
				RateRemaining: 5000,
			},
			expectedLog: `token belongs to "bob"`,
		},
		{
			name:          "error case - a failing probe fails the check",
			mockViewer:    &gateway.Viewer{Login: "alice"},
			mockEventsErr: authErr,
			expectedErr:   authErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			fetcher := new(mockFetcher)
			fetcher.On("Viewer", mock.Anything).Return(tc.mockViewer, tc.mockViewerErr)
			fetcher.On("ListRepositories", mock.Anything, 1).Return([]*github.Repository{}, tc.mockReposErr)
			fetcher.On("ListRecentEvents", mock.Anything, 1).Return([]*github.Event{}, tc.mockEventsErr)

			checker := NewChecker(fetcher, log.New(&logs, "", 0))
			report, err := checker.Check(context.Background())

			if tc.expectedErr != nil {
				assert.True(t, errors.Is(err, tc.expectedErr))
				assert.Nil(t, report)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedResult, report)
			if tc.expectedLog != "" {
				assert.Contains(t, logs.String(), tc.expectedLog)
			}
			fetcher.AssertExpectations(t)
		})
	}
}

func TestChecker_RequiresFetcher(t *testing.T) {
	_, err := NewChecker(nil, log.New(io.Discard, "", 0)).Check(context.Background())
	assert.True(t, errors.Is(err, domain.ErrPrecondition))
}
