package usecase

import (
	"context"

	"github.com/google/go-github/v84/github"
	"github.com/stretchr/testify/mock"

	"github.com/naka-gawa/github-mcp/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Username() string {
	return "alice"
}

func (m *mockFetcher) ListRepositories(ctx context.Context, limit int) ([]*github.Repository, error) {
	args := m.Called(ctx, limit)
	// The returned slice is nil when an error is simulated.
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Repository), args.Error(1)
}

func (m *mockFetcher) GetRepositoryDetail(ctx context.Context, ownerRepo string) (*gateway.RepositoryDetail, error) {
	args := m.Called(ctx, ownerRepo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.RepositoryDetail), args.Error(1)
}

func (m *mockFetcher) SearchCode(ctx context.Context, query string, limit int) (*github.CodeSearchResult, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.CodeSearchResult), args.Error(1)
}

func (m *mockFetcher) ListRecentEvents(ctx context.Context, limit int) ([]*github.Event, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.Event), args.Error(1)
}

func (m *mockFetcher) Viewer(ctx context.Context) (*gateway.Viewer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Viewer), args.Error(1)
}
