package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-mcp/internal/domain"
	"github.com/naka-gawa/github-mcp/internal/gateway"
)

// Checker verifies that the configured credentials can serve every tool.
type Checker struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewChecker creates a new Checker instance.
func NewChecker(fetcher gateway.Fetcher, logger *log.Logger) *Checker {
	return &Checker{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Check probes the GraphQL viewer, the repository listing and the event
// listing concurrently. The first failing probe cancels the others.
func (c *Checker) Check(ctx context.Context) (*domain.CheckReport, error) {
	if c == nil || c.fetcher == nil {
		return nil, domain.NewError(domain.KindPrecondition, "GitHub client not initialized", nil)
	}
	c.logger.Println("Checking GitHub credentials...")

	var viewer *gateway.Viewer
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		viewer, err = c.fetcher.Viewer(egCtx)
		return err
	})

	eg.Go(func() error {
		_, err := c.fetcher.ListRepositories(egCtx, 1)
		return err
	})

	eg.Go(func() error {
		_, err := c.fetcher.ListRecentEvents(egCtx, 1)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	c.logger.Println("All checks passed.")

	user := c.fetcher.Username()
	report := &domain.CheckReport{
		User:          user,
		Login:         viewer.Login,
		LoginMatches:  strings.EqualFold(viewer.Login, user),
		CanListRepos:  true,
		CanListEvents: true,
		RateLimit:     viewer.RateLimit,
		RateRemaining: viewer.RateRemaining,
	}
	if !viewer.RateResetAt.IsZero() {
		report.RateResetAt = viewer.RateResetAt.UTC().Format(time.RFC3339)
	}
	if !report.LoginMatches {
		c.logger.Printf("WARNING: token belongs to %q but GITHUB_USERNAME is %q", viewer.Login, user)
	}
	return report, nil
}
