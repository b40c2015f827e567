// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/naka-gawa/contrib-scout/internal/domain"
	"github.com/naka-gawa/contrib-scout/internal/gateway"
	"golang.org/x/sync/errgroup"
)

var (
	contributingPaths  = []string{"CONTRIBUTING.md", ".github/CONTRIBUTING.md", "docs/CONTRIBUTING.md"}
	codeOfConductPaths = []string{"CODE_OF_CONDUCT.md", ".github/CODE_OF_CONDUCT.md", "docs/CODE_OF_CONDUCT.md"}
)

// firstCommentConcurrency bounds the parallel first-comment lookups of one repository.
const firstCommentConcurrency = 4

// ErrInvalidRepositoryName is returned for names that are not in owner/name form.
var ErrInvalidRepositoryName = errors.New("repository must be in owner/name form")

// Analyzer is the use case for scoring repositories.
// It fetches the raw inputs of a repository and hands them to the assembler.
type Analyzer struct {
	fetcher gateway.Fetcher
	config  domain.ScoringConfig
	logger  *log.Logger
	now     func() time.Time
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(fetcher gateway.Fetcher, config domain.ScoringConfig, logger *log.Logger) *Analyzer {
	return &Analyzer{
		fetcher: fetcher,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze fetches and scores a single repository.
// Only a failure to fetch the repository itself is returned as an error; every
// other missing piece degrades the analysis instead.
// The `advanced` flag controls whether the PR merge and issue response samples are fetched.
func (a *Analyzer) Analyze(ctx context.Context, fullName string, advanced bool) (*domain.RepositoryAnalysis, error) {
	owner, name, err := SplitFullName(fullName)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Usecase: Analyzing %s/%s...\n", owner, name)

	raw, err := a.collect(ctx, owner, name, advanced)
	if err != nil {
		return nil, err
	}
	analysis := domain.Assemble(*raw, a.now(), a.config)
	a.logger.Printf("Usecase: %s scored %.1f\n", analysis.Name, analysis.ActivityScore)
	return analysis, nil
}

// AnalyzeAll analyzes repositories one after another and returns the successful
// analyses ranked by score. Per-repository failures are joined into the returned error.
func (a *Analyzer) AnalyzeAll(ctx context.Context, fullNames []string, advanced bool) ([]*domain.RepositoryAnalysis, error) {
	results := make([]*domain.RepositoryAnalysis, 0, len(fullNames))
	var errs []error
	for _, fullName := range fullNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		analysis, err := a.Analyze(ctx, fullName, advanced)
		if err != nil {
			a.logger.Printf("Usecase: Skipping %s: %v\n", fullName, err)
			errs = append(errs, fmt.Errorf("%s: %w", fullName, err))
			continue
		}
		results = append(results, analysis)
	}
	domain.SortByScore(results)
	return results, errors.Join(errs...)
}

// collect fetches all raw inputs of one repository concurrently.
func (a *Analyzer) collect(ctx context.Context, owner, name string, advanced bool) (*domain.RawInputs, error) {
	raw := &domain.RawInputs{Advanced: advanced}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		repo, err := a.fetcher.FetchRepository(egCtx, owner, name)
		if err != nil {
			return err
		}
		raw.Repository = *repo
		return nil
	})

	eg.Go(func() error {
		lastCommitAt, err := a.fetcher.FetchLatestCommitTime(egCtx, owner, name)
		if err != nil {
			a.degraded("latest commit", err)
			return nil
		}
		raw.LastCommitAt = lastCommitAt
		return nil
	})

	eg.Go(func() error {
		issues, err := a.fetcher.FetchGoodFirstIssues(egCtx, owner, name)
		if err != nil {
			a.degraded("good first issues", err)
			return nil
		}
		raw.GoodFirstIssues = issues
		return nil
	})

	eg.Go(func() error {
		found, err := a.fetcher.FileExists(egCtx, owner, name, contributingPaths...)
		if err != nil {
			a.degraded("contributing guide", err)
		}
		raw.HasContributing = found
		return nil
	})

	eg.Go(func() error {
		found, err := a.fetcher.FileExists(egCtx, owner, name, codeOfConductPaths...)
		if err != nil {
			a.degraded("code of conduct", err)
		}
		raw.HasCodeOfConduct = found
		return nil
	})

	eg.Go(func() error {
		count, err := a.fetcher.FetchContributorsPage(egCtx, owner, name)
		if err != nil {
			a.degraded("contributors", err)
			return nil
		}
		raw.ContributorsPage = &count
		return nil
	})

	// Only fetch the advanced samples if requested.
	if advanced {
		eg.Go(func() error {
			prs, err := a.fetcher.FetchClosedPRs(egCtx, owner, name)
			if err != nil {
				a.degraded("closed pull requests", err)
				return nil
			}
			raw.PullRequests = prs
			return nil
		})

		eg.Go(func() error {
			raw.Issues = a.collectIssueSamples(egCtx, owner, name)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.Println("Usecase: All data fetched successfully.")
	return raw, nil
}

// collectIssueSamples fetches the recent issue sample and the first comment of
// every issue that has comments. A failed comment lookup leaves FirstCommentAt nil.
func (a *Analyzer) collectIssueSamples(ctx context.Context, owner, name string) []domain.IssueSample {
	issues, err := a.fetcher.FetchRecentIssues(ctx, owner, name)
	if err != nil {
		a.degraded("recent issues", err)
		return nil
	}

	samples := make([]domain.IssueSample, len(issues))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(firstCommentConcurrency)
	for i, issue := range issues {
		samples[i] = domain.IssueSample{CreatedAt: issue.CreatedAt, Comments: issue.Comments}
		if issue.Comments == 0 {
			continue
		}
		eg.Go(func() error {
			firstCommentAt, err := a.fetcher.FetchFirstCommentTime(egCtx, owner, name, issue.Number)
			if err != nil {
				a.degraded(fmt.Sprintf("first comment of #%d", issue.Number), err)
				return nil
			}
			samples[i].FirstCommentAt = firstCommentAt
			return nil
		})
	}
	_ = eg.Wait()
	return samples
}

func (a *Analyzer) degraded(what string, err error) {
	a.logger.Printf("  Could not fetch %s, continuing without it: %v\n", what, err)
}

// SplitFullName parses "owner/name", also accepting a github.com URL.
func SplitFullName(fullName string) (owner, name string, err error) {
	trimmed := strings.TrimSpace(fullName)
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		trimmed = strings.TrimPrefix(trimmed, prefix)
	}
	trimmed = strings.TrimSuffix(strings.TrimSuffix(trimmed, "/"), ".git")

	owner, name, ok := strings.Cut(trimmed, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepositoryName, fullName)
	}
	return owner, name, nil
}
