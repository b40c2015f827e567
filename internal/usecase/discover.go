package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/naka-gawa/contrib-scout/internal/domain"
	"github.com/naka-gawa/contrib-scout/internal/gateway"
)

// SearchCriteria narrows repository discovery. Zero values are ignored.
type SearchCriteria struct {
	Language           string
	Topic              string
	MinStars           int
	MinGoodFirstIssues int
	PushedWithinDays   int
	Limit              int
}

// Query renders the criteria as a GitHub search query.
func (c SearchCriteria) Query(now time.Time) string {
	terms := []string{"archived:false"}
	if c.Language != "" {
		terms = append(terms, "language:"+c.Language)
	}
	if c.Topic != "" {
		terms = append(terms, "topic:"+c.Topic)
	}
	if c.MinStars > 0 {
		terms = append(terms, fmt.Sprintf("stars:>=%d", c.MinStars))
	}
	if c.MinGoodFirstIssues > 0 {
		terms = append(terms, fmt.Sprintf("good-first-issues:>=%d", c.MinGoodFirstIssues))
	}
	if c.PushedWithinDays > 0 {
		since := now.AddDate(0, 0, -c.PushedWithinDays)
		// NOTE: GitHub search expects plain dates here.
		terms = append(terms, "pushed:>="+since.Format("2006-01-02"))
	}
	return strings.Join(terms, " ")
}

// Discoverer is the use case for finding contribution candidates.
type Discoverer struct {
	fetcher  gateway.Fetcher
	analyzer *Analyzer
	logger   *log.Logger
}

// NewDiscoverer creates a new Discoverer instance.
func NewDiscoverer(fetcher gateway.Fetcher, analyzer *Analyzer, logger *log.Logger) *Discoverer {
	return &Discoverer{
		fetcher:  fetcher,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Discover searches repositories matching the criteria, analyzes each of them
// and returns them ranked by score. Repositories that fail to analyze are skipped.
func (d *Discoverer) Discover(ctx context.Context, criteria SearchCriteria, advanced bool) ([]*domain.RepositoryAnalysis, error) {
	query := criteria.Query(d.analyzer.now())
	names, err := d.fetcher.SearchRepositories(ctx, query, criteria.Limit)
	if err != nil {
		return nil, err
	}
	d.logger.Printf("Usecase: Discovered %d repositories.\n", len(names))

	results, err := d.analyzer.AnalyzeAll(ctx, names, advanced)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		d.logger.Printf("Usecase: Some repositories were skipped: %v\n", err)
	}
	return results, nil
}
