// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/contrib-scout/internal/domain"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// Sample sizes of the bounded, most-recent-first windows the scorer works on.
const (
	GoodFirstIssueLimit = 5
	ClosedPRSampleSize  = 10
	IssueSampleSize     = 20
	maxSearchResults    = 100
)

// RecentIssue is an entry of the recently updated issue sample.
type RecentIssue struct {
	Number    int
	CreatedAt time.Time
	Comments  int
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepository(ctx context.Context, owner, name string) (*domain.Repository, error)
	// FetchLatestCommitTime returns nil when the repository has no commits.
	FetchLatestCommitTime(ctx context.Context, owner, name string) (*time.Time, error)
	FetchGoodFirstIssues(ctx context.Context, owner, name string) ([]domain.GoodFirstIssue, error)
	// FileExists reports whether any of the given paths exists in the default branch.
	FileExists(ctx context.Context, owner, name string, paths ...string) (bool, error)
	// FetchContributorsPage returns the length of a contributor page of size 1.
	FetchContributorsPage(ctx context.Context, owner, name string) (int, error)
	FetchClosedPRs(ctx context.Context, owner, name string) ([]domain.PullRequestSample, error)
	FetchRecentIssues(ctx context.Context, owner, name string) ([]RecentIssue, error)
	// FetchFirstCommentTime returns nil when the issue has no comments.
	FetchFirstCommentTime(ctx context.Context, owner, name string, number int) (*time.Time, error)
	SearchRepositories(ctx context.Context, query string, limit int) ([]string, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// goodFirstIssueQuery searches open issues labeled for newcomers in one repository.
type goodFirstIssueQuery struct {
	Search struct {
		Nodes []struct {
			Issue struct {
				Title     string
				URL       string
				Number    int
				CreatedAt githubv4.DateTime
				Comments  struct {
					TotalCount int
				}
			} `graphql:"... on Issue"`
		}
	} `graphql:"search(query: $query, type: ISSUE, first: $first)"`
}

// repositorySearchQuery is used for repository discovery.
type repositorySearchQuery struct {
	Search struct {
		Nodes []struct {
			Repository struct {
				NameWithOwner string
			} `graphql:"... on Repository"`
		}
	} `graphql:"search(query: $query, type: REPOSITORY, first: $first)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) FetchRepository(ctx context.Context, owner, name string) (*domain.Repository, error) {
	g.logger.Printf("Fetching repository %s/%s...\n", owner, name)
	repo, _, err := g.restClient.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err)
	}
	result := &domain.Repository{
		FullName:    repo.GetFullName(),
		Description: repo.Description,
		Stars:       repo.GetStargazersCount(),
		Language:    repo.Language,
		URL:         repo.GetHTMLURL(),
		OpenIssues:  repo.GetOpenIssuesCount(),
		Forks:       repo.GetForksCount(),
		Topics:      repo.Topics,
	}
	if license := repo.GetLicense(); license != nil && license.Name != nil {
		result.License = license.Name
	}
	return result, nil
}

func (g *GitHubGateway) FetchLatestCommitTime(ctx context.Context, owner, name string) (*time.Time, error) {
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: 1}}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	if len(commits) == 0 {
		return nil, nil
	}
	author := commits[0].GetCommit().GetAuthor()
	if author == nil || author.Date == nil {
		return nil, nil
	}
	date := author.GetDate().Time
	return &date, nil
}

func (g *GitHubGateway) FetchGoodFirstIssues(ctx context.Context, owner, name string) ([]domain.GoodFirstIssue, error) {
	query := fmt.Sprintf(`repo:%s/%s is:issue is:open label:"good first issue","help wanted"`, owner, name)
	variables := map[string]interface{}{
		"query": githubv4.String(query),
		"first": githubv4.Int(GoodFirstIssueLimit),
	}
	var q goodFirstIssueQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for good first issues: %w", err)
	}
	issues := make([]domain.GoodFirstIssue, 0, len(q.Search.Nodes))
	for _, node := range q.Search.Nodes {
		if node.Issue.Number == 0 {
			continue // Not an issue.
		}
		issues = append(issues, domain.GoodFirstIssue{
			Title:     node.Issue.Title,
			URL:       node.Issue.URL,
			Number:    node.Issue.Number,
			CreatedAt: node.Issue.CreatedAt.Time,
			Comments:  node.Issue.Comments.TotalCount,
		})
	}
	return issues, nil
}

func (g *GitHubGateway) FileExists(ctx context.Context, owner, name string, paths ...string) (bool, error) {
	for _, path := range paths {
		_, _, resp, err := g.restClient.Repositories.GetContents(ctx, owner, name, path, nil)
		if err == nil {
			return true, nil
		}
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			continue
		}
		return false, fmt.Errorf("failed to get contents of %s: %w", path, err)
	}
	return false, nil
}

func (g *GitHubGateway) FetchContributorsPage(ctx context.Context, owner, name string) (int, error) {
	opts := &github.ListContributorsOptions{ListOptions: github.ListOptions{PerPage: 1}}
	contributors, _, err := g.restClient.Repositories.ListContributors(ctx, owner, name, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list contributors: %w", err)
	}
	return len(contributors), nil
}

func (g *GitHubGateway) FetchClosedPRs(ctx context.Context, owner, name string) ([]domain.PullRequestSample, error) {
	g.logger.Println("  Fetching closed pull requests for merge time analysis...")
	opts := &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: ClosedPRSampleSize},
	}
	prs, _, err := g.restClient.PullRequests.List(ctx, owner, name, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	samples := make([]domain.PullRequestSample, 0, len(prs))
	for _, pr := range prs {
		sample := domain.PullRequestSample{CreatedAt: pr.GetCreatedAt().Time}
		if pr.MergedAt != nil {
			mergedAt := pr.GetMergedAt().Time
			sample.MergedAt = &mergedAt
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (g *GitHubGateway) FetchRecentIssues(ctx context.Context, owner, name string) ([]RecentIssue, error) {
	g.logger.Println("  Fetching recent issues for response time analysis...")
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: IssueSampleSize},
	}
	issues, _, err := g.restClient.Issues.ListByRepo(ctx, owner, name, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	recent := make([]RecentIssue, 0, len(issues))
	for _, issue := range issues {
		recent = append(recent, RecentIssue{
			Number:    issue.GetNumber(),
			CreatedAt: issue.GetCreatedAt().Time,
			Comments:  issue.GetComments(),
		})
	}
	return recent, nil
}

func (g *GitHubGateway) FetchFirstCommentTime(ctx context.Context, owner, name string, number int) (*time.Time, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 1}}
	comments, _, err := g.restClient.Issues.ListComments(ctx, owner, name, number, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of issue #%d: %w", number, err)
	}
	if len(comments) == 0 {
		return nil, nil
	}
	createdAt := comments[0].GetCreatedAt().Time
	return &createdAt, nil
}

// SearchRepositories returns the owner/name of up to limit repositories matching query.
func (g *GitHubGateway) SearchRepositories(ctx context.Context, query string, limit int) ([]string, error) {
	g.logger.Printf("Searching repositories: %s\n", query)
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	variables := map[string]interface{}{
		"query": githubv4.String(query),
		"first": githubv4.Int(limit),
	}
	var q repositorySearchQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL query for repository search: %w", err)
	}
	names := make([]string, 0, len(q.Search.Nodes))
	for _, node := range q.Search.Nodes {
		if node.Repository.NameWithOwner != "" {
			names = append(names, node.Repository.NameWithOwner)
		}
	}
	g.logger.Printf("Found %d repositories.\n", len(names))
	return names, nil
}
