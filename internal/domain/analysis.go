// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// RepositoryAnalysis is the scored snapshot of a single repository.
// It is the core domain entity of this application.
type RepositoryAnalysis struct {
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	Stars               int                 `json:"stars"`
	Language            *string             `json:"language,omitempty"`
	DaysSinceLastCommit *int                `json:"days_since_last_commit,omitempty"`
	Active              bool                `json:"active"`
	URL                 string              `json:"url"`
	OpenIssues          int                 `json:"open_issues"`
	Forks               int                 `json:"forks"`
	HasContributing     bool                `json:"has_contributing"`
	HasCodeOfConduct    bool                `json:"has_code_of_conduct"`
	License             *string             `json:"license,omitempty"`
	Contributors        *string             `json:"contributors,omitempty"`
	GoodFirstIssues     []GoodFirstIssue    `json:"good_first_issues"`
	Topics              []string            `json:"topics"`
	ActivityScore       float64             `json:"activity_score"`
	PRStats             *PRStats            `json:"pr_stats,omitempty"`
	IssueResponseStats  *IssueResponseStats `json:"issue_response_stats,omitempty"`
}

// GoodFirstIssue summarizes an open issue labeled for newcomers.
type GoodFirstIssue struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	Comments  int       `json:"comments"`
}

// Repository holds the repository fields as returned by the API.
type Repository struct {
	FullName    string
	Description *string
	Stars       int
	Language    *string
	URL         string
	OpenIssues  int
	Forks       int
	Topics      []string
	License     *string
}

// RawInputs is everything fetched for one repository before scoring.
// Absent values have already been normalized to nil by the caller.
type RawInputs struct {
	Repository       Repository
	LastCommitAt     *time.Time
	GoodFirstIssues  []GoodFirstIssue
	HasContributing  bool
	HasCodeOfConduct bool
	// ContributorsPage is the number of entries returned by a contributor
	// listing of page size 1, or nil when that listing failed.
	ContributorsPage *int

	// Advanced is set when PR merge and issue response analytics were requested.
	Advanced     bool
	PullRequests []PullRequestSample
	Issues       []IssueSample
}
