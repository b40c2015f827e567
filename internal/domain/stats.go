package domain

import (
	"time"

	"github.com/montanaflynn/stats"
)

// PRStats summarizes how fast recently closed pull requests were merged.
type PRStats struct {
	AvgMergeTimeDays *float64 `json:"avg_merge_time_days"`
	MergedCount      int      `json:"merged_count"`
}

// IssueResponseStats summarizes how fast recently updated issues got a first reply.
type IssueResponseStats struct {
	AvgResponseTimeHours *float64 `json:"avg_response_time_hours"`
	// ResponseRate is the percentage (0-100) of examined issues with a known first comment.
	ResponseRate int `json:"response_rate"`
}

// PullRequestSample holds the timestamps needed to compute merge time for one PR.
type PullRequestSample struct {
	CreatedAt time.Time
	MergedAt  *time.Time
}

// IssueSample holds the timestamps needed to compute first response time for one issue.
type IssueSample struct {
	CreatedAt time.Time
	Comments  int
	// FirstCommentAt is nil when the issue has no comments or the lookup failed.
	FirstCommentAt *time.Time
}

// AggregatePRMergeTime averages merge time in days over the merged PRs of the sample.
// The sample is a recent window, not full history.
func AggregatePRMergeTime(prs []PullRequestSample) PRStats {
	var days stats.Float64Data
	for _, pr := range prs {
		if pr.MergedAt == nil {
			continue
		}
		days = append(days, pr.MergedAt.Sub(pr.CreatedAt).Hours()/24)
	}
	if len(days) == 0 {
		return PRStats{}
	}
	avg := meanRounded(days)
	return PRStats{AvgMergeTimeDays: &avg, MergedCount: len(days)}
}

// AggregateIssueResponse averages first response time in hours and computes the
// share of examined issues that got a response.
//
// The rate denominator is the whole sample: an issue with comments whose first
// comment could not be fetched counts as unanswered.
func AggregateIssueResponse(issues []IssueSample) IssueResponseStats {
	var hours stats.Float64Data
	for _, issue := range issues {
		if issue.Comments == 0 || issue.FirstCommentAt == nil {
			continue
		}
		hours = append(hours, issue.FirstCommentAt.Sub(issue.CreatedAt).Hours())
	}
	if len(hours) == 0 {
		return IssueResponseStats{}
	}
	avg := meanRounded(hours)
	rate, _ := stats.Round(float64(len(hours))/float64(len(issues))*100, 0)
	return IssueResponseStats{AvgResponseTimeHours: &avg, ResponseRate: int(rate)}
}

// EstimateContributors turns a page-size-1 contributor listing into a coarse
// indicator: "10+" when anything came back, "0" when empty, nil when unknown.
// It is a presence signal, not a count.
func EstimateContributors(pageCount *int) *string {
	if pageCount == nil {
		return nil
	}
	indicator := "0"
	if *pageCount > 0 {
		indicator = "10+"
	}
	return &indicator
}

func meanRounded(data stats.Float64Data) float64 {
	// Mean only fails on empty input, which callers rule out.
	avg, _ := stats.Mean(data)
	return round1(avg)
}
