package domain

import (
	"sort"
	"time"
)

// Assemble builds a fully scored RepositoryAnalysis from raw inputs.
// now is used to compute the days since the last commit; the result depends
// on nothing else, so identical arguments produce identical records.
func Assemble(raw RawInputs, now time.Time, cfg ScoringConfig) *RepositoryAnalysis {
	repo := raw.Repository
	analysis := &RepositoryAnalysis{
		Name:             repo.FullName,
		Stars:            repo.Stars,
		Language:         repo.Language,
		URL:              repo.URL,
		OpenIssues:       repo.OpenIssues,
		Forks:            repo.Forks,
		HasContributing:  raw.HasContributing,
		HasCodeOfConduct: raw.HasCodeOfConduct,
		License:          repo.License,
		Contributors:     EstimateContributors(raw.ContributorsPage),
		GoodFirstIssues:  append([]GoodFirstIssue{}, raw.GoodFirstIssues...),
		Topics:           append([]string{}, repo.Topics...),
	}
	if repo.Description != nil {
		analysis.Description = *repo.Description
	}
	if raw.LastCommitAt != nil {
		days := DaysSince(*raw.LastCommitAt, now)
		analysis.DaysSinceLastCommit = &days
	}
	analysis.Active = cfg.IsActive(analysis.DaysSinceLastCommit)

	if raw.Advanced {
		prStats := AggregatePRMergeTime(raw.PullRequests)
		issueStats := AggregateIssueResponse(raw.Issues)
		analysis.PRStats = &prStats
		analysis.IssueResponseStats = &issueStats
	}

	analysis.ActivityScore = cfg.OverallScore(analysis)
	return analysis
}

// DaysSince returns the number of whole days elapsed between t and now.
// A t in the future yields 0.
func DaysSince(t, now time.Time) int {
	d := now.Sub(t)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// SortByScore orders analyses by activity score, highest first.
// Equal scores are ordered by repository name.
func SortByScore(analyses []*RepositoryAnalysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		if analyses[i].ActivityScore != analyses[j].ActivityScore {
			return analyses[i].ActivityScore > analyses[j].ActivityScore
		}
		return analyses[i].Name < analyses[j].Name
	})
}
