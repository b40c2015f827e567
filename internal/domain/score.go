package domain

import "github.com/montanaflynn/stats"

// Tier maps every value strictly below Below to Score.
type Tier struct {
	Below int
	Score int
}

// Weights are the contributions of each sub-score to the overall score.
// They are expected to sum to 1.
type Weights struct {
	Activity        float64
	Popularity      float64
	IssueHealth     float64
	Contributing    float64
	GoodFirstIssues float64
}

// ScoringConfig holds every threshold and weight used by the metric functions.
// It is a plain value: copy it and change a field to try another scheme.
type ScoringConfig struct {
	Weights Weights

	// ActiveBelowDays is the exclusive commit age under which a repository is active.
	ActiveBelowDays int

	ActivityTiers    []Tier
	ActivityFallback int

	PopularityTiers    []Tier
	PopularityFallback int

	OpenIssueTiers    []Tier
	OpenIssueFallback int

	// GoodFirstIssueFactor multiplies the good-first-issue count in both the
	// issue health and the volume sub-scores.
	GoodFirstIssueFactor int
	GoodFirstHealthCap   int
	GoodFirstVolumeCap   int
	IssueHealthCap       int

	// ContributingScore is awarded when a contributing guide exists.
	ContributingScore int
}

// DefaultScoringConfig returns the standard contribution-friendliness scheme.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: Weights{
			Activity:        0.30,
			Popularity:      0.20,
			IssueHealth:     0.15,
			Contributing:    0.15,
			GoodFirstIssues: 0.20,
		},
		ActiveBelowDays: 30,
		ActivityTiers: []Tier{
			{Below: 7, Score: 10},
			{Below: 30, Score: 8},
			{Below: 90, Score: 5},
			{Below: 180, Score: 3},
		},
		ActivityFallback: 1,
		PopularityTiers: []Tier{
			{Below: 10, Score: 1},
			{Below: 50, Score: 3},
			{Below: 100, Score: 4},
			{Below: 500, Score: 6},
			{Below: 1000, Score: 7},
			{Below: 5000, Score: 8},
			{Below: 10000, Score: 9},
		},
		PopularityFallback: 10,
		OpenIssueTiers: []Tier{
			{Below: 10, Score: 5},
			{Below: 50, Score: 4},
			{Below: 100, Score: 3},
			{Below: 500, Score: 2},
		},
		OpenIssueFallback:    1,
		GoodFirstIssueFactor: 2,
		GoodFirstHealthCap:   5,
		GoodFirstVolumeCap:   10,
		IssueHealthCap:       10,
		ContributingScore:    10,
	}
}

func tierScore(tiers []Tier, v, fallback int) int {
	for _, t := range tiers {
		if v < t.Below {
			return t.Score
		}
	}
	return fallback
}

// IsActive reports whether the last commit is known and recent enough.
func (c ScoringConfig) IsActive(daysSinceCommit *int) bool {
	return daysSinceCommit != nil && *daysSinceCommit < c.ActiveBelowDays
}

// ActivityScore scores commit recency. Unknown recency scores 0.
func (c ScoringConfig) ActivityScore(daysSinceCommit *int) int {
	if daysSinceCommit == nil {
		return 0
	}
	return tierScore(c.ActivityTiers, *daysSinceCommit, c.ActivityFallback)
}

// PopularityScore scores the star count on a stepped, roughly logarithmic scale.
func (c ScoringConfig) PopularityScore(stars int) int {
	return tierScore(c.PopularityTiers, stars, c.PopularityFallback)
}

// IssueHealthScore rewards good first issues and penalizes large open backlogs.
func (c ScoringConfig) IssueHealthScore(openIssues, goodFirstIssues int) int {
	goodFirst := min(goodFirstIssues*c.GoodFirstIssueFactor, c.GoodFirstHealthCap)
	backlog := tierScore(c.OpenIssueTiers, openIssues, c.OpenIssueFallback)
	return min(goodFirst+backlog, c.IssueHealthCap)
}

// GoodFirstIssueVolumeScore scores the number of good first issues.
func (c ScoringConfig) GoodFirstIssueVolumeScore(goodFirstIssues int) int {
	return min(goodFirstIssues*c.GoodFirstIssueFactor, c.GoodFirstVolumeCap)
}

// OverallScore combines the weighted sub-scores of an analysis into a 0-10
// value with one decimal.
func (c ScoringConfig) OverallScore(a *RepositoryAnalysis) float64 {
	goodFirst := len(a.GoodFirstIssues)
	contributing := 0
	if a.HasContributing {
		contributing = c.ContributingScore
	}

	sum := float64(c.ActivityScore(a.DaysSinceLastCommit))*c.Weights.Activity +
		float64(c.PopularityScore(a.Stars))*c.Weights.Popularity +
		float64(c.IssueHealthScore(a.OpenIssues, goodFirst))*c.Weights.IssueHealth +
		float64(contributing)*c.Weights.Contributing +
		float64(c.GoodFirstIssueVolumeScore(goodFirst))*c.Weights.GoodFirstIssues

	return round1(sum)
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	// Round only fails on NaN, which the sums here never produce.
	r, _ := stats.Round(v, 1)
	return r
}
