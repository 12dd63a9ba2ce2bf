package matching

import "time"

// MatchRun is one invocation of the full matching pipeline.
type MatchRun struct {
	ID           string             `json:"id"`
	AssessmentID string             `json:"assessmentId"`
	PrioritiesID string             `json:"prioritiesId"`
	GeneratedAt  time.Time          `json:"generatedAt"`
	Matches      []VendorMatchScore `json:"matches"`
}

// RankEntry is one row of a cached ranking.
type RankEntry struct {
	Rank       int    `json:"rank"`
	VendorID   string `json:"vendorId"`
	VendorName string `json:"vendorName"`
	TotalScore int    `json:"totalScore"`
}

// Entries flattens the run's matches into 1-based ranked rows.
func (r MatchRun) Entries(limit int) []RankEntry {
	n := len(r.Matches)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]RankEntry, n)
	for i := 0; i < n; i++ {
		m := r.Matches[i]
		out[i] = RankEntry{Rank: i + 1, VendorID: m.VendorID, VendorName: m.VendorName, TotalScore: m.TotalScore}
	}
	return out
}
