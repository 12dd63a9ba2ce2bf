package matching

import "sort"

// RankBase keeps the scores with totalBase >= minScore, orders them by
// totalBase descending and returns at most limit of them. limit <= 0 keeps
// all. Ties are broken by vendor name, then id.
func RankBase(scores []BaseScore, limit, minScore int) []BaseScore {
	out := make([]BaseScore, 0, len(scores))
	for _, s := range scores {
		if s.TotalBase >= minScore {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalBase != b.TotalBase {
			return a.TotalBase > b.TotalBase
		}
		if a.VendorName != b.VendorName {
			return a.VendorName < b.VendorName
		}
		return a.VendorID < b.VendorID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SortMatches orders matches by totalScore descending, then totalBase
// descending, then vendor name and id.
func SortMatches(m []VendorMatchScore) {
	sort.SliceStable(m, func(i, j int) bool {
		a, b := m[i], m[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.Base.TotalBase != b.Base.TotalBase {
			return a.Base.TotalBase > b.Base.TotalBase
		}
		if a.VendorName != b.VendorName {
			return a.VendorName < b.VendorName
		}
		return a.VendorID < b.VendorID
	})
}
