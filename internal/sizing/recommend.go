package sizing

import "math"

// RowScore is the deviation of one size from the category profile.
type RowScore struct {
	Size string `json:"size"`
	// Deviation is the sum of absolute differences over matched dimensions.
	Deviation float64 `json:"deviation"`
	Matched   int     `json:"matched"`
}

// Scorable reports whether at least one dimension could be compared.
func (s RowScore) Scorable() bool {
	return s.Matched > 0
}

// Score compares every row of the table with the profile of the category.
// Dimensions of different scale are summed without normalisation.
func Score(table *Table, profile Profile, category string) []RowScore {
	stats, ok := profile[category]
	if !ok || table == nil {
		return nil
	}

	keys := stats.Dimensions()
	// header -> profile key, resolved once per table
	resolved := make([]string, len(table.Headers))
	for idx, header := range table.Headers {
		if key, ok := MatchHeader(header, keys); ok {
			resolved[idx] = key
		}
	}

	scores := make([]RowScore, 0, len(table.Rows))
	for _, row := range table.Rows {
		score := RowScore{Size: row.Name}
		for idx, key := range resolved {
			if key == "" {
				continue
			}
			v, ok := row.Value(idx)
			if !ok {
				continue
			}
			score.Deviation += math.Abs(v - stats[key].Avg)
			score.Matched++
		}
		scores = append(scores, score)
	}
	return scores
}

// Recommend returns the size whose measurements deviate least from the
// category profile. Ties go to the earlier row. It reports false when the
// category has no profile or no row shares a dimension with it.
func Recommend(table *Table, profile Profile, category string) (string, bool) {
	return Best(Score(table, profile, category))
}

// Best picks the scorable row with the smallest deviation.
func Best(scores []RowScore) (string, bool) {
	best := -1
	for i, s := range scores {
		if !s.Scorable() {
			continue
		}
		if best == -1 || s.Deviation < scores[best].Deviation {
			best = i
		}
	}
	if best == -1 {
		return "", false
	}
	return scores[best].Size, true
}
