package sizing

import (
	"math"
	"sort"
)

// DefaultCategory is the aggregation key for garments without a top-level category.
const DefaultCategory = "기타"

// Garment is the view of a wardrobe entry the aggregator needs.
type Garment interface {
	Category() string
	// Fit reports whether the garment was marked as fitting well and in which size.
	Fit() (good bool, size string)
	Measurements() *Table
}

// Stat summarises one dimension of a category profile.
type Stat struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Stats maps dimension names to their summary.
type Stats map[string]Stat

// Profile maps a garment category to the ideal measurements observed in it.
type Profile map[string]Stats

type accumulator struct {
	sum   float64
	count int
	min   float64
	max   float64
}

func (a *accumulator) add(v float64) {
	if a.count == 0 {
		a.min, a.max = v, v
	}
	a.sum += v
	a.count++
	a.min = math.Min(a.min, v)
	a.max = math.Max(a.max, v)
}

// ComputeIdealSize builds the per-category profile from garments marked as a
// good fit. Garments without a usable row or with non-numeric cells only shrink
// the sample; they never fail the computation. A nil profile means no garment
// qualified.
func ComputeIdealSize[G Garment](items []G) Profile {
	acc := make(map[string]map[string]*accumulator)

	for _, item := range items {
		good, size := item.Fit()
		table := item.Measurements()
		if !good || size == "" || table == nil {
			continue
		}

		row, ok := table.Row(size)
		if !ok {
			continue
		}

		category := item.Category()
		if category == "" {
			category = DefaultCategory
		}

		for idx, header := range table.Headers {
			v, ok := row.Value(idx)
			if !ok {
				continue
			}
			dims, ok := acc[category]
			if !ok {
				dims = make(map[string]*accumulator)
				acc[category] = dims
			}
			a, ok := dims[header]
			if !ok {
				a = &accumulator{}
				dims[header] = a
			}
			a.add(v)
		}
	}

	if len(acc) == 0 {
		return nil
	}

	profile := make(Profile, len(acc))
	for category, dims := range acc {
		stats := make(Stats, len(dims))
		for header, a := range dims {
			stats[header] = Stat{
				Avg: round1(a.sum / float64(a.count)),
				Min: a.min,
				Max: a.max,
			}
		}
		profile[category] = stats
	}
	return profile
}

// Categories returns the profile categories in lexical order.
func (p Profile) Categories() []string {
	return sortedKeys(p)
}

// Dimensions returns the dimension names in lexical order.
func (s Stats) Dimensions() []string {
	return sortedKeys(s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
