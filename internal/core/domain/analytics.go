package domain

import (
	"math"
	"sort"
)

// DecadeCount is one bar of the crashes-per-decade histogram.
type DecadeCount struct {
	Decade int `json:"decade"`
	Count  int `json:"count"`
}

// Summary aggregates the currently displayed subset of the dataset.
type Summary struct {
	Count             int           `json:"count"`
	TotalFatalities   int           `json:"total_fatalities"`
	AverageFatalities float64       `json:"average_fatalities"`
	Decades           []DecadeCount `json:"decades"`
}

// Summarize computes totals and the per-decade histogram in a single pass.
// The average is rounded to one decimal and is 0 for an empty subset.
// Decades are sorted numerically ascending; sorting the labels as strings
// would misorder datasets spanning year ranges of different digit counts.
func Summarize(records []CrashRecord) Summary {
	s := Summary{Count: len(records)}

	byDecade := make(map[int]int)
	for _, r := range records {
		s.TotalFatalities += r.Fatalities
		byDecade[r.Year/10*10]++
	}

	if s.Count > 0 {
		avg := float64(s.TotalFatalities) / float64(s.Count)
		s.AverageFatalities = math.Round(avg*10) / 10
	}

	s.Decades = make([]DecadeCount, 0, len(byDecade))
	for decade, count := range byDecade {
		s.Decades = append(s.Decades, DecadeCount{Decade: decade, Count: count})
	}
	sort.Slice(s.Decades, func(i, j int) bool {
		return s.Decades[i].Decade < s.Decades[j].Decade
	})

	return s
}
