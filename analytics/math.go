// ABOUTME: Small numeric helpers shared by stats and analytics
// ABOUTME: Percentages never divide by zero and top-N ranking is deterministic
package analytics

import (
	"math"
	"sort"
)

// Percent is num/den as a rounded whole percentage, 0 when den is 0.
func Percent(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den) * 100))
}

// Ratio is num/den, 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Count is one bucket in a ranked breakdown.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TopN ranks counts descending, breaking ties by key, and keeps the first n.
// n <= 0 keeps everything.
func TopN(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for k, c := range counts {
		out = append(out, Count{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
