// ABOUTME: In-process query evaluation for backends without server-side filtering
// ABOUTME: Filters, orders and limits rows according to a Query
package gateway

import (
	"fmt"
	"sort"
)

// Apply filters, sorts and limits rows in place of a query engine.
func Apply(rows []Row, q Query) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if Matches(row, q) {
			out = append(out, row)
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			if q.Desc {
				return lessValues(out[j][q.OrderBy], out[i][q.OrderBy])
			}
			return lessValues(out[i][q.OrderBy], out[j][q.OrderBy])
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func lessValues(a, b any) bool {
	af, aNum := normalize(a).(float64)
	bf, bNum := normalize(b).(float64)
	if aNum && bNum {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
