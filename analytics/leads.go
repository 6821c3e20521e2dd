// ABOUTME: Lead generator usage stats over saved lead lists
// ABOUTME: Totals, average leads per list and the most used niches
package analytics

import (
	"context"
	"math"

	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/models"
	"github.com/harperreed/agency/transform"
	"go.uber.org/zap"
)

// TopNiches is how many niches LeadStats ranks.
const TopNiches = 5

type LeadStats struct {
	TotalLists     int     `json:"totalLists"`
	TotalLeads     int     `json:"totalLeads"`
	AveragePerList int     `json:"averageLeadsPerList"`
	TopNiches      []Count `json:"topNiches"`
}

func LoadLeadStats(ctx context.Context, s *gateway.Session, logger *zap.Logger) (LeadStats, error) {
	p, err := s.Principal(ctx)
	if err != nil {
		return LeadStats{}, err
	}
	lists := list(ctx, s.Gateway(), gateway.LeadLists, gateway.Owned(p.ID), transform.LeadListToView, orNop(logger))
	return ComputeLeadStats(lists), nil
}

func ComputeLeadStats(lists []models.LeadList) LeadStats {
	st := LeadStats{TotalLists: len(lists)}
	niches := map[string]int{}
	for _, l := range lists {
		st.TotalLeads += l.TotalLeads
		niches[l.Niche]++
	}
	st.AveragePerList = int(math.Round(Ratio(float64(st.TotalLeads), float64(st.TotalLists))))
	st.TopNiches = TopN(niches, TopNiches)
	return st
}
