// ABOUTME: Dashboard and advanced analytics tools
// ABOUTME: Results are the same structures the web API returns
package handlers

import (
	"context"

	"github.com/harperreed/agency/analytics"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DashboardInput struct{}

func (h *Handlers) Dashboard(ctx context.Context, _ *mcp.CallToolRequest, _ DashboardInput) (*mcp.CallToolResult, analytics.Dashboard, error) {
	d, err := analytics.LoadDashboard(ctx, h.session, h.logger)
	return nil, d, err
}

type AdvancedAnalyticsInput struct {
	Range string `json:"range,omitempty" jsonschema:"7d, 30d, 90d or 1y (default 30d)"`
}

func (h *Handlers) AdvancedAnalytics(ctx context.Context, _ *mcp.CallToolRequest, input AdvancedAnalyticsInput) (*mcp.CallToolResult, analytics.Report, error) {
	r, err := analytics.LoadAdvanced(ctx, h.session, analytics.ParseRange(input.Range), h.now(), h.logger)
	return nil, r, err
}
