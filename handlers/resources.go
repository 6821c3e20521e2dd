// ABOUTME: MCP resources exposing each collection as read-only JSON
// ABOUTME: URIs are crm://<collection>, scoped to the session principal
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/agency/gateway"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "crm://"

func (h *Handlers) registerResources(server *mcp.Server) {
	for _, c := range gateway.Collections {
		server.AddResource(&mcp.Resource{
			URI:         uriScheme + string(c),
			Name:        string(c),
			Description: fmt.Sprintf("Your %s records", strings.ReplaceAll(string(c), "_", " ")),
			MIMEType:    "application/json",
		}, h.ReadResource)
	}
}

// ReadResource serves crm://<collection>.
func (h *Handlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}
	c, err := gateway.ParseCollection(strings.Trim(strings.TrimPrefix(uri, uriScheme), "/"))
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	rows, err := h.ownedRows(ctx, c)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", c, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
