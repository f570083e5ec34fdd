package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const recentHistoryLimit = 10

func (h *handlers) workoutTypes(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, map[string]any{
		"types":     h.deps.Catalog.Types(),
		"templates": h.deps.Catalog.Templates(),
	})
}

func (h *handlers) recentHistory(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rows, err := h.deps.History.QueryHistory(ctx, h.user(ctx).ID, recentHistoryLimit)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, rows)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
