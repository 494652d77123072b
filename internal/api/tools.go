package api

import (
	"context"
	"net/url"
)

// ToolsService manages user-defined tool configurations.
type ToolsService struct {
	client *Client
}

// toolCatalog is the wire shape of the tools listing.
type toolCatalog struct {
	Tools map[string]Tool `json:"tools"`
	Count int             `json:"count"`
}

// List returns all configured tools keyed by tool id.
func (s *ToolsService) List(ctx context.Context) (map[string]Tool, error) {
	var catalog toolCatalog
	if err := s.client.get(ctx, "/config/tools/", &catalog); err != nil {
		return nil, err
	}
	return catalog.Tools, nil
}

// Add registers a new tool under the given id. The id travels as a query
// parameter, matching the backend's endpoint signature.
func (s *ToolsService) Add(ctx context.Context, toolID string, tool Tool) error {
	return s.client.post(ctx, "/config/tools/?tool_id="+url.QueryEscape(toolID), tool, nil)
}

// Update replaces the configuration of an existing tool.
func (s *ToolsService) Update(ctx context.Context, toolID string, tool Tool) error {
	return s.client.put(ctx, "/config/tools/"+url.PathEscape(toolID), tool, nil)
}

// Delete removes a tool configuration.
func (s *ToolsService) Delete(ctx context.Context, toolID string) error {
	return s.client.delete(ctx, "/config/tools/"+url.PathEscape(toolID), nil)
}
