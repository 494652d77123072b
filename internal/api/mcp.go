package api

import (
	"context"
	"net/url"
)

// MCPService manages MCP server configurations. MCP servers are opaque to
// this client; the backend owns the protocol handling.
type MCPService struct {
	client *Client
}

// mcpCatalog is the wire shape of the MCP server listing.
type mcpCatalog struct {
	MCPServers map[string]MCPServer `json:"mcpServers"`
	Count      int                  `json:"count"`
}

// List returns all configured MCP servers keyed by server id.
func (s *MCPService) List(ctx context.Context) (map[string]MCPServer, error) {
	var catalog mcpCatalog
	if err := s.client.get(ctx, "/config/mcp/", &catalog); err != nil {
		return nil, err
	}
	return catalog.MCPServers, nil
}

// Add registers a new MCP server under the given id.
func (s *MCPService) Add(ctx context.Context, mcpID string, server MCPServer) error {
	return s.client.post(ctx, "/config/mcp/?mcp_id="+url.QueryEscape(mcpID), server, nil)
}

// Update replaces the configuration of an existing MCP server.
func (s *MCPService) Update(ctx context.Context, mcpID string, server MCPServer) error {
	return s.client.put(ctx, "/config/mcp/"+url.PathEscape(mcpID), server, nil)
}

// Delete removes an MCP server configuration.
func (s *MCPService) Delete(ctx context.Context, mcpID string) error {
	return s.client.delete(ctx, "/config/mcp/"+url.PathEscape(mcpID), nil)
}
