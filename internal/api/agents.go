package api

import (
	"context"
	"net/url"
)

// AgentsService manages the global agent catalog.
type AgentsService struct {
	client *Client
}

// CreateAgentRequest is the payload for creating a catalog agent.
type CreateAgentRequest struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Emoji        string         `json:"emoji,omitempty"`
	Key          string         `json:"key,omitempty"`
	ToolsCode    string         `json:"tools_code,omitempty"`
	MCPConfig    map[string]any `json:"mcp_config,omitempty"`
	SelectedTool []string       `json:"selected_tools,omitempty"`
	SelectedMCPs []string       `json:"selected_mcps,omitempty"`
}

// UpdateAgentRequest is the payload for updating a catalog agent.
// Nil fields are left unchanged by the backend.
type UpdateAgentRequest struct {
	Name         *string        `json:"name,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Emoji        *string        `json:"emoji,omitempty"`
	ToolsCode    *string        `json:"tools_code,omitempty"`
	MCPConfig    map[string]any `json:"mcp_config,omitempty"`
	SelectedTool []string       `json:"selected_tools,omitempty"`
	SelectedMCPs []string       `json:"selected_mcps,omitempty"`
}

// List returns all agents in the catalog.
func (s *AgentsService) List(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	if err := s.client.get(ctx, "/agents/", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// Get returns the details of one agent.
func (s *AgentsService) Get(ctx context.Context, key string) (*Agent, error) {
	var agent Agent
	if err := s.client.get(ctx, "/agents/"+url.PathEscape(key), &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Create registers a new agent. Validation failures surface as an *APIError
// with ValidationErrors populated.
func (s *AgentsService) Create(ctx context.Context, req CreateAgentRequest) error {
	return s.client.post(ctx, "/agents/create/", req, nil)
}

// Update modifies an existing agent.
func (s *AgentsService) Update(ctx context.Context, key string, req UpdateAgentRequest) error {
	return s.client.put(ctx, "/agents/"+url.PathEscape(key)+"/", req, nil)
}

// Delete removes an agent from the catalog.
func (s *AgentsService) Delete(ctx context.Context, key string) error {
	return s.client.delete(ctx, "/agents/"+url.PathEscape(key)+"/", nil)
}

// Config returns the raw configuration of an agent.
func (s *AgentsService) Config(ctx context.Context, key string) (map[string]any, error) {
	var cfg map[string]any
	if err := s.client.get(ctx, "/agents/"+url.PathEscape(key)+"/config/", &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Status returns the runtime status of all registered agents.
func (s *AgentsService) Status(ctx context.Context) (map[string]any, error) {
	var status map[string]any
	if err := s.client.get(ctx, "/agents/status/", &status); err != nil {
		return nil, err
	}
	return status, nil
}

// Refresh asks the backend to re-scan the agent store.
func (s *AgentsService) Refresh(ctx context.Context) error {
	return s.client.post(ctx, "/agents/refresh", nil, nil)
}
