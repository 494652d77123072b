package api

import "context"

// ValidationService exposes the backend's pre-save configuration validators.
// These back the form editors: a rejected payload carries field-level
// messages so the UI can annotate individual inputs.
type ValidationService struct {
	client *Client
}

// ValidateAgent validates an agent configuration without saving it.
func (s *ValidationService) ValidateAgent(ctx context.Context, config map[string]any) (*ValidationResult, error) {
	var result ValidationResult
	if err := s.client.post(ctx, "/config/validate/agent/", config, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateTool validates a tool configuration without saving it.
func (s *ValidationService) ValidateTool(ctx context.Context, tool Tool) (*ValidationResult, error) {
	var result ValidationResult
	if err := s.client.post(ctx, "/config/validate/tool/", tool, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateToolCode runs the backend's static checks on tool source code.
func (s *ValidationService) ValidateToolCode(ctx context.Context, code string) (*ValidationResult, error) {
	var result ValidationResult
	body := map[string]string{"code": code}
	if err := s.client.post(ctx, "/config/validate/tool/code/", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateMCP validates an MCP server configuration without saving it.
func (s *ValidationService) ValidateMCP(ctx context.Context, server MCPServer) (*ValidationResult, error) {
	var result ValidationResult
	if err := s.client.post(ctx, "/config/validate/mcp/", server, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TestMCPConnectivity asks the backend to spawn the configured MCP server
// and confirm it answers a handshake.
func (s *ValidationService) TestMCPConnectivity(ctx context.Context, server MCPServer) (*ValidationResult, error) {
	var result ValidationResult
	if err := s.client.post(ctx, "/config/validate/mcp/connectivity/", server, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ToolTemplates returns starter templates for tool definitions.
func (s *ValidationService) ToolTemplates(ctx context.Context) (map[string]any, error) {
	var templates map[string]any
	if err := s.client.get(ctx, "/config/validate/templates/tools/", &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// MCPTemplates returns starter templates for MCP server definitions.
func (s *ValidationService) MCPTemplates(ctx context.Context) (map[string]any, error) {
	var templates map[string]any
	if err := s.client.get(ctx, "/config/validate/templates/mcp/", &templates); err != nil {
		return nil, err
	}
	return templates, nil
}
