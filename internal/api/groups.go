package api

import (
	"context"
	"fmt"
	"net/url"
)

// GroupsService manages the group catalog and per-group agent rosters.
type GroupsService struct {
	client *Client
}

// List returns all groups.
func (s *GroupsService) List(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := s.client.doTagged(ctx, "groups:list", "GET", "/groups/", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Create creates a new group with the given name and returns it.
func (s *GroupsService) Create(ctx context.Context, name string) (*Group, error) {
	body := map[string]string{"name": name}
	var group Group
	if err := s.client.post(ctx, "/groups/", body, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Delete permanently deletes a group and all its associated data.
func (s *GroupsService) Delete(ctx context.Context, groupID string) error {
	return s.client.delete(ctx, "/groups/"+url.PathEscape(groupID), nil)
}

// ListAgents returns the agents currently assigned to a group.
func (s *GroupsService) ListAgents(ctx context.Context, groupID string) ([]Agent, error) {
	var agents []Agent
	tag := fmt.Sprintf("group-agents:%s", groupID)
	path := "/groups/" + url.PathEscape(groupID) + "/agents"
	if err := s.client.doTagged(ctx, tag, "GET", path, nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// AddAgent assigns an agent to a group.
func (s *GroupsService) AddAgent(ctx context.Context, groupID, agentKey string) error {
	body := map[string]string{"agent_key": agentKey}
	return s.client.post(ctx, "/groups/"+url.PathEscape(groupID)+"/agents", body, nil)
}

// RemoveAgent removes an agent from a group.
func (s *GroupsService) RemoveAgent(ctx context.Context, groupID, agentKey string) error {
	path := "/groups/" + url.PathEscape(groupID) + "/agents/" + url.PathEscape(agentKey)
	return s.client.delete(ctx, path, nil)
}
