package api

import (
	"context"
	"net/url"
	"strconv"
)

// LogsService reads the backend's session log archive and reports
// client-side errors back to it.
type LogsService struct {
	client *Client
}

// SessionLogFilter narrows a session log query. Zero values mean no filter.
type SessionLogFilter struct {
	Format    string // "json" or "human"
	Limit     int
	Level     string
	EventType string
	AgentID   string
	From      string // ISO timestamp
	To        string // ISO timestamp
}

func (f SessionLogFilter) query() string {
	q := url.Values{}
	if f.Format != "" {
		q.Set("format", f.Format)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Level != "" {
		q.Set("level", f.Level)
	}
	if f.EventType != "" {
		q.Set("event_type", f.EventType)
	}
	if f.AgentID != "" {
		q.Set("agent_id", f.AgentID)
	}
	if f.From != "" {
		q.Set("from_timestamp", f.From)
	}
	if f.To != "" {
		q.Set("to_timestamp", f.To)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Sessions lists all recorded log sessions, newest first.
func (s *LogsService) Sessions(ctx context.Context) ([]LogSession, error) {
	var wrapper struct {
		Sessions []LogSession `json:"sessions"`
	}
	if err := s.client.get(ctx, "/logs/sessions", &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Sessions, nil
}

// SessionLogs returns the structured log entries of one session.
func (s *LogsService) SessionLogs(ctx context.Context, sessionID string, filter SessionLogFilter) (map[string]any, error) {
	var result map[string]any
	path := "/logs/sessions/" + url.PathEscape(sessionID) + filter.query()
	if err := s.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SessionSummary returns aggregate counts for one session.
func (s *LogsService) SessionSummary(ctx context.Context, sessionID string) (map[string]any, error) {
	var result map[string]any
	if err := s.client.get(ctx, "/logs/sessions/"+url.PathEscape(sessionID)+"/summary", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SessionPerformance returns timing and token statistics for one session.
func (s *LogsService) SessionPerformance(ctx context.Context, sessionID string) (map[string]any, error) {
	var result map[string]any
	if err := s.client.get(ctx, "/logs/sessions/"+url.PathEscape(sessionID)+"/performance", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteSession removes a session's logs from the archive.
func (s *LogsService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.client.delete(ctx, "/logs/sessions/"+url.PathEscape(sessionID), nil)
}

// Export downloads a session's logs in the requested format ("json" or "csv").
func (s *LogsService) Export(ctx context.Context, sessionID, format string) (map[string]any, error) {
	var result map[string]any
	path := "/logs/export/" + url.PathEscape(sessionID) + "?format=" + url.QueryEscape(format)
	if err := s.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplicationLogs tails the backend application log.
func (s *LogsService) ApplicationLogs(ctx context.Context, limit int) (map[string]any, error) {
	var result map[string]any
	path := "/logs/application"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	if err := s.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// StartupLogs returns the backend's startup validation log.
func (s *LogsService) StartupLogs(ctx context.Context) (map[string]any, error) {
	var result map[string]any
	if err := s.client.get(ctx, "/logs/startup", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ClientEvent is a client-side diagnostic reported to the backend so UI
// failures show up in the same log archive as backend events.
type ClientEvent struct {
	Kind    string         `json:"kind"` // "error" or "event"
	Where   string         `json:"where"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// ReportClientEvent forwards a client-side error or event to the backend log.
// Best-effort: failures are logged by the client and otherwise swallowed,
// diagnostics must never break the caller.
func (s *LogsService) ReportClientEvent(ctx context.Context, event ClientEvent) {
	_ = s.client.post(ctx, "/logs/client", event, nil)
}
