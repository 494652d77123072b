package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"agentverse/pkg/logging"
)

// ChatService covers the conversational surface of a group: the message
// transcript, document uploads, and the per-group event stream.
type ChatService struct {
	client *Client
}

// messageRecord is the wire shape of a persisted message. The backend
// assigns integer sequence numbers as ids; the client works with string ids
// so locally synthesized messages fit the same type.
type messageRecord struct {
	ID        json.Number    `json:"id"`
	GroupID   string         `json:"group_id"`
	Sender    string         `json:"sender"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt float64        `json:"created_at"`
}

// Messages returns the full transcript of a group in server order.
func (s *ChatService) Messages(ctx context.Context, groupID string) ([]Message, error) {
	var records []messageRecord
	tag := fmt.Sprintf("group-messages:%s", groupID)
	path := "/groups/" + url.PathEscape(groupID) + "/messages"
	if err := s.client.doTagged(ctx, tag, "GET", path, nil, &records); err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(records))
	for _, r := range records {
		messages = append(messages, Message{
			ID:        r.ID.String(),
			GroupID:   r.GroupID,
			Sender:    r.Sender,
			Role:      r.Role,
			Content:   r.Content,
			Metadata:  r.Metadata,
			CreatedAt: r.CreatedAt,
		})
	}
	return messages, nil
}

// Send submits a message addressed to an agent in the group. The backend
// routes it through the orchestrator; delivery back to the transcript happens
// asynchronously via the event stream.
func (s *ChatService) Send(ctx context.Context, groupID, agentID, text string) error {
	body := map[string]string{
		"agent_id": agentID,
		"message":  text,
	}
	return s.client.post(ctx, "/groups/"+url.PathEscape(groupID)+"/messages", body, nil)
}

// Stop halts the agent response chain for a group.
func (s *ChatService) Stop(ctx context.Context, groupID string) error {
	return s.client.post(ctx, "/groups/"+url.PathEscape(groupID)+"/stop", nil, nil)
}

// Documents returns the documents uploaded to a group.
func (s *ChatService) Documents(ctx context.Context, groupID string) ([]Document, error) {
	var docs []Document
	tag := fmt.Sprintf("group-documents:%s", groupID)
	path := "/groups/" + url.PathEscape(groupID) + "/documents"
	if err := s.client.doTagged(ctx, tag, "GET", path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ProgressFunc reports upload progress as bytes sent out of a total.
type ProgressFunc func(sent, total int64)

// UploadRequest describes a document upload. Content is read fully while
// building the multipart body; the backend caps uploads at 10MB.
type UploadRequest struct {
	AgentID  string
	Filename string
	Content  io.Reader
	Message  string
	Progress ProgressFunc
}

// UploadDocument uploads a file to a group for processing by a target agent.
// The multipart form carries the fields file, agent_id and optional message.
func (s *ChatService) UploadDocument(ctx context.Context, groupID string, req UploadRequest) (*UploadResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.Filename, err)
	}
	if err := form.WriteField("agent_id", req.AgentID); err != nil {
		return nil, err
	}
	if req.Message != "" {
		if err := form.WriteField("message", req.Message); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	total := int64(buf.Len())
	body := &progressReader{reader: &buf, total: total, progress: req.Progress}

	// Uploads get double the regular timeout; document processing happens
	// inline on the backend before the response returns.
	reqCtx, cancel := context.WithTimeout(ctx, 2*s.client.timeout)
	defer cancel()

	endpoint := s.client.baseURL + apiPrefix + "/groups/" + url.PathEscape(groupID) + "/documents/upload/"
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")
	httpReq.ContentLength = total

	start := time.Now()
	logging.Debug("API", "uploading %s (%d bytes) to group %s for agent %s", req.Filename, total, groupID, req.AgentID)

	resp, err := s.client.httpClient.Do(httpReq)
	if err != nil {
		logging.Error("API", err, "upload of %s failed", req.Filename)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		apiErr := parseAPIError(resp.StatusCode, data)
		logging.Error("API", apiErr, "upload of %s rejected", req.Filename)
		return nil, apiErr
	}

	var result UploadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	logging.Debug("API", "upload of %s completed in %s", req.Filename, time.Since(start).Round(time.Millisecond))
	return &result, nil
}

// OpenEvents opens the SSE stream of events for a group. Frames are
// newline-delimited "data: <json>" blocks as emitted by the backend.
func (s *ChatService) OpenEvents(ctx context.Context, groupID string) (io.ReadCloser, error) {
	return s.client.openStream(ctx, "/groups/"+url.PathEscape(groupID)+"/events")
}

// progressReader wraps a reader and reports cumulative bytes read.
type progressReader struct {
	reader   io.Reader
	total    int64
	sent     int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}
