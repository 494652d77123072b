package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"agentverse/internal/api"
	"agentverse/pkg/logging"
)

// mentionMarker is the substring an agent message must contain to count as
// addressing the user directly.
const mentionMarker = "@user"

// Streamer is the connection lifecycle surface the store drives when the
// selected group changes. Satisfied by stream.Manager.
type Streamer interface {
	Connect(ctx context.Context, groupID string) error
	Disconnect()
}

// Notifier receives user-facing side effects emitted by store actions.
// Implementations must be fast; they are called from the store's hot path.
type Notifier interface {
	// MentionDetected fires when an agent addresses the user directly.
	MentionDetected(groupID, sender string, sound bool)

	// ActivityObserved fires on every accepted transcript append. The chat
	// UI uses it to clear its typing indicator, making it the async
	// completion signal for a pending send.
	ActivityObserved(groupID string)
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier installs the side-effect sink.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// Store is the single source of truth for groups, the active group's
// agents/messages/documents, and load/selection orchestration.
//
// All mutation happens inside action methods under one mutex; the event
// stream manager and the UI both go through the same action surface. A
// Store is constructed per use, there is no package-level instance.
type Store struct {
	client   *api.Client
	stream   Streamer
	notifier Notifier

	mu sync.Mutex

	// epoch increments on every selection change. Collection loads capture
	// it at dispatch; a result whose epoch no longer matches is stale and
	// dropped, so a late response from a deselected group can never
	// overwrite the current group's state.
	epoch uint64

	groups    Resource[[]api.Group]
	selected  *api.Group
	agents    Resource[[]api.Agent]
	messages  Resource[[]api.Message]
	documents Resource[[]api.Document]
}

// New creates a store backed by the given API client.
func New(client *api.Client, opts ...Option) *Store {
	s := &Store{client: client}
	s.groups.reset()
	s.agents.reset()
	s.messages.reset()
	s.documents.reset()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetStreamer wires the event stream manager. Separate from New because the
// manager itself needs the store as its action surface.
func (s *Store) SetStreamer(st Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stream = st
}

// Groups returns a snapshot of the group catalog wrapper.
func (s *Store) Groups() Resource[[]api.Group] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.groups)
}

// Selected returns the currently selected group, or nil.
func (s *Store) Selected() *api.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	g := *s.selected
	return &g
}

// Agents returns a snapshot of the active group's roster wrapper.
func (s *Store) Agents() Resource[[]api.Agent] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.agents)
}

// Messages returns a snapshot of the active group's transcript wrapper.
func (s *Store) Messages() Resource[[]api.Message] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.messages)
}

// Documents returns a snapshot of the active group's document wrapper.
func (s *Store) Documents() Resource[[]api.Document] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.documents)
}

// LoadGroups fetches the group catalog. Errors are captured in the wrapper,
// never returned; callers render the error state instead of handling it.
func (s *Store) LoadGroups(ctx context.Context) {
	s.mu.Lock()
	s.groups.setLoading()
	s.mu.Unlock()

	groups, err := s.client.Groups.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		logging.Warn("Store", "failed to load groups: %v", err)
		s.groups.setError(err)
		return
	}
	s.groups.setSuccess(groups)
}

// CreateGroup creates a group and appends it to the catalog. Write errors
// are logged and returned so callers can react synchronously.
func (s *Store) CreateGroup(ctx context.Context, name string) (*api.Group, error) {
	group, err := s.client.Groups.Create(ctx, name)
	if err != nil {
		logging.Error("Store", err, "failed to create group %q", name)
		return nil, err
	}
	s.mu.Lock()
	s.groups.Data = append(s.groups.Data, *group)
	s.groups.LastUpdated = time.Now()
	s.mu.Unlock()
	return group, nil
}

// DeleteGroup deletes a group. Deleting the selected group clears the
// selection first.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	selectedID := ""
	if s.selected != nil {
		selectedID = s.selected.ID
	}
	s.mu.Unlock()
	if selectedID == groupID {
		s.SetSelectedGroup(ctx, nil)
	}

	if err := s.client.Groups.Delete(ctx, groupID); err != nil {
		logging.Error("Store", err, "failed to delete group %s", groupID)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.groups.Data[:0]
	for _, g := range s.groups.Data {
		if g.ID != groupID {
			kept = append(kept, g)
		}
	}
	s.groups.Data = kept
	s.groups.LastUpdated = time.Now()
	return nil
}

// SetSelectedGroup switches the active group. The ordering is an invariant:
// disconnect the old stream, cancel stale loads, clear group-scoped state,
// set the selection, load collections, then connect the new stream.
// Clearing before loading prevents a late response from the previous group
// from overwriting freshly cleared state; the epoch check closes the rest
// of that race window.
func (s *Store) SetSelectedGroup(ctx context.Context, group *api.Group) {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()
	if stream != nil {
		stream.Disconnect()
	}
	s.client.CancelAllRequests()

	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.agents.reset()
	s.messages.reset()
	s.documents.reset()
	if group == nil {
		s.selected = nil
		s.mu.Unlock()
		return
	}
	g := *group
	s.selected = &g
	s.agents.setLoading()
	s.messages.setLoading()
	s.documents.setLoading()
	groupID := g.ID
	s.mu.Unlock()

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		agents, err := s.client.Groups.ListAgents(gctx, groupID)
		s.finishAgents(epoch, agents, err)
		return nil
	})
	grp.Go(func() error {
		messages, err := s.client.Chat.Messages(gctx, groupID)
		s.finishMessages(epoch, messages, err)
		return nil
	})
	grp.Go(func() error {
		docs, err := s.client.Chat.Documents(gctx, groupID)
		s.finishDocuments(epoch, docs, err)
		return nil
	})
	_ = grp.Wait()

	// The user may have switched again while loads were in flight.
	s.mu.Lock()
	stale := s.epoch != epoch
	stream = s.stream
	s.mu.Unlock()
	if stale || stream == nil {
		return
	}
	if err := stream.Connect(ctx, groupID); err != nil {
		logging.Warn("Store", "failed to open event stream for group %s: %v", groupID, err)
	}
}

func (s *Store) finishAgents(epoch uint64, agents []api.Agent, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		logging.Debug("Store", "dropping stale agent roster response")
		return
	}
	if err != nil {
		s.agents.setError(err)
		return
	}
	s.agents.setSuccess(agents)
}

func (s *Store) finishMessages(epoch uint64, messages []api.Message, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		logging.Debug("Store", "dropping stale transcript response")
		return
	}
	if err != nil {
		s.messages.setError(err)
		return
	}
	s.messages.setSuccess(messages)
}

func (s *Store) finishDocuments(epoch uint64, docs []api.Document, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		logging.Debug("Store", "dropping stale document list response")
		return
	}
	if err != nil {
		s.documents.setError(err)
		return
	}
	s.documents.setSuccess(docs)
}

// ReloadAgents re-fetches the active group's roster. No-op without a
// selection. Driven by agent_added/agent_removed stream events.
func (s *Store) ReloadAgents(ctx context.Context) {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return
	}
	epoch, groupID := s.epoch, s.selected.ID
	s.mu.Unlock()

	agents, err := s.client.Groups.ListAgents(ctx, groupID)
	s.finishAgents(epoch, agents, err)
}

// ReloadMessages re-fetches the active group's transcript.
func (s *Store) ReloadMessages(ctx context.Context) {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return
	}
	epoch, groupID := s.epoch, s.selected.ID
	s.mu.Unlock()

	messages, err := s.client.Chat.Messages(ctx, groupID)
	s.finishMessages(epoch, messages, err)
}

// ReloadDocuments re-fetches the active group's document list. Driven by
// document_uploaded stream events.
func (s *Store) ReloadDocuments(ctx context.Context) {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return
	}
	epoch, groupID := s.epoch, s.selected.ID
	s.mu.Unlock()

	docs, err := s.client.Chat.Documents(ctx, groupID)
	s.finishDocuments(epoch, docs, err)
}

// AddMessage is the single mutation point for transcript appends. Messages
// without a role are dropped with a warning; they would corrupt the
// transcript. The stream echo of a pending local send is deduplicated
// instead of appended twice.
func (s *Store) AddMessage(msg api.Message) bool {
	if msg.Role == "" {
		logging.Warn("Store", "dropping message without role from %q", msg.Sender)
		return false
	}

	s.mu.Lock()
	if !msg.Synthetic && msg.Role == api.RoleUser {
		for i := range s.messages.Data {
			m := &s.messages.Data[i]
			if m.Pending && m.Role == api.RoleUser && echoMatches(msg.Content, m.Content) {
				m.Pending = false
				if msg.CreatedAt > 0 {
					m.CreatedAt = msg.CreatedAt
				}
				s.mu.Unlock()
				s.observeActivity(msg.GroupID)
				return true
			}
		}
	}
	s.messages.Data = append(s.messages.Data, msg)
	s.messages.LastUpdated = time.Now()
	mention := msg.Role == api.RoleAgent && strings.Contains(msg.Content, mentionMarker)
	s.mu.Unlock()

	if mention {
		s.notifyMention(msg.GroupID, msg.Sender, true)
	}
	s.observeActivity(msg.GroupID)
	return true
}

// NotifyMention forwards a user_mention stream event to the notifier.
func (s *Store) NotifyMention(groupID string, sound bool) {
	s.notifyMention(groupID, "", sound)
}

func (s *Store) notifyMention(groupID, sender string, sound bool) {
	if s.notifier != nil {
		s.notifier.MentionDetected(groupID, sender, sound)
	}
}

func (s *Store) observeActivity(groupID string) {
	if s.notifier != nil {
		s.notifier.ActivityObserved(groupID)
	}
}

// SendMessage submits a message and appends an immediate local echo with a
// pending flag. The echo is reconciled against the eventual stream echo in
// AddMessage. On a REST failure the echo is removed and the error returned.
func (s *Store) SendMessage(ctx context.Context, groupID, agentID, text string) error {
	echo := api.Message{
		ID:        api.NewLocalMessageID(),
		GroupID:   groupID,
		Sender:    "user",
		Role:      api.RoleUser,
		Content:   text,
		CreatedAt: float64(time.Now().UnixNano()) / float64(time.Second),
		Pending:   true,
	}

	s.mu.Lock()
	echoed := s.selected != nil && s.selected.ID == groupID
	if echoed {
		s.messages.Data = append(s.messages.Data, echo)
		s.messages.LastUpdated = time.Now()
	}
	s.mu.Unlock()

	if err := s.client.Chat.Send(ctx, groupID, agentID, text); err != nil {
		logging.Error("Store", err, "failed to send message to group %s", groupID)
		if echoed {
			s.removeMessage(echo.ID)
		}
		return err
	}
	return nil
}

func (s *Store) removeMessage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.messages.Data[:0]
	for _, m := range s.messages.Data {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.messages.Data = kept
}

// echoMatches reports whether a stream echo corresponds to a pending local
// message. The backend may prepend an @mention to the sent text, so a
// suffix match is accepted.
func echoMatches(echo, pending string) bool {
	return echo == pending || strings.HasSuffix(echo, pending)
}

// StopAgents halts the agent response chain for a group.
func (s *Store) StopAgents(ctx context.Context, groupID string) error {
	if err := s.client.Chat.Stop(ctx, groupID); err != nil {
		logging.Error("Store", err, "failed to stop agent chain for group %s", groupID)
		return err
	}
	return nil
}

// AddAgentToGroup assigns an agent and refreshes the roster.
func (s *Store) AddAgentToGroup(ctx context.Context, groupID, agentKey string) error {
	if err := s.client.Groups.AddAgent(ctx, groupID, agentKey); err != nil {
		logging.Error("Store", err, "failed to add agent %s to group %s", agentKey, groupID)
		return err
	}
	s.ReloadAgents(ctx)
	return nil
}

// RemoveAgentFromGroup removes an agent and refreshes the roster.
func (s *Store) RemoveAgentFromGroup(ctx context.Context, groupID, agentKey string) error {
	if err := s.client.Groups.RemoveAgent(ctx, groupID, agentKey); err != nil {
		logging.Error("Store", err, "failed to remove agent %s from group %s", agentKey, groupID)
		return err
	}
	s.ReloadAgents(ctx)
	return nil
}

// UploadDocument uploads a file for a target agent and appends the
// resulting document metadata on success. The stream's document_uploaded
// event will later replace the appended stub with the server's view.
func (s *Store) UploadDocument(ctx context.Context, groupID string, req api.UploadRequest) (*api.UploadResult, error) {
	result, err := s.client.Chat.UploadDocument(ctx, groupID, req)
	if err != nil {
		logging.Error("Store", err, "failed to upload %s to group %s", req.Filename, groupID)
		s.mu.Lock()
		s.documents.setError(err)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.documents.Data = append(s.documents.Data, api.Document{
		DocumentID:  result.DocumentID,
		Filename:    result.Filename,
		Sender:      "user",
		TargetAgent: result.AgentID,
		Size:        result.FileSize,
		CreatedAt:   float64(time.Now().UnixNano()) / float64(time.Second),
	})
	s.documents.Status = StatusSuccess
	s.documents.Err = ""
	s.documents.LastUpdated = time.Now()
	s.mu.Unlock()
	return result, nil
}
