package stream

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"agentverse/internal/api"
	"agentverse/pkg/logging"
)

// ConnState is the lifecycle state of the group event connection.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Source opens the raw event stream for a group. Satisfied by
// api.ChatService.
type Source interface {
	OpenEvents(ctx context.Context, groupID string) (io.ReadCloser, error)
}

// Actions is the mutation surface the manager drives. Every inbound event
// translates into exactly one of these calls; the manager never touches
// state directly. Satisfied by store.Store.
type Actions interface {
	// AddMessage appends a message to the active transcript. Returns false
	// if the message was rejected (e.g. missing role).
	AddMessage(msg api.Message) bool

	// ReloadAgents re-fetches the active group's agent roster.
	ReloadAgents(ctx context.Context)

	// ReloadDocuments re-fetches the active group's document list.
	ReloadDocuments(ctx context.Context)

	// NotifyMention signals that the user was addressed directly.
	NotifyMention(groupID string, sound bool)
}

// Option configures a Manager.
type Option func(*Manager)

// WithOnError installs a diagnostic callback for transport failures.
// The manager itself never reconnects; recovery policy belongs to the
// caller.
func WithOnError(fn func(groupID string, err error)) Option {
	return func(m *Manager) {
		m.onError = fn
	}
}

// WithOnStateChange installs a callback invoked on every connection state
// transition.
func WithOnStateChange(fn func(state ConnState)) Option {
	return func(m *Manager) {
		m.onState = fn
	}
}

// Manager owns at most one live SSE connection and translates inbound
// events into store mutations. Connecting to a new group always tears down
// the previous connection first.
type Manager struct {
	source  Source
	actions Actions
	onError func(groupID string, err error)
	onState func(state ConnState)

	state atomic.Int32

	mu      sync.Mutex
	groupID string
	cancel  context.CancelFunc
	body    io.ReadCloser
	done    chan struct{}
}

// NewManager creates a manager reading from source and mutating through
// actions.
func NewManager(source Source, actions Actions, opts ...Option) *Manager {
	m := &Manager{
		source:  source,
		actions: actions,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current connection state.
func (m *Manager) State() ConnState {
	return ConnState(m.state.Load())
}

// GroupID returns the group of the active connection, or "" when
// disconnected.
func (m *Manager) GroupID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groupID
}

func (m *Manager) setState(s ConnState) {
	if ConnState(m.state.Swap(int32(s))) == s {
		return
	}
	if m.onState != nil {
		m.onState(s)
	}
}

// Connect opens the event stream for groupID. Any existing connection is
// closed first; there is never more than one live connection per manager.
func (m *Manager) Connect(ctx context.Context, groupID string) error {
	m.Disconnect()

	m.setState(StateConnecting)
	streamCtx, cancel := context.WithCancel(ctx)

	body, err := m.source.OpenEvents(streamCtx, groupID)
	if err != nil {
		cancel()
		m.setState(StateDisconnected)
		return fmt.Errorf("failed to open event stream for group %s: %w", groupID, err)
	}

	done := make(chan struct{})
	m.mu.Lock()
	m.groupID = groupID
	m.cancel = cancel
	m.body = body
	m.done = done
	m.mu.Unlock()

	logging.Debug("Stream", "event stream opened for group %s", groupID)
	go m.readLoop(streamCtx, groupID, body, done)
	return nil
}

// Disconnect closes the active connection. Safe to call when nothing is
// connected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	cancel, body, done := m.cancel, m.body, m.done
	m.cancel, m.body, m.done = nil, nil, nil
	m.groupID = ""
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	body.Close()
	<-done
	m.setState(StateDisconnected)
}

func (m *Manager) readLoop(ctx context.Context, groupID string, body io.ReadCloser, done chan struct{}) {
	defer close(done)
	defer body.Close()

	reader := newFrameReader(body)
	for {
		payload, err := reader.Next()
		if err != nil {
			if ctx.Err() == nil {
				// Transport failure, not a deliberate disconnect.
				logging.Warn("Stream", "connection to group %s lost: %v", groupID, err)
				if m.onError != nil {
					m.onError(groupID, err)
				}
			}
			m.setState(StateDisconnected)
			return
		}
		m.handleFrame(ctx, groupID, payload)
	}
}

// handleFrame decodes one frame and applies its effect. Parse failures are
// logged and skipped; the connection stays open.
func (m *Manager) handleFrame(ctx context.Context, groupID string, payload []byte) {
	evt, err := Decode(payload)
	if err != nil {
		logging.Warn("Stream", "dropping unparseable frame from group %s: %v", groupID, err)
		return
	}

	// Any successfully decoded event confirms the connection.
	if m.State() == StateConnecting {
		m.setState(StateConnected)
	}

	switch evt := evt.(type) {
	case ConnectedEvent:
		// Acknowledgement only; the state transition above covers it.

	case MessageEvent:
		m.actions.AddMessage(api.Message{
			ID:        api.NewLocalMessageID(),
			GroupID:   groupID,
			Sender:    evt.Sender,
			Role:      api.Role(evt.Role),
			Content:   evt.Content,
			CreatedAt: eventTime(evt.Timestamp),
		})

	case RosterEvent:
		// Roster events are infrequent; a full re-fetch keeps the client
		// consistent without incremental patch logic.
		m.actions.ReloadAgents(ctx)

	case DocumentUploadedEvent:
		m.actions.ReloadDocuments(ctx)

	case ToolCallEvent:
		m.appendSynthetic(groupID, evt.AgentKey, api.RoleToolCall,
			fmt.Sprintf("🔧 Tool call: %s [%s]", evt.Tool, evt.Status))

	case ToolResultEvent:
		m.appendSynthetic(groupID, evt.AgentKey, api.RoleToolResult,
			fmt.Sprintf("🧾 Tool result: %s: %s", evt.Tool, evt.Excerpt))

	case MCPCallEvent:
		m.appendSynthetic(groupID, evt.AgentKey, api.RoleMCPCall,
			fmt.Sprintf("🔌 MCP call: %s/%s [%s]", evt.Server, evt.Tool, evt.Status))

	case AgentCallEvent:
		m.appendSynthetic(groupID, evt.Caller, api.RoleAgentCall,
			fmt.Sprintf("🤝 Agent call: %s -> %s [%s]", evt.Caller, evt.Callee, evt.Status))

	case ErrorEvent:
		m.appendSynthetic(groupID, "system", api.RoleError,
			fmt.Sprintf("❌ Error in %s: %s", evt.Where, evt.Message))

	case UserMentionEvent:
		m.actions.NotifyMention(groupID, evt.Sound)

	case UnknownEvent:
		logging.Debug("Stream", "ignoring unknown event type %q from group %s", evt.RawType, groupID)
	}
}

// appendSynthetic appends a locally constructed, never-persisted message.
// These are visual/log affordances derived from lifecycle events.
func (m *Manager) appendSynthetic(groupID, sender string, role api.Role, content string) {
	if sender == "" {
		sender = "system"
	}
	m.actions.AddMessage(api.Message{
		ID:        api.NewLocalMessageID(),
		GroupID:   groupID,
		Sender:    sender,
		Role:      role,
		Content:   content,
		CreatedAt: eventTime(0),
		Synthetic: true,
	})
}

func eventTime(ts float64) float64 {
	if ts > 0 {
		return ts
	}
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
