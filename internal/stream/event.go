package stream

import (
	"encoding/json"
	"fmt"
)

// EventType is the discriminator carried in every stream frame.
type EventType string

const (
	EventConnected        EventType = "connected"
	EventMessage          EventType = "message"
	EventAgentAdded       EventType = "agent_added"
	EventAgentRemoved     EventType = "agent_removed"
	EventDocumentUploaded EventType = "document_uploaded"
	EventToolCall         EventType = "tool_call"
	EventToolResult       EventType = "tool_result"
	EventMCPCall          EventType = "mcp_call"
	EventAgentCall        EventType = "agent_call"
	EventUserMention      EventType = "user_mention"
	EventError            EventType = "error"
)

// Event is the decoded form of one stream frame. The concrete type is one
// variant per recognized event kind, or UnknownEvent for anything the server
// sends that this client does not know yet.
type Event interface {
	Type() EventType
}

// envelope is the outer wire shape shared by every frame.
type envelope struct {
	Type              string          `json:"type"`
	GroupID           string          `json:"group_id"`
	AgentKey          string          `json:"agent_key"`
	Timestamp         float64         `json:"timestamp"`
	SoundNotification bool            `json:"sound_notification"`
	Payload           json.RawMessage `json:"payload"`
}

// ConnectedEvent is the backend's stream-open acknowledgement.
type ConnectedEvent struct {
	GroupID   string
	Timestamp float64
}

func (ConnectedEvent) Type() EventType { return EventConnected }

// MessageEvent carries a chat message pushed by the backend. Role may be
// empty on malformed frames; the store enforces the drop rule.
type MessageEvent struct {
	GroupID   string
	AgentKey  string
	Sender    string
	Role      string
	Content   string
	Timestamp float64
}

func (MessageEvent) Type() EventType { return EventMessage }

// RosterEvent signals that an agent joined or left the group.
type RosterEvent struct {
	GroupID  string
	AgentKey string
	Removed  bool
}

func (e RosterEvent) Type() EventType {
	if e.Removed {
		return EventAgentRemoved
	}
	return EventAgentAdded
}

// DocumentUploadedEvent signals a new document in the group.
type DocumentUploadedEvent struct {
	GroupID  string
	AgentKey string
}

func (DocumentUploadedEvent) Type() EventType { return EventDocumentUploaded }

// ToolCallEvent reports an agent invoking a tool.
type ToolCallEvent struct {
	GroupID  string
	AgentKey string
	Tool     string
	Status   string
}

func (ToolCallEvent) Type() EventType { return EventToolCall }

// ToolResultEvent reports a tool invocation finishing, with an excerpt of
// its output.
type ToolResultEvent struct {
	GroupID  string
	AgentKey string
	Tool     string
	Excerpt  string
}

func (ToolResultEvent) Type() EventType { return EventToolResult }

// MCPCallEvent reports an agent invoking a tool on an MCP server.
type MCPCallEvent struct {
	GroupID  string
	AgentKey string
	Server   string
	Tool     string
	Status   string
}

func (MCPCallEvent) Type() EventType { return EventMCPCall }

// AgentCallEvent reports one agent handing off to another.
type AgentCallEvent struct {
	GroupID string
	Caller  string
	Callee  string
	Status  string
}

func (AgentCallEvent) Type() EventType { return EventAgentCall }

// UserMentionEvent signals that an agent addressed the user directly.
type UserMentionEvent struct {
	GroupID  string
	AgentKey string
	Sound    bool
}

func (UserMentionEvent) Type() EventType { return EventUserMention }

// ErrorEvent reports a backend-side failure tied to the group.
type ErrorEvent struct {
	GroupID string
	Where   string
	Message string
}

func (ErrorEvent) Type() EventType { return EventError }

// UnknownEvent preserves frames with an unrecognized type discriminator.
// They are logged and otherwise ignored, keeping the client forward
// compatible with server additions.
type UnknownEvent struct {
	RawType EventType
	GroupID string
	Payload json.RawMessage
}

func (e UnknownEvent) Type() EventType { return e.RawType }

// Decode parses one raw stream frame into its typed variant. Frames that are
// not valid JSON return an error; frames with an unknown type decode into
// UnknownEvent. Payload fields that are missing simply stay zero so the
// consumer can apply its own drop rules.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed stream frame: %w", err)
	}

	payload := func(out any) {
		if len(env.Payload) > 0 {
			// Payload shape errors are not fatal; missing fields stay zero.
			_ = json.Unmarshal(env.Payload, out)
		}
	}

	switch EventType(env.Type) {
	case EventConnected:
		return ConnectedEvent{GroupID: env.GroupID, Timestamp: env.Timestamp}, nil

	case EventMessage:
		var p struct {
			Sender  string `json:"sender"`
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		payload(&p)
		return MessageEvent{
			GroupID:   env.GroupID,
			AgentKey:  env.AgentKey,
			Sender:    p.Sender,
			Role:      p.Role,
			Content:   p.Content,
			Timestamp: env.Timestamp,
		}, nil

	case EventAgentAdded, EventAgentRemoved:
		var p struct {
			AgentKey string `json:"agent_key"`
		}
		payload(&p)
		key := p.AgentKey
		if key == "" {
			key = env.AgentKey
		}
		return RosterEvent{
			GroupID:  env.GroupID,
			AgentKey: key,
			Removed:  EventType(env.Type) == EventAgentRemoved,
		}, nil

	case EventDocumentUploaded:
		return DocumentUploadedEvent{GroupID: env.GroupID, AgentKey: env.AgentKey}, nil

	case EventToolCall:
		var p struct {
			Tool   string `json:"tool"`
			Status string `json:"status"`
		}
		payload(&p)
		return ToolCallEvent{GroupID: env.GroupID, AgentKey: env.AgentKey, Tool: p.Tool, Status: p.Status}, nil

	case EventToolResult:
		var p struct {
			Tool    string `json:"tool"`
			Excerpt string `json:"excerpt"`
		}
		payload(&p)
		return ToolResultEvent{GroupID: env.GroupID, AgentKey: env.AgentKey, Tool: p.Tool, Excerpt: p.Excerpt}, nil

	case EventMCPCall:
		var p struct {
			Server string `json:"server"`
			Tool   string `json:"tool"`
			Status string `json:"status"`
		}
		payload(&p)
		return MCPCallEvent{GroupID: env.GroupID, AgentKey: env.AgentKey, Server: p.Server, Tool: p.Tool, Status: p.Status}, nil

	case EventAgentCall:
		var p struct {
			Caller string `json:"caller"`
			Callee string `json:"callee"`
			Status string `json:"status"`
		}
		payload(&p)
		return AgentCallEvent{GroupID: env.GroupID, Caller: p.Caller, Callee: p.Callee, Status: p.Status}, nil

	case EventUserMention:
		return UserMentionEvent{GroupID: env.GroupID, AgentKey: env.AgentKey, Sound: env.SoundNotification}, nil

	case EventError:
		var p struct {
			Where   string `json:"where"`
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		payload(&p)
		msg := p.Message
		if msg == "" {
			msg = p.Error
		}
		return ErrorEvent{GroupID: env.GroupID, Where: p.Where, Message: msg}, nil

	default:
		return UnknownEvent{RawType: EventType(env.Type), GroupID: env.GroupID, Payload: env.Payload}, nil
	}
}
