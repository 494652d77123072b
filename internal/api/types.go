package api

// Group is a named collaboration workspace containing a roster of agents,
// a message transcript, and uploaded documents.
type Group struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt float64 `json:"created_at"`
	UpdatedAt float64 `json:"updated_at"`
}

// Agent describes an entry in the agent catalog. Execution logic lives
// entirely on the backend; the client only sees the descriptive surface.
type Agent struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Emoji       string         `json:"emoji"`
	LLM         string         `json:"llm,omitempty"`
	MCPConfig   map[string]any `json:"mcp_config,omitempty"`
	ToolsCode   string         `json:"tools_code,omitempty"`
}

// Role identifies the kind of participant (or synthesized affordance) a
// message belongs to.
type Role string

const (
	RoleUser         Role = "user"
	RoleAgent        Role = "agent"
	RoleSystem       Role = "system"
	RoleToolCall     Role = "tool_call"
	RoleToolResult   Role = "tool_result"
	RoleMCPCall      Role = "mcp_call"
	RoleAgentCall    Role = "agent_call"
	RoleError        Role = "error"
	RoleAgentThought Role = "agent_thought"
)

// Message is one entry in a group transcript. Messages received over REST
// carry backend-assigned ids; messages synthesized client-side from stream
// events carry timestamp-derived ids and Synthetic set, and never round-trip
// to the backend.
type Message struct {
	ID        string         `json:"id"`
	GroupID   string         `json:"group_id"`
	Sender    string         `json:"sender"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt float64        `json:"created_at"`

	// Pending marks a local echo of a sent message that has not yet been
	// confirmed by the event stream.
	Pending bool `json:"-"`

	// Synthetic marks messages constructed from stream events (tool calls,
	// MCP calls, errors). They exist only in the in-memory transcript.
	Synthetic bool `json:"-"`
}

// Document is the metadata of a file uploaded to a group for a target agent.
// Size and date strings are computed server-side.
type Document struct {
	DocumentID     string  `json:"document_id"`
	Filename       string  `json:"filename"`
	Sender         string  `json:"sender"`
	TargetAgent    string  `json:"target_agent"`
	Size           int64   `json:"size"`
	SizeStr        string  `json:"size_str"`
	DateStr        string  `json:"date_str"`
	CreatedAt      float64 `json:"created_at"`
	FileExtension  string  `json:"file_extension"`
	ContentSummary string  `json:"content_summary,omitempty"`
}

// UploadResult is the backend's acknowledgement of a document upload.
type UploadResult struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	AgentID    string `json:"agent_id"`
	FileSize   int64  `json:"file_size"`
}

// Tool is a user-defined tool configuration managed through the backend.
type Tool struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Code        string   `json:"code"`
	Functions   []string `json:"functions"`
}

// MCPServer is the configuration of an external MCP server process the
// backend can launch on behalf of agents. Opaque to the client beyond CRUD.
type MCPServer struct {
	Command     string            `json:"command"`
	Args        []string          `json:"args,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category,omitempty"`
}

// LogSession summarizes one recorded backend session log directory.
type LogSession struct {
	SessionID       string `json:"session_id"`
	CreatedAt       string `json:"created_at"`
	ModifiedAt      string `json:"modified_at"`
	HasEvents       bool   `json:"has_events"`
	HasReadableLogs bool   `json:"has_readable_logs"`
	EventsSize      int64  `json:"events_size,omitempty"`
	SessionLogSize  int64  `json:"session_log_size,omitempty"`
}

// ValidationResult is the backend's verdict on a submitted configuration.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
