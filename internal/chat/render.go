package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"agentverse/internal/api"
)

// roleColors maps message roles to their sender color. Lifecycle roles
// render dim so agent chatter stays visually distinct from tool noise.
var roleColors = map[api.Role]text.Color{
	api.RoleUser:         text.FgHiGreen,
	api.RoleAgent:        text.FgHiCyan,
	api.RoleSystem:       text.FgYellow,
	api.RoleToolCall:     text.FgHiBlack,
	api.RoleToolResult:   text.FgHiBlack,
	api.RoleMCPCall:      text.FgHiBlack,
	api.RoleAgentCall:    text.FgHiBlack,
	api.RoleAgentThought: text.FgHiBlack,
	api.RoleError:        text.FgHiRed,
}

// FormatMessage renders one transcript entry as a terminal line.
//
//	12:04:31 researcher ▸ found three papers on the topic
//
// Lifecycle messages (tool calls, MCP calls, errors) carry their own icons
// in the content; only the sender column is colored for them.
func FormatMessage(msg api.Message, color bool) string {
	ts := formatTimestamp(msg.CreatedAt)
	sender := msg.Sender
	if sender == "" {
		sender = string(msg.Role)
	}

	content := msg.Content
	if msg.Pending {
		content += " …"
	}

	if color {
		c, ok := roleColors[msg.Role]
		if !ok {
			c = text.FgWhite
		}
		sender = c.Sprint(sender)
		ts = text.FgHiBlack.Sprint(ts)
	}

	line := fmt.Sprintf("%s %s ▸ %s", ts, sender, indentContinuations(content))
	return line
}

// formatTimestamp renders an epoch-seconds timestamp as local wall time.
func formatTimestamp(epoch float64) string {
	if epoch <= 0 {
		return time.Now().Format("15:04:05")
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).Format("15:04:05")
}

// indentContinuations keeps multi-line content aligned under the first line.
func indentContinuations(content string) string {
	return strings.ReplaceAll(content, "\n", "\n           ")
}
