package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"agentverse/internal/api"
)

func TestFormatMessage(t *testing.T) {
	msg := api.Message{
		Sender:    "researcher",
		Role:      api.RoleAgent,
		Content:   "found three papers",
		CreatedAt: 1700000000,
	}

	line := FormatMessage(msg, false)
	assert.Contains(t, line, "researcher ▸ found three papers")
}

func TestFormatMessagePendingMarker(t *testing.T) {
	msg := api.Message{Sender: "user", Role: api.RoleUser, Content: "hello", Pending: true}
	assert.Contains(t, FormatMessage(msg, false), "hello …")
}

func TestFormatMessageFallsBackToRole(t *testing.T) {
	msg := api.Message{Role: api.RoleSystem, Content: "group created"}
	assert.Contains(t, FormatMessage(msg, false), "system ▸")
}

func TestFormatMessageMultiline(t *testing.T) {
	msg := api.Message{Sender: "bot", Role: api.RoleAgent, Content: "line one\nline two"}
	line := FormatMessage(msg, false)
	assert.True(t, strings.Contains(line, "line one\n"), "keeps line break")
	assert.Contains(t, line, "           line two", "continuation is indented")
}

func TestTruncateGroupName(t *testing.T) {
	assert.Equal(t, "short", truncateGroupName("short"))

	long := "production-research-collective-east"
	got := truncateGroupName(long)
	assert.LessOrEqual(t, len(got), maxGroupNameLength)
	assert.Contains(t, got, "...")
	assert.True(t, strings.HasPrefix(long, got[:5]))
	assert.True(t, strings.HasSuffix(long, got[len(got)-5:]))
}
