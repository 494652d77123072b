package stream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessageEvent(t *testing.T) {
	frame := `{"type":"message","group_id":"g1","agent_key":"bot","timestamp":1700000000.5,` +
		`"payload":{"sender":"bot","role":"agent","content":"hello"}}`

	evt, err := Decode([]byte(frame))
	require.NoError(t, err)

	msg, ok := evt.(MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "g1", msg.GroupID)
	assert.Equal(t, "bot", msg.Sender)
	assert.Equal(t, "agent", msg.Role)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, 1700000000.5, msg.Timestamp)
}

func TestDecodeMessageEventMissingPayloadFields(t *testing.T) {
	evt, err := Decode([]byte(`{"type":"message","group_id":"g1","payload":{"content":"x"}}`))
	require.NoError(t, err)

	msg, ok := evt.(MessageEvent)
	require.True(t, ok)
	assert.Empty(t, msg.Role)
	assert.Equal(t, "x", msg.Content)
}

func TestDecodeRosterEvents(t *testing.T) {
	evt, err := Decode([]byte(`{"type":"agent_added","group_id":"g1","payload":{"agent_key":"researcher"}}`))
	require.NoError(t, err)
	roster, ok := evt.(RosterEvent)
	require.True(t, ok)
	assert.Equal(t, "researcher", roster.AgentKey)
	assert.False(t, roster.Removed)
	assert.Equal(t, EventAgentAdded, roster.Type())

	// agent_key may ride in the envelope instead of the payload
	evt, err = Decode([]byte(`{"type":"agent_removed","group_id":"g1","agent_key":"researcher"}`))
	require.NoError(t, err)
	roster, ok = evt.(RosterEvent)
	require.True(t, ok)
	assert.Equal(t, "researcher", roster.AgentKey)
	assert.True(t, roster.Removed)
	assert.Equal(t, EventAgentRemoved, roster.Type())
}

func TestDecodeUserMention(t *testing.T) {
	evt, err := Decode([]byte(`{"type":"user_mention","group_id":"g1","agent_key":"bot","sound_notification":true}`))
	require.NoError(t, err)

	mention, ok := evt.(UserMentionEvent)
	require.True(t, ok)
	assert.Equal(t, "bot", mention.AgentKey)
	assert.True(t, mention.Sound)
}

func TestDecodeErrorEventFallsBackToErrorField(t *testing.T) {
	evt, err := Decode([]byte(`{"type":"error","group_id":"g1","payload":{"where":"orchestrator","error":"boom"}}`))
	require.NoError(t, err)

	errEvt, ok := evt.(ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, "orchestrator", errEvt.Where)
	assert.Equal(t, "boom", errEvt.Message)
}

func TestDecodeUnknownType(t *testing.T) {
	evt, err := Decode([]byte(`{"type":"group_renamed","group_id":"g1","payload":{"name":"new"}}`))
	require.NoError(t, err)

	unknown, ok := evt.(UnknownEvent)
	require.True(t, ok)
	assert.Equal(t, EventType("group_renamed"), unknown.RawType)
	assert.Equal(t, "g1", unknown.GroupID)
	assert.JSONEq(t, `{"name":"new"}`, string(unknown.Payload))
}

func TestDecodeMalformedFrame(t *testing.T) {
	_, err := Decode([]byte(`{"type":"message"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed stream frame")
}

func TestFrameReaderExtractsDataBlocks(t *testing.T) {
	body := ": keep-alive\n\n" +
		"data: {\"type\":\"connected\"}\n\n" +
		"event: ping\nid: 7\ndata: {\"type\":\"message\"}\n\n"
	r := newFrameReader(strings.NewReader(body))

	frame, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"connected"}`, string(frame))

	frame, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"message"}`, string(frame))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFrameReaderJoinsMultiLineData(t *testing.T) {
	r := newFrameReader(strings.NewReader("data: line one\ndata: line two\n\n"))

	frame, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", string(frame))
}

func TestFrameReaderDeliversTrailingFrame(t *testing.T) {
	// Stream ended without the terminating blank line.
	r := newFrameReader(strings.NewReader("data: {\"type\":\"connected\"}"))

	frame, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"connected"}`, string(frame))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}
