package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentverse/internal/api"
)

// fakeStreamer records the connect/disconnect sequence.
type fakeStreamer struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeStreamer) Connect(ctx context.Context, groupID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "connect:"+groupID)
	return nil
}

func (f *fakeStreamer) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "disconnect")
}

func (f *fakeStreamer) sequence() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeNotifier struct {
	mu       sync.Mutex
	mentions []string
	activity int
}

func (f *fakeNotifier) MentionDetected(groupID, sender string, sound bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mentions = append(f.mentions, sender)
}

func (f *fakeNotifier) ActivityObserved(groupID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity++
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// newBackend serves a minimal two-group backend.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/groups/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/groups/")
		switch {
		case rest == "" && r.Method == http.MethodGet:
			writeJSON(t, w, []api.Group{
				{ID: "g1", Name: "alpha"},
				{ID: "g2", Name: "beta"},
			})
		case rest == "" && r.Method == http.MethodPost:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(t, w, api.Group{ID: "g3", Name: body["name"]})
		case strings.HasSuffix(rest, "/agents"):
			groupID := strings.TrimSuffix(rest, "/agents")
			writeJSON(t, w, []api.Agent{{Key: "bot-" + groupID, Name: "Bot"}})
		case strings.HasSuffix(rest, "/messages") && r.Method == http.MethodGet:
			writeJSON(t, w, []map[string]any{
				{"id": 1, "group_id": "g1", "sender": "user", "role": "user", "content": "hi"},
			})
		case strings.HasSuffix(rest, "/messages") && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(rest, "/documents"):
			writeJSON(t, w, []api.Document{})
		case strings.HasSuffix(rest, "/stop"):
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadGroups(t *testing.T) {
	srv := newBackend(t)
	s := New(api.NewClient(srv.URL))

	assert.Equal(t, StatusIdle, s.Groups().Status)
	s.LoadGroups(context.Background())

	groups := s.Groups()
	assert.Equal(t, StatusSuccess, groups.Status)
	require.Len(t, groups.Data, 2)
	assert.Equal(t, "alpha", groups.Data[0].Name)
}

func TestLoadGroupsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := New(api.NewClient(srv.URL))
	s.LoadGroups(context.Background())

	groups := s.Groups()
	assert.Equal(t, StatusError, groups.Status)
	assert.Contains(t, groups.Err, "boom")
}

func TestSetSelectedGroupLoadsAndConnects(t *testing.T) {
	srv := newBackend(t)
	s := New(api.NewClient(srv.URL))
	streamer := &fakeStreamer{}
	s.SetStreamer(streamer)

	s.SetSelectedGroup(context.Background(), &api.Group{ID: "g1", Name: "alpha"})

	require.NotNil(t, s.Selected())
	assert.Equal(t, "g1", s.Selected().ID)
	assert.Equal(t, StatusSuccess, s.Agents().Status)
	assert.Equal(t, StatusSuccess, s.Messages().Status)
	assert.Equal(t, StatusSuccess, s.Documents().Status)
	require.Len(t, s.Agents().Data, 1)
	assert.Equal(t, "bot-g1", s.Agents().Data[0].Key)

	// The old stream is torn down before the new one is opened, and the
	// connection happens only after the loads settle.
	seq := streamer.sequence()
	require.Len(t, seq, 2)
	assert.Equal(t, "disconnect", seq[0])
	assert.Equal(t, "connect:g1", seq[1])
}

func TestSetSelectedGroupNilClears(t *testing.T) {
	srv := newBackend(t)
	s := New(api.NewClient(srv.URL))
	streamer := &fakeStreamer{}
	s.SetStreamer(streamer)

	s.SetSelectedGroup(context.Background(), &api.Group{ID: "g1"})
	s.SetSelectedGroup(context.Background(), nil)

	assert.Nil(t, s.Selected())
	assert.Equal(t, StatusIdle, s.Agents().Status)
	assert.Equal(t, StatusIdle, s.Messages().Status)
	assert.Empty(t, s.Messages().Data)
	assert.Equal(t, "disconnect", streamer.sequence()[len(streamer.sequence())-1])
}

// A slow response from a deselected group must never overwrite the state of
// the group selected after it.
func TestGroupSwitchDropsStaleResponses(t *testing.T) {
	slowHit := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/groups/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/groups/")
		slow := strings.HasPrefix(rest, "slow/")
		if slow {
			once.Do(func() { close(slowHit) })
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
		}
		switch {
		case strings.HasSuffix(rest, "/agents"):
			writeJSON(t, w, []api.Agent{{Key: "agent-of-" + strings.SplitN(rest, "/", 2)[0]}})
		case strings.HasSuffix(rest, "/messages"):
			writeJSON(t, w, []map[string]any{})
		case strings.HasSuffix(rest, "/documents"):
			writeJSON(t, w, []api.Document{})
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	defer close(release)

	s := New(api.NewClient(srv.URL))
	streamer := &fakeStreamer{}
	s.SetStreamer(streamer)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		s.SetSelectedGroup(context.Background(), &api.Group{ID: "slow"})
	}()

	select {
	case <-slowHit:
	case <-time.After(5 * time.Second):
		t.Fatal("backend never saw the first group's load")
	}

	s.SetSelectedGroup(context.Background(), &api.Group{ID: "fast"})

	select {
	case <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("first selection never settled")
	}

	require.NotNil(t, s.Selected())
	assert.Equal(t, "fast", s.Selected().ID)
	require.Equal(t, StatusSuccess, s.Agents().Status)
	require.Len(t, s.Agents().Data, 1)
	assert.Equal(t, "agent-of-fast", s.Agents().Data[0].Key)

	// Only the winning selection may open a stream.
	for _, call := range streamer.sequence() {
		assert.NotEqual(t, "connect:slow", call)
	}
	assert.Contains(t, streamer.sequence(), "connect:fast")
}

func TestAddMessageDropsMissingRole(t *testing.T) {
	s := New(api.NewClient("http://unused"))

	ok := s.AddMessage(api.Message{ID: "1", Sender: "ghost", Content: "hello"})

	assert.False(t, ok)
	assert.Empty(t, s.Messages().Data)
}

func TestAddMessageDeduplicatesPendingEcho(t *testing.T) {
	srv := newBackend(t)
	notifier := &fakeNotifier{}
	s := New(api.NewClient(srv.URL), WithNotifier(notifier))
	s.SetSelectedGroup(context.Background(), &api.Group{ID: "g1"})

	require.NoError(t, s.SendMessage(context.Background(), "g1", "bot", "hello there"))
	require.True(t, lastMessage(t, s).Pending)

	// The stream echoes the message back, possibly with the mention the
	// backend prepended.
	ok := s.AddMessage(api.Message{
		ID: api.NewLocalMessageID(), GroupID: "g1",
		Sender: "user", Role: api.RoleUser, Content: "@bot hello there",
	})

	assert.True(t, ok)
	msgs := s.Messages().Data
	echoes := 0
	for _, m := range msgs {
		if strings.HasSuffix(m.Content, "hello there") {
			echoes++
			assert.False(t, m.Pending)
		}
	}
	assert.Equal(t, 1, echoes, "echo must reconcile, not duplicate")
}

func TestAddMessageMentionNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	s := New(api.NewClient("http://unused"), WithNotifier(notifier))

	s.AddMessage(api.Message{
		ID: "1", GroupID: "g1", Sender: "bot",
		Role: api.RoleAgent, Content: "done, @user please review",
	})
	s.AddMessage(api.Message{
		ID: "2", GroupID: "g1", Sender: "bot",
		Role: api.RoleAgent, Content: "no mention here",
	})

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.mentions, 1)
	assert.Equal(t, "bot", notifier.mentions[0])
	assert.Equal(t, 2, notifier.activity)
}

func TestSendMessageFailureRemovesEcho(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/messages") && r.Method == http.MethodPost {
			http.Error(w, `{"detail":"agent offline"}`, http.StatusBadGateway)
			return
		}
		writeJSON(t, w, []api.Document{})
	}))
	defer srv.Close()

	s := New(api.NewClient(srv.URL))
	s.SetSelectedGroup(context.Background(), &api.Group{ID: "g1"})

	err := s.SendMessage(context.Background(), "g1", "bot", "will fail")
	require.Error(t, err)

	for _, m := range s.Messages().Data {
		assert.NotEqual(t, "will fail", m.Content, "failed send must not leave an echo")
	}
}

func TestCreateAndDeleteGroup(t *testing.T) {
	srv := newBackend(t)
	s := New(api.NewClient(srv.URL))
	s.SetStreamer(&fakeStreamer{})
	s.LoadGroups(context.Background())

	group, err := s.CreateGroup(context.Background(), "gamma")
	require.NoError(t, err)
	assert.Equal(t, "gamma", group.Name)
	assert.Len(t, s.Groups().Data, 3)

	s.SetSelectedGroup(context.Background(), &api.Group{ID: "g1"})
	require.NoError(t, s.DeleteGroup(context.Background(), "g1"))
	assert.Nil(t, s.Selected(), "deleting the selected group clears the selection")
	assert.Len(t, s.Groups().Data, 2)
}

func TestUploadDocumentAppends(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/documents/upload/") {
			writeJSON(t, w, api.UploadResult{
				DocumentID: "d1", Filename: "notes.txt", AgentID: "bot", FileSize: 5,
			})
			return
		}
		writeJSON(t, w, []api.Document{})
	}))
	defer srv.Close()

	s := New(api.NewClient(srv.URL))
	result, err := s.UploadDocument(context.Background(), "g1", api.UploadRequest{
		AgentID: "bot", Filename: "notes.txt", Content: strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", result.DocumentID)

	docs := s.Documents()
	assert.Equal(t, StatusSuccess, docs.Status)
	require.Len(t, docs.Data, 1)
	assert.Equal(t, "notes.txt", docs.Data[0].Filename)
	assert.Equal(t, "bot", docs.Data[0].TargetAgent)
}

func TestAccessorsReturnDetachedCopies(t *testing.T) {
	srv := newBackend(t)
	s := New(api.NewClient(srv.URL))
	s.LoadGroups(context.Background())
	s.SetSelectedGroup(context.Background(), &api.Group{ID: "g1"})

	// Mutating a returned slice must not reach the store's state.
	groups := s.Groups().Data
	require.NotEmpty(t, groups)
	groups[0].Name = "mutated"
	assert.Equal(t, "alpha", s.Groups().Data[0].Name)

	msgs := s.Messages().Data
	require.NotEmpty(t, msgs)
	msgs[0].Content = "mutated"
	assert.Equal(t, "hi", s.Messages().Data[0].Content)
}

func lastMessage(t *testing.T, s *Store) api.Message {
	t.Helper()
	msgs := s.Messages().Data
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}
