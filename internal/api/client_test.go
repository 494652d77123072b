package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"transient"}`))
			return
		}
		w.Write([]byte(`[{"id":"g1","name":"alpha"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetry(3))
	groups, err := client.Groups.List(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "alpha", groups[0].Name)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"name must not be empty"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithRetry(5))
	_, err := client.Groups.Create(context.Background(), "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "name must not be empty", apiErr.Detail)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClientRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/groups/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"alpha"}`, string(body))
		w.Write([]byte(`{"id":"g1","name":"alpha"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	group, err := client.Groups.Create(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, "g1", group.ID)
}

func TestCancelAllRequestsAbortsInflight(t *testing.T) {
	reached := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(reached)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL)
	done := make(chan error, 1)
	go func() {
		_, err := client.Chat.Messages(context.Background(), "g1")
		done <- err
	}()

	<-reached
	client.CancelAllRequests()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "got: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("request was not cancelled")
	}
}

func TestTaggedRequestSupersedesPrevious(t *testing.T) {
	var calls atomic.Int32
	firstReached := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(firstReached)
			<-r.Context().Done()
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	firstDone := make(chan error, 1)
	go func() {
		_, err := client.Chat.Messages(context.Background(), "g1")
		firstDone <- err
	}()

	<-firstReached

	// Same group, same tag: the new fetch cancels the stale one.
	messages, err := client.Chat.Messages(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, messages)

	select {
	case err := <-firstDone:
		assert.True(t, errors.Is(err, context.Canceled), "got: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}
}

func TestCancelAllRequestsReachesSupersedingRequest(t *testing.T) {
	var calls atomic.Int32
	firstReached := make(chan struct{})
	secondReached := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			close(firstReached)
		case 2:
			close(secondReached)
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL)

	firstDone := make(chan error, 1)
	go func() {
		_, err := client.Chat.Messages(context.Background(), "g1")
		firstDone <- err
	}()
	<-firstReached

	secondDone := make(chan error, 1)
	go func() {
		_, err := client.Chat.Messages(context.Background(), "g1")
		secondDone <- err
	}()
	<-secondReached

	// Let the superseded request finish its deferred cleanup first; it must
	// not take the replacement's registry entry with it.
	select {
	case err := <-firstDone:
		require.True(t, errors.Is(err, context.Canceled), "got: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}

	client.CancelAllRequests()

	select {
	case err := <-secondDone:
		assert.True(t, errors.Is(err, context.Canceled), "got: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("replacement request was missing from the cancel registry")
	}
}

func TestMessagesConvertNumericIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":42,"group_id":"g1","sender":"bot","role":"agent","content":"hi","created_at":1700000000.5}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	messages, err := client.Chat.Messages(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "42", messages[0].ID)
	assert.Equal(t, RoleAgent, messages[0].Role)
	assert.Equal(t, 1700000000.5, messages[0].CreatedAt)
}

func TestUploadDocumentMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/groups/g1/documents/upload/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)

		assert.Equal(t, "notes.txt", header.Filename)
		assert.Equal(t, "meeting notes", string(content))
		assert.Equal(t, "researcher", r.FormValue("agent_id"))
		assert.Equal(t, "please summarize", r.FormValue("message"))

		w.Write([]byte(`{"message":"ok","document_id":"d1","filename":"notes.txt","agent_id":"researcher","file_size":13}`))
	}))
	defer server.Close()

	var lastSent, lastTotal int64
	client := NewClient(server.URL)
	result, err := client.Chat.UploadDocument(context.Background(), "g1", UploadRequest{
		AgentID:  "researcher",
		Filename: "notes.txt",
		Content:  strings.NewReader("meeting notes"),
		Message:  "please summarize",
		Progress: func(sent, total int64) {
			lastSent, lastTotal = sent, total
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "d1", result.DocumentID)
	assert.Equal(t, int64(13), result.FileSize)
	assert.Equal(t, lastTotal, lastSent)
	assert.Positive(t, lastTotal)
}

func TestOpenEventsRejectsErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"no such group"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Chat.OpenEvents(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestOpenEventsStreamsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/groups/g1/events", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Write([]byte("data: {\"type\":\"connected\"}\n\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	body, err := client.Chat.OpenEvents(context.Background(), "g1")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"connected"`)
}
