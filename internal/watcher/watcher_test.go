package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentverse/internal/api"
)

type fakeUploader struct {
	mu      sync.Mutex
	uploads []recordedUpload
}

type recordedUpload struct {
	groupID  string
	agentID  string
	filename string
	content  string
}

func (f *fakeUploader) UploadDocument(ctx context.Context, groupID string, req api.UploadRequest) (*api.UploadResult, error) {
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, recordedUpload{
		groupID:  groupID,
		agentID:  req.AgentID,
		filename: req.Filename,
		content:  string(data),
	})
	return &api.UploadResult{DocumentID: "d1", Filename: req.Filename}, nil
}

func (f *fakeUploader) recorded() []recordedUpload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedUpload(nil), f.uploads...)
}

func TestWatcherUploadsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{}

	done := make(chan string, 4)
	w := New(uploader, func() string { return "g1" }, Config{
		Dir:      dir,
		Agent:    "librarian",
		Debounce: 50 * time.Millisecond,
		OnUpload: func(filename string, err error) {
			require.NoError(t, err)
			done <- filename
		},
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "paper.txt"), []byte("abstract"), 0644))

	select {
	case name := <-done:
		assert.Equal(t, "paper.txt", name)
	case <-time.After(5 * time.Second):
		t.Fatal("upload never happened")
	}

	uploads := uploader.recorded()
	require.Len(t, uploads, 1)
	assert.Equal(t, "g1", uploads[0].groupID)
	assert.Equal(t, "librarian", uploads[0].agentID)
	assert.Equal(t, "abstract", uploads[0].content)
}

func TestWatcherSkipsWithoutActiveGroup(t *testing.T) {
	dir := t.TempDir()
	uploader := &fakeUploader{}

	w := New(uploader, func() string { return "" }, Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)

	assert.Empty(t, uploader.recorded())
}

func TestWatcherIgnoresHiddenAndTempFiles(t *testing.T) {
	for _, name := range []string{".hidden", "draft.txt~", "partial.part", "doc.tmp"} {
		assert.False(t, isUploadCandidate(name), name)
	}
	for _, name := range []string{"report.pdf", "notes.txt"} {
		assert.True(t, isUploadCandidate(name), name)
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	w := New(&fakeUploader{}, func() string { return "" }, Config{Dir: t.TempDir()})
	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}
