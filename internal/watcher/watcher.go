package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"agentverse/internal/api"
	"agentverse/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last change to a
// file before uploading it. Editors and download managers often write a
// file in several bursts.
const DefaultDebounceInterval = 500 * time.Millisecond

// DefaultPollInterval is the fallback polling interval when fsnotify is
// not available.
const DefaultPollInterval = 10 * time.Second

// Uploader submits a document to a group. Satisfied by store.Store.
type Uploader interface {
	UploadDocument(ctx context.Context, groupID string, req api.UploadRequest) (*api.UploadResult, error)
}

// Config holds configuration for the upload watcher.
type Config struct {
	// Dir is the watched drop directory.
	Dir string

	// Agent is the target agent for uploaded files.
	Agent string

	// Debounce is the quiet period before a changed file is uploaded.
	Debounce time.Duration

	// PollInterval is the fallback polling interval when fsnotify is not
	// available.
	PollInterval time.Duration

	// OnUpload is called after each upload attempt.
	OnUpload func(filename string, err error)
}

// Watcher monitors a drop directory and uploads new files to the active
// group. It uses fsnotify for efficient monitoring with a fallback to
// polling for environments where fsnotify is not available.
type Watcher struct {
	mu sync.Mutex

	config   Config
	uploader Uploader

	// activeGroup returns the group to upload into, or "" when no group is
	// selected. Evaluated at upload time so group switches take effect.
	activeGroup func() string

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	lastModTimes map[string]time.Time

	// Per-file debounce timers; uploads fire per file, not per burst.
	debounceMu sync.Mutex
	timers     map[string]*time.Timer

	// uploaded tracks modification times of files already pushed so a
	// polling cycle does not re-upload them.
	uploaded map[string]time.Time
}

// New creates an upload watcher.
func New(uploader Uploader, activeGroup func() string, config Config) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = DefaultDebounceInterval
	}
	if config.PollInterval == 0 {
		config.PollInterval = DefaultPollInterval
	}

	return &Watcher{
		config:       config,
		uploader:     uploader,
		activeGroup:  activeGroup,
		lastModTimes: make(map[string]time.Time),
		timers:       make(map[string]*time.Timer),
		uploaded:     make(map[string]time.Time),
	}
}

// Start begins watching the drop directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("UploadWatcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges()
		return nil
	}
	w.fsWatcher = fsWatcher

	if err := w.fsWatcher.Add(w.config.Dir); err != nil {
		logging.Warn("UploadWatcher", "failed to watch directory %s, falling back to polling: %v",
			w.config.Dir, err)
		w.fsWatcher.Close()
		w.fsWatcher = nil
		go w.pollForChanges()
		return nil
	}

	eventsCh := w.fsWatcher.Events
	errorsCh := w.fsWatcher.Errors
	go w.processEvents(eventsCh, errorsCh)

	logging.Info("UploadWatcher", "watching %s for files to upload", w.config.Dir)
	return nil
}

// Stop gracefully stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("UploadWatcher", "error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("UploadWatcher", "stopped watching %s", w.config.Dir)
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("UploadWatcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isUploadCandidate(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	logging.Debug("UploadWatcher", "file changed: %s", event.Name)
	w.scheduleUpload(event.Name)
}

// isUploadCandidate filters out hidden files and editor temp artifacts.
func isUploadCandidate(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".tmp") ||
		strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".crdownload") {
		return false
	}
	return true
}

// scheduleUpload (re)arms the per-file debounce timer. The upload fires
// only after the file has been quiet for the debounce period.
func (w *Watcher) scheduleUpload(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.config.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.timers, path)
		w.debounceMu.Unlock()

		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if running {
			w.upload(path)
		}
	})
}

func (w *Watcher) upload(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	already := w.uploaded[path].Equal(info.ModTime())
	w.mu.Unlock()
	if already {
		return
	}

	groupID := w.activeGroup()
	if groupID == "" {
		logging.Debug("UploadWatcher", "no active group, skipping %s", path)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logging.Error("UploadWatcher", err, "failed to open %s", path)
		w.notify(filepath.Base(path), err)
		return
	}
	defer file.Close()

	filename := filepath.Base(path)
	_, err = w.uploader.UploadDocument(context.Background(), groupID, api.UploadRequest{
		AgentID:  w.config.Agent,
		Filename: filename,
		Content:  file,
	})
	if err != nil {
		logging.Error("UploadWatcher", err, "failed to upload %s", filename)
	} else {
		logging.Info("UploadWatcher", "uploaded %s to group %s", filename, groupID)
		w.mu.Lock()
		w.uploaded[path] = info.ModTime()
		w.mu.Unlock()
	}
	w.notify(filename, err)
}

func (w *Watcher) notify(filename string, err error) {
	if w.config.OnUpload != nil {
		w.config.OnUpload(filename, err)
	}
}

// pollForChanges implements fallback polling when fsnotify is unavailable.
func (w *Watcher) pollForChanges() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.updateModTimes()

	for {
		select {
		case <-w.stopCh:
			return

		case <-ticker.C:
			for _, path := range w.changedFiles() {
				logging.Debug("UploadWatcher", "change detected via polling: %s", path)
				w.scheduleUpload(path)
			}
		}
	}
}

// updateModTimes seeds the modification time map so pre-existing files are
// not uploaded on startup.
func (w *Watcher) updateModTimes() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, modTime := range w.scanDir() {
		w.lastModTimes[path] = modTime
	}
}

func (w *Watcher) changedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for path, modTime := range w.scanDir() {
		last, seen := w.lastModTimes[path]
		if !seen || modTime.After(last) {
			changed = append(changed, path)
		}
		w.lastModTimes[path] = modTime
	}
	return changed
}

func (w *Watcher) scanDir() map[string]time.Time {
	result := make(map[string]time.Time)
	entries, err := os.ReadDir(w.config.Dir)
	if err != nil {
		return result
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.config.Dir, entry.Name())
		if !isUploadCandidate(path) {
			continue
		}
		if info, err := entry.Info(); err == nil {
			result[path] = info.ModTime()
		}
	}
	return result
}
