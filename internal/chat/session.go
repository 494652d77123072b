package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"

	"agentverse/internal/api"
	"agentverse/internal/config"
	"agentverse/internal/store"
	"agentverse/internal/stream"
	"agentverse/pkg/logging"
)

// promptPrefixUnicode brands the chat prompt.
const promptPrefixUnicode = "✦"

// promptPrefixASCII is the fallback prefix for terminals without unicode
// support.
const promptPrefixASCII = "av"

const promptChevronUnicode = "»"
const promptChevronASCII = ">"

// maxGroupNameLength caps the group name shown in the prompt. Longer names
// are truncated with ellipsis, preserving the distinguishing suffix.
const maxGroupNameLength = 28

// reconnectMaxElapsed bounds how long the session keeps retrying a lost
// event stream before giving up and telling the user.
const reconnectMaxElapsed = 2 * time.Minute

// Session is an interactive chat session for one selected group. It owns
// the readline loop, renders incoming transcript entries above the prompt,
// and carries the stream reconnection policy: on transport failure it
// retries with exponential backoff until the group is switched or the
// session ends.
type Session struct {
	client  *api.Client
	cfg     config.Config
	store   *store.Store
	manager *stream.Manager

	rl *readline.Instance

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	rendered   int // transcript entries already printed
	typing     bool
	useUnicode bool
}

// NewSession wires a session: the store mutates through the session's
// notifications, the stream manager mutates through the store.
func NewSession(client *api.Client, cfg config.Config) *Session {
	s := &Session{
		client:     client,
		cfg:        cfg,
		useUnicode: detectUnicodeSupport(),
	}
	s.store = store.New(client, store.WithNotifier(s))
	s.manager = stream.NewManager(client.Chat, s.store,
		stream.WithOnError(s.onStreamError),
		stream.WithOnStateChange(s.onStateChange),
	)
	s.store.SetStreamer(s.manager)
	return s
}

// Store exposes the session state store so supporting components (the
// upload watcher) can act on the same state.
func (s *Session) Store() *store.Store {
	return s.store
}

// Run selects the group and enters the readline loop. It returns on /quit,
// Ctrl+D, or context cancellation.
func (s *Session) Run(ctx context.Context, group api.Group) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            s.buildPrompt(group.Name),
		HistoryFile:       s.historyFile(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "/quit",
		HistorySearchFold: true,
		AutoComplete:      s.createCompleter(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	s.rl = rl

	s.store.SetSelectedGroup(s.ctx, &group)
	s.printGroupBanner(group)
	s.renderTranscript()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			s.shutdown()
			fmt.Println("Goodbye!")
			return nil
		} else if err != nil {
			s.shutdown()
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			exit, err := s.handleCommand(s.ctx, input)
			if err != nil {
				s.printAbove(text.FgRed.Sprintf("Error: %v", err))
			}
			if exit {
				s.shutdown()
				fmt.Println("Goodbye!")
				return nil
			}
			continue
		}

		if err := s.send(s.ctx, input); err != nil {
			s.printAbove(text.FgRed.Sprintf("Error: %v", err))
		}
	}
}

func (s *Session) shutdown() {
	s.cancel()
	s.manager.Disconnect()
	s.wg.Wait()
}

// send parses an optional leading @mention and submits the message to the
// resolved agent. The local echo is already on screen as typed input, so
// rendering skips it.
func (s *Session) send(ctx context.Context, input string) error {
	explicit := ""
	body := input
	if strings.HasPrefix(input, "@") {
		parts := strings.SplitN(input[1:], " ", 2)
		if len(parts) == 2 {
			explicit, body = parts[0], strings.TrimSpace(parts[1])
		}
	}
	if body == "" {
		return errors.New("empty message")
	}

	agentKey, err := s.resolveAgent(explicit)
	if err != nil {
		return err
	}

	selected := s.store.Selected()
	if selected == nil {
		return errors.New("no group selected")
	}

	s.setTyping(true)
	if err := s.store.SendMessage(ctx, selected.ID, agentKey, body); err != nil {
		s.setTyping(false)
		return err
	}

	s.mu.Lock()
	s.rendered = len(s.store.Messages().Data)
	s.mu.Unlock()
	return nil
}

// resolveAgent picks the target agent: explicit @mention, configured
// default, then the first agent in the roster.
func (s *Session) resolveAgent(explicit string) (string, error) {
	agents := s.store.Agents().Data
	if len(agents) == 0 {
		return "", errors.New("the group has no agents; add one with: agentverse groups agents add")
	}

	if explicit != "" {
		lower := strings.ToLower(explicit)
		for _, a := range agents {
			if strings.ToLower(a.Key) == lower || strings.ToLower(a.Name) == lower {
				return a.Key, nil
			}
		}
		for _, a := range agents {
			if strings.HasPrefix(strings.ToLower(a.Key), lower) {
				return a.Key, nil
			}
		}
		return "", fmt.Errorf("no agent %q in this group (see /agents)", explicit)
	}

	if def := s.cfg.Chat.DefaultAgent; def != "" {
		for _, a := range agents {
			if a.Key == def {
				return a.Key, nil
			}
		}
	}
	return agents[0].Key, nil
}

// MentionDetected implements store.Notifier. Rings the terminal bell when
// an agent addresses the user, subject to notification settings.
func (s *Session) MentionDetected(groupID, sender string, sound bool) {
	if !s.cfg.Notifications.MentionsEnabled() {
		return
	}
	who := sender
	if who == "" {
		who = "an agent"
	}
	note := text.FgHiYellow.Sprintf("● %s mentioned you", who)
	if sound && s.cfg.Notifications.SoundEnabled() {
		note += "\a"
	}
	s.printAbove(note)
}

// ActivityObserved implements store.Notifier. Any transcript append clears
// the typing indicator and flushes unrendered entries to the terminal.
func (s *Session) ActivityObserved(groupID string) {
	s.setTyping(false)
	s.renderTranscript()
}

// renderTranscript prints transcript entries that have not been shown yet.
func (s *Session) renderTranscript() {
	s.mu.Lock()
	msgs := s.store.Messages().Data
	start := s.rendered
	if start > len(msgs) {
		start = 0
	}
	pending := msgs[start:]
	s.rendered = len(msgs)
	s.mu.Unlock()

	for _, msg := range pending {
		s.printAbove(FormatMessage(msg, true))
	}
}

// printAbove writes a line above the readline prompt and refreshes it.
func (s *Session) printAbove(line string) {
	if s.rl == nil {
		fmt.Println(line)
		return
	}
	s.rl.Stdout().Write([]byte("\r\033[K" + line + "\n"))
	s.rl.Refresh()
}

func (s *Session) setTyping(typing bool) {
	s.mu.Lock()
	changed := s.typing != typing
	s.typing = typing
	s.mu.Unlock()
	if changed && typing {
		s.printAbove(text.FgHiBlack.Sprint("… agents are thinking"))
	}
}

// onStreamError is the manager's transport failure callback. Recovery
// policy lives here, not in the manager: retry with exponential backoff
// while this group stays selected.
func (s *Session) onStreamError(groupID string, err error) {
	s.printAbove(text.FgYellow.Sprintf("⚠ event stream lost: %v (reconnecting)", err))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.client.Logs.ReportClientEvent(s.ctx, api.ClientEvent{
			Kind:    "error",
			Where:   "event_stream",
			Message: err.Error(),
			Meta:    map[string]any{"group_id": groupID},
		})
		s.reconnect(groupID)
	}()
}

func (s *Session) reconnect(groupID string) {
	operation := func() (struct{}, error) {
		selected := s.store.Selected()
		if selected == nil || selected.ID != groupID {
			return struct{}{}, backoff.Permanent(errors.New("group deselected"))
		}
		return struct{}{}, s.manager.Connect(s.ctx, groupID)
	}

	_, err := backoff.Retry(s.ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(reconnectMaxElapsed),
	)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.printAbove(text.FgRed.Sprintf("✗ could not restore the event stream: %v", err))
		return
	}
	s.printAbove(text.FgGreen.Sprint("✓ event stream restored"))
	// Re-sync: messages may have been missed while disconnected.
	s.store.ReloadMessages(s.ctx)
}

func (s *Session) onStateChange(state stream.ConnState) {
	logging.Debug("Chat", "event stream state: %s", state)
}

func (s *Session) buildPrompt(groupName string) string {
	prefix, chevron := promptPrefixASCII, promptChevronASCII
	if s.useUnicode {
		prefix, chevron = promptPrefixUnicode, promptChevronUnicode
	}

	parts := []string{prefix}
	if groupName != "" {
		parts = append(parts, truncateGroupName(groupName))
	}
	parts = append(parts, chevron)
	return strings.Join(parts, " ") + " "
}

// truncateGroupName shortens long group names for the prompt, keeping both
// the start and the end of the name.
func truncateGroupName(name string) string {
	if len(name) <= maxGroupNameLength {
		return name
	}
	ellipsis := "..."
	available := maxGroupNameLength - len(ellipsis)
	startLen := (available * 3) / 5
	endLen := available - startLen
	return name[:startLen] + ellipsis + name[len(name)-endLen:]
}

func (s *Session) historyFile() string {
	if s.cfg.Chat.HistoryFile != "" {
		return s.cfg.Chat.HistoryFile
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".agentverse_chat_history")
	}
	return filepath.Join(homeDir, ".config", "agentverse", "chat_history")
}

func (s *Session) printGroupBanner(group api.Group) {
	agents := s.store.Agents().Data
	names := make([]string, 0, len(agents))
	for _, a := range agents {
		label := a.Name
		if a.Emoji != "" {
			label = a.Emoji + " " + label
		}
		names = append(names, label)
	}
	roster := "no agents yet"
	if len(names) > 0 {
		roster = strings.Join(names, ", ")
	}
	fmt.Printf("Chatting in %s with %s. Type /help for commands.\n\n",
		text.Bold.Sprint(group.Name), roster)
}

// detectUnicodeSupport checks if the terminal likely supports unicode.
func detectUnicodeSupport() bool {
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}

	for _, v := range []string{os.Getenv("LANG"), os.Getenv("LC_ALL")} {
		lower := strings.ToLower(v)
		if strings.Contains(lower, "utf-8") || strings.Contains(lower, "utf8") {
			return true
		}
	}

	termLower := strings.ToLower(term)
	for _, ut := range []string{"xterm", "screen", "tmux", "alacritty", "kitty", "iterm"} {
		if strings.Contains(termLower, ut) {
			return true
		}
	}
	return true
}
