package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"

	"agentverse/internal/api"
	"agentverse/internal/cli"
)

const helpText = `Commands:
  /agents               list the agents in this group
  /docs                 list uploaded documents
  /upload <path> [agent]  upload a file for an agent
  /stop                 stop the running agent response chain
  /switch <group>       switch to another group
  /help                 show this help
  /quit                 leave the chat

Messages starting with @agent are routed to that agent,
anything else goes to the default agent.`

// handleCommand dispatches one slash command. Returns true when the
// session should end.
func (s *Session) handleCommand(ctx context.Context, input string) (bool, error) {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/help", "/?":
		s.printAbove(helpText)
		return false, nil

	case "/agents":
		return false, s.cmdAgents()

	case "/docs":
		return false, s.cmdDocs()

	case "/upload":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: /upload <path> [agent]")
		}
		explicit := ""
		if len(args) > 1 {
			explicit = args[1]
		}
		return false, s.cmdUpload(ctx, args[0], explicit)

	case "/stop":
		selected := s.store.Selected()
		if selected == nil {
			return false, fmt.Errorf("no group selected")
		}
		if err := s.store.StopAgents(ctx, selected.ID); err != nil {
			return false, err
		}
		s.setTyping(false)
		s.printAbove(text.FgYellow.Sprint("⏹ agent chain stopped"))
		return false, nil

	case "/switch":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: /switch <group name or id>")
		}
		return false, s.cmdSwitch(ctx, strings.Join(args, " "))

	case "/quit", "/exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help)", cmd)
	}
}

func (s *Session) cmdAgents() error {
	agents := s.store.Agents().Data
	if len(agents) == 0 {
		s.printAbove("No agents in this group.")
		return nil
	}
	var b strings.Builder
	for _, a := range agents {
		label := a.Key
		if a.Emoji != "" {
			label = a.Emoji + " " + label
		}
		fmt.Fprintf(&b, "  %s — %s", text.FgHiCyan.Sprint(label), a.Name)
		if a.Description != "" {
			fmt.Fprintf(&b, ": %s", a.Description)
		}
		b.WriteString("\n")
	}
	s.printAbove(strings.TrimRight(b.String(), "\n"))
	return nil
}

func (s *Session) cmdDocs() error {
	docs := s.store.Documents().Data
	if len(docs) == 0 {
		s.printAbove("No documents uploaded yet.")
		return nil
	}
	var b strings.Builder
	for _, d := range docs {
		size := d.SizeStr
		if size == "" {
			size = fmt.Sprintf("%d bytes", d.Size)
		}
		fmt.Fprintf(&b, "  📄 %s (%s) → %s\n", d.Filename, size, d.TargetAgent)
	}
	s.printAbove(strings.TrimRight(b.String(), "\n"))
	return nil
}

func (s *Session) cmdUpload(ctx context.Context, path, explicit string) error {
	selected := s.store.Selected()
	if selected == nil {
		return fmt.Errorf("no group selected")
	}

	agentKey, err := s.resolveAgent(explicit)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	filename := filepath.Base(path)
	err = cli.RunWithSpinner(false, fmt.Sprintf("Uploading %s for %s...", filename, agentKey), func() error {
		_, err := s.store.UploadDocument(ctx, selected.ID, api.UploadRequest{
			AgentID:  agentKey,
			Filename: filename,
			Content:  file,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.printAbove(text.FgGreen.Sprintf("✓ uploaded %s for %s", filename, agentKey))
	return nil
}

func (s *Session) cmdSwitch(ctx context.Context, nameOrID string) error {
	groups := s.store.Groups().Data
	if len(groups) == 0 {
		s.store.LoadGroups(ctx)
		groups = s.store.Groups().Data
	}

	var target *api.Group
	lower := strings.ToLower(nameOrID)
	for i := range groups {
		if groups[i].ID == nameOrID || strings.ToLower(groups[i].Name) == lower {
			target = &groups[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no group %q", nameOrID)
	}

	group := *target
	s.store.SetSelectedGroup(ctx, &group)
	s.mu.Lock()
	s.rendered = 0
	s.typing = false
	s.mu.Unlock()

	if s.rl != nil {
		s.rl.SetPrompt(s.buildPrompt(group.Name))
	}
	s.printGroupBanner(group)
	s.renderTranscript()
	return nil
}

// createCompleter offers slash commands and dynamic group names for
// /switch.
func (s *Session) createCompleter() readline.AutoCompleter {
	groupNames := func(string) []string {
		groups := s.store.Groups().Data
		names := make([]string, 0, len(groups))
		for _, g := range groups {
			names = append(names, g.Name)
		}
		return names
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("/agents"),
		readline.PcItem("/docs"),
		readline.PcItem("/upload"),
		readline.PcItem("/stop"),
		readline.PcItem("/switch", readline.PcItemDynamic(groupNames)),
		readline.PcItem("/help"),
		readline.PcItem("/quit"),
	)
}
