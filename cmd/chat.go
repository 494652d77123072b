package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"agentverse/internal/api"
	"agentverse/internal/chat"
	"agentverse/internal/cli"
	"agentverse/internal/config"
	"agentverse/internal/watcher"
	"agentverse/pkg/logging"
)

var chatUploadDir string

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [group]",
		Short: "Start an interactive chat session in a group",
		Long: `Opens an interactive chat session: messages stream in live, slash
commands manage the group (/agents, /docs, /upload, /stop, /switch),
and @agent prefixes route messages to a specific agent.

Without an argument the last used group is reopened. With an upload
directory configured, files dropped there are uploaded to the group
automatically.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.checkBackend(); err != nil {
				return err
			}

			prefsStore := prefsStoreFromFlags()
			prefs, err := prefsStore.Load()
			if err != nil {
				logging.Warn("Chat", "failed to load preferences: %v", err)
			}

			group, err := resolveChatGroup(cmd, cc, args, prefs.LastGroupID)
			if err != nil {
				return err
			}

			prefs.LastGroupID = group.ID
			prefs.LastView = "chat"
			if err := prefsStore.Save(prefs); err != nil {
				logging.Warn("Chat", "failed to save preferences: %v", err)
			}

			session := chat.NewSession(cc.client, cc.cfg)

			if w := startUploadWatcher(cc.cfg, session); w != nil {
				defer w.Stop()
			}

			return session.Run(cmd.Context(), *group)
		},
	}

	cmd.Flags().StringVar(&chatUploadDir, "upload-dir", "",
		"Watch this directory and upload dropped files to the group")
	return cmd
}

func prefsStoreFromFlags() *config.PrefsStore {
	if rootConfigPath != "" {
		return config.NewPrefsStoreWithPath(rootConfigPath)
	}
	return config.NewPrefsStore()
}

// resolveChatGroup picks the group to chat in: explicit argument (name or
// id), then the last used group, then the only existing group.
func resolveChatGroup(cmd *cobra.Command, cc *commandContext, args []string, lastGroupID string) (*api.Group, error) {
	groups, err := cc.client.Groups.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no groups exist yet; create one with: agentverse groups create <name>")
	}

	if len(args) == 1 {
		lower := strings.ToLower(args[0])
		for i := range groups {
			if groups[i].ID == args[0] || strings.ToLower(groups[i].Name) == lower {
				return &groups[i], nil
			}
		}
		return nil, fmt.Errorf("no group %q (see: agentverse groups list)", args[0])
	}

	if lastGroupID != "" {
		for i := range groups {
			if groups[i].ID == lastGroupID {
				return &groups[i], nil
			}
		}
	}

	if len(groups) == 1 {
		return &groups[0], nil
	}
	return nil, fmt.Errorf("several groups exist; pick one: agentverse chat <group>")
}

// startUploadWatcher starts the drop-folder watcher when configured via
// flag or config. Returns nil when no directory is configured.
func startUploadWatcher(cfg config.Config, session *chat.Session) *watcher.Watcher {
	dir := chatUploadDir
	if dir == "" {
		dir = cfg.Upload.Dir
	}
	if dir == "" {
		return nil
	}

	agent := cfg.Upload.Agent
	if agent == "" {
		agent = cfg.Chat.DefaultAgent
	}

	st := session.Store()
	w := watcher.New(st, func() string {
		if selected := st.Selected(); selected != nil {
			return selected.ID
		}
		return ""
	}, watcher.Config{
		Dir:          dir,
		Agent:        agent,
		Debounce:     cfg.Upload.Debounce,
		PollInterval: cfg.Upload.PollInterval,
		OnUpload: func(filename string, err error) {
			if err != nil {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("upload of %s failed: %v", filename, err)))
			}
		},
	})
	if err := w.Start(); err != nil {
		logging.Warn("Chat", "failed to start upload watcher: %v", err)
		return nil
	}
	fmt.Printf("Watching %s for files to upload.\n", dir)
	return w
}
