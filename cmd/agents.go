package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"agentverse/internal/api"
	"agentverse/internal/cli"
	pkgstrings "agentverse/pkg/strings"
)

var (
	agentCreateKey         string
	agentCreateEmoji       string
	agentCreateDescription string
	agentCreateToolsFile   string
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage the agent catalog",
		Long: `The agent catalog holds every agent the backend knows about.
Assign catalog agents to groups with 'agentverse groups agents add'.`,
	}

	cmd.AddCommand(newAgentsListCmd())
	cmd.AddCommand(newAgentsGetCmd())
	cmd.AddCommand(newAgentsCreateCmd())
	cmd.AddCommand(newAgentsUpdateCmd())
	cmd.AddCommand(newAgentsDeleteCmd())
	cmd.AddCommand(newAgentsRefreshCmd())
	cmd.AddCommand(newAgentsConfigCmd())
	cmd.AddCommand(newAgentsStatusCmd())
	return cmd
}

func newAgentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all agents in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.checkBackend(); err != nil {
				return err
			}

			var agents []api.Agent
			err = cli.RunWithSpinner(rootQuiet, "Fetching agents...", func() error {
				agents, err = cc.client.Agents.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			return printAgents(cc, agents)
		},
	}
}

func printAgents(cc *commandContext, agents []api.Agent) error {
	if len(agents) == 0 {
		return cc.printer.Empty("No agents found")
	}

	headers := table.Row{"KEY", "NAME", "DESCRIPTION"}
	if cc.printer.Wide() {
		headers = append(headers, "LLM")
	}
	rows := make([]table.Row, 0, len(agents))
	for _, a := range agents {
		name := a.Name
		if a.Emoji != "" {
			name = a.Emoji + " " + name
		}
		row := table.Row{a.Key, name, pkgstrings.TruncateCell(a.Description, pkgstrings.DefaultCellMaxLen)}
		if cc.printer.Wide() {
			row = append(row, a.LLM)
		}
		rows = append(rows, row)
	}
	return cc.printer.Print(agents, headers, rows)
}

func newAgentsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <agent-key>",
		Short: "Show one agent's full configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			agent, err := cc.client.Agents.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			headers := table.Row{"FIELD", "VALUE"}
			rows := []table.Row{
				{"Key", agent.Key},
				{"Name", agent.Name},
				{"Emoji", agent.Emoji},
				{"Description", agent.Description},
				{"LLM", agent.LLM},
			}
			return cc.printer.Print(agent, headers, rows)
		},
	}
}

func newAgentsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a catalog agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}

			req := api.CreateAgentRequest{
				Name:        args[0],
				Key:         agentCreateKey,
				Emoji:       agentCreateEmoji,
				Description: agentCreateDescription,
			}
			if agentCreateToolsFile != "" {
				code, err := os.ReadFile(agentCreateToolsFile)
				if err != nil {
					return fmt.Errorf("failed to read tools file: %w", err)
				}
				req.ToolsCode = string(code)
			}

			if err := cc.client.Agents.Create(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created agent %q", args[0])))
			return nil
		},
	}

	cmd.Flags().StringVar(&agentCreateKey, "key", "", "Agent key (default derived from the name)")
	cmd.Flags().StringVar(&agentCreateEmoji, "emoji", "", "Display emoji")
	cmd.Flags().StringVar(&agentCreateDescription, "description", "", "What this agent does")
	cmd.Flags().StringVar(&agentCreateToolsFile, "tools-file", "", "Python file with the agent's tool code")
	return cmd
}

func newAgentsUpdateCmd() *cobra.Command {
	var (
		name        string
		description string
		emoji       string
		toolsFile   string
	)

	cmd := &cobra.Command{
		Use:   "update <agent-key>",
		Short: "Update a catalog agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}

			// Only flags the user actually set are sent; the backend keeps
			// the rest unchanged.
			var req api.UpdateAgentRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("emoji") {
				req.Emoji = &emoji
			}
			if toolsFile != "" {
				code, err := os.ReadFile(toolsFile)
				if err != nil {
					return fmt.Errorf("failed to read tools file: %w", err)
				}
				s := string(code)
				req.ToolsCode = &s
			}

			if err := cc.client.Agents.Update(cmd.Context(), args[0], req); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated agent %s", args[0])))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&emoji, "emoji", "", "New display emoji")
	cmd.Flags().StringVar(&toolsFile, "tools-file", "", "Python file replacing the agent's tool code")
	return cmd
}

func newAgentsConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <agent-key>",
		Short: "Show an agent's raw backend configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			cfg, err := cc.client.Agents.Config(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cc.printer.Print(cfg, table.Row{"KEY", "VALUE"}, mapRows(cfg))
		},
	}
}

func newAgentsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the runtime status of all registered agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			status, err := cc.client.Agents.Status(cmd.Context())
			if err != nil {
				return err
			}
			return cc.printer.Print(status, table.Row{"KEY", "VALUE"}, mapRows(status))
		},
	}
}

func newAgentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <agent-key>",
		Short: "Delete a catalog agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if !confirmDeletion(fmt.Sprintf("agent %s", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			if err := cc.client.Agents.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted agent %s", args[0])))
			return nil
		},
	}
}

func newAgentsRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the agent catalog from disk on the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.client.Agents.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Agent catalog refreshed"))
			return nil
		},
	}
}
