package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"agentverse/internal/api"
	"agentverse/internal/cli"
)

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage agent groups",
		Long: `List, create and delete groups, and manage which agents are
assigned to them.`,
	}

	cmd.AddCommand(newGroupsListCmd())
	cmd.AddCommand(newGroupsCreateCmd())
	cmd.AddCommand(newGroupsDeleteCmd())
	cmd.AddCommand(newGroupsAgentsCmd())
	return cmd
}

func newGroupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.checkBackend(); err != nil {
				return err
			}

			var groups []api.Group
			err = cli.RunWithSpinner(rootQuiet, "Fetching groups...", func() error {
				groups, err = cc.client.Groups.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				return cc.printer.Empty("No groups found. Create one with: agentverse groups create <name>")
			}

			headers := table.Row{"ID", "NAME"}
			if cc.printer.Wide() {
				headers = append(headers, "CREATED", "UPDATED")
			}
			rows := make([]table.Row, 0, len(groups))
			for _, g := range groups {
				row := table.Row{g.ID, g.Name}
				if cc.printer.Wide() {
					row = append(row, formatEpoch(g.CreatedAt), formatEpoch(g.UpdatedAt))
				}
				rows = append(rows, row)
			}
			return cc.printer.Print(groups, headers, rows)
		},
	}
}

func newGroupsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.checkBackend(); err != nil {
				return err
			}

			group, err := cc.client.Groups.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created group %q (%s)", group.Name, group.ID)))
			return nil
		},
	}
}

func newGroupsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <group-id>",
		Short: "Delete a group and all its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if !confirmDeletion(fmt.Sprintf("group %s", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			if err := cc.client.Groups.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted group %s", args[0])))
			return nil
		},
	}
}

func newGroupsAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage the agents assigned to a group",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list <group-id>",
		Aliases: []string{"ls"},
		Short:   "List the agents in a group",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			agents, err := cc.client.Groups.ListAgents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printAgents(cc, agents)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <group-id> <agent-key>",
		Short: "Assign an agent to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.client.Groups.AddAgent(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added agent %s to group %s", args[1], args[0])))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove <group-id> <agent-key>",
		Aliases: []string{"rm"},
		Short:   "Remove an agent from a group",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.client.Groups.RemoveAgent(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Removed agent %s from group %s", args[1], args[0])))
			return nil
		},
	})

	return cmd
}

func formatEpoch(epoch float64) string {
	if epoch <= 0 {
		return "-"
	}
	return time.Unix(int64(epoch), 0).Format("2006-01-02 15:04")
}
