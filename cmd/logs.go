package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"agentverse/internal/api"
	"agentverse/internal/cli"
)

var (
	logsFilterAgent string
	logsFilterLevel string
	logsLimit       int
	logsExportFmt   string
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect recorded backend sessions",
		Long: `The backend records one session log per run: structured events,
per-agent logs, and performance counters. These commands browse and
export those recordings.`,
	}

	cmd.AddCommand(newLogsSessionsCmd())
	cmd.AddCommand(newLogsShowCmd())
	cmd.AddCommand(newLogsSummaryCmd())
	cmd.AddCommand(newLogsPerformanceCmd())
	cmd.AddCommand(newLogsExportCmd())
	cmd.AddCommand(newLogsDeleteCmd())
	cmd.AddCommand(newLogsAppCmd())
	cmd.AddCommand(newLogsStartupCmd())
	return cmd
}

func newLogsAppCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Tail the backend application log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			logs, err := cc.client.Logs.ApplicationLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return cc.printer.Print(logs, table.Row{"KEY", "VALUE"}, mapRows(logs))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of lines")
	return cmd
}

func newLogsStartupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "startup",
		Short: "Show the backend's startup validation log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			logs, err := cc.client.Logs.StartupLogs(cmd.Context())
			if err != nil {
				return err
			}
			return cc.printer.Print(logs, table.Row{"KEY", "VALUE"}, mapRows(logs))
		},
	}
}

func newLogsSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"ls"},
		Short:   "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.checkBackend(); err != nil {
				return err
			}

			var sessions []api.LogSession
			err = cli.RunWithSpinner(rootQuiet, "Fetching sessions...", func() error {
				sessions, err = cc.client.Logs.Sessions(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				return cc.printer.Empty("No recorded sessions")
			}

			headers := table.Row{"SESSION", "CREATED", "EVENTS"}
			if cc.printer.Wide() {
				headers = append(headers, "MODIFIED", "LOG SIZE")
			}
			rows := make([]table.Row, 0, len(sessions))
			for _, s := range sessions {
				events := "-"
				if s.HasEvents {
					events = "yes"
				}
				row := table.Row{s.SessionID, s.CreatedAt, events}
				if cc.printer.Wide() {
					row = append(row, s.ModifiedAt, fmt.Sprintf("%d", s.SessionLogSize))
				}
				rows = append(rows, row)
			}
			return cc.printer.Print(sessions, headers, rows)
		},
	}
}

func newLogsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the log entries of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			logs, err := cc.client.Logs.SessionLogs(cmd.Context(), args[0], api.SessionLogFilter{
				AgentID: logsFilterAgent,
				Level:   logsFilterLevel,
				Limit:   logsLimit,
			})
			if err != nil {
				return err
			}
			return cc.printer.Print(logs, table.Row{"KEY", "VALUE"}, mapRows(logs))
		},
	}

	cmd.Flags().StringVar(&logsFilterAgent, "agent", "", "Only entries from this agent")
	cmd.Flags().StringVar(&logsFilterLevel, "level", "", "Only entries at this level")
	cmd.Flags().IntVar(&logsLimit, "limit", 0, "Maximum number of entries")
	return cmd
}

func newLogsSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <session-id>",
		Short: "Show a session's activity summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			summary, err := cc.client.Logs.SessionSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cc.printer.Print(summary, table.Row{"KEY", "VALUE"}, mapRows(summary))
		},
	}
}

func newLogsPerformanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "performance <session-id>",
		Short: "Show a session's performance counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			perf, err := cc.client.Logs.SessionPerformance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cc.printer.Print(perf, table.Row{"KEY", "VALUE"}, mapRows(perf))
		},
	}
}

func newLogsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			export, err := cc.client.Logs.Export(cmd.Context(), args[0], logsExportFmt)
			if err != nil {
				return err
			}
			return cc.printer.Print(export, table.Row{"KEY", "VALUE"}, mapRows(export))
		},
	}

	cmd.Flags().StringVar(&logsExportFmt, "format", "json", "Export format (json, text)")
	return cmd
}

func newLogsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if !confirmDeletion(fmt.Sprintf("session %s", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			if err := cc.client.Logs.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted session %s", args[0])))
			return nil
		},
	}
}
