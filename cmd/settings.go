package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"agentverse/internal/cli"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change backend settings",
	}

	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newSettingsResetCmd())
	cmd.AddCommand(newSettingsValidateCmd())
	cmd.AddCommand(newSettingsBackupCmd())
	cmd.AddCommand(newSettingsStatusCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the effective backend settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			settings, err := cc.client.Settings.Get(cmd.Context())
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(settings.Settings))
			for k := range settings.Settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			headers := table.Row{"KEY", "VALUE", "OVERRIDDEN"}
			rows := make([]table.Row, 0, len(keys))
			for _, k := range keys {
				overridden := ""
				if _, ok := settings.Overrides[k]; ok {
					overridden = "yes"
				}
				rows = append(rows, table.Row{k, fmt.Sprintf("%v", settings.Settings[k]), overridden})
			}
			return cc.printer.Print(settings, headers, rows)
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key=value> [key=value...]",
		Short: "Override backend settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}

			overrides := make(map[string]any, len(args))
			for _, pair := range args {
				key, value, found := strings.Cut(pair, "=")
				if !found || key == "" {
					return fmt.Errorf("invalid setting %q, expected key=value", pair)
				}
				overrides[key] = value
			}

			if err := cc.client.Settings.Update(cmd.Context(), overrides); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated %d setting(s)", len(overrides))))
			return nil
		},
	}
}

func newSettingsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove all settings overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.client.Settings.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Settings reset to defaults"))
			return nil
		},
	}
}

func newSettingsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the current backend settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			result, err := cc.client.Settings.Validate(cmd.Context())
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				fmt.Println(cli.FormatWarning(w))
			}
			if !result.Valid {
				return fmt.Errorf("settings are invalid: %s", strings.Join(result.Errors, "; "))
			}
			fmt.Println(cli.FormatSuccess("Settings are valid"))
			return nil
		},
	}
}

func newSettingsBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Create a backend configuration backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			result, err := cc.client.Settings.Backup(cmd.Context())
			if err != nil {
				return err
			}
			return cc.printer.Print(result, table.Row{"KEY", "VALUE"}, mapRows(result))
		},
	}
}

func newSettingsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend configuration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			status, err := cc.client.Settings.Status(cmd.Context())
			if err != nil {
				return err
			}
			return cc.printer.Print(status, table.Row{"KEY", "VALUE"}, mapRows(status))
		},
	}
}

// mapRows projects a generic JSON object into sorted key/value rows.
func mapRows(data map[string]any) []table.Row {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]table.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, table.Row{k, fmt.Sprintf("%v", data[k])})
	}
	return rows
}
