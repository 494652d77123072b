package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"agentverse/internal/api"
	"agentverse/internal/cli"
	pkgstrings "agentverse/pkg/strings"
)

var (
	mcpCreateArgs        []string
	mcpCreateEnv         []string
	mcpCreateDescription string
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage MCP server configurations",
		Long: `MCP servers are external tool processes the backend launches on
behalf of agents. Configurations are validated before they are saved,
and connectivity can be tested without saving.`,
	}

	cmd.AddCommand(newMCPListCmd())
	cmd.AddCommand(newMCPCreateCmd())
	cmd.AddCommand(newMCPDeleteCmd())
	cmd.AddCommand(newMCPTestCmd())
	cmd.AddCommand(newMCPTemplatesCmd())
	return cmd
}

func newMCPTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "Show starter templates for MCP server definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			templates, err := cc.client.Validation.MCPTemplates(cmd.Context())
			if err != nil {
				return err
			}
			return cc.printer.Print(templates, table.Row{"KEY", "VALUE"}, mapRows(templates))
		},
	}
}

func newMCPListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured MCP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.checkBackend(); err != nil {
				return err
			}

			var servers map[string]api.MCPServer
			err = cli.RunWithSpinner(rootQuiet, "Fetching MCP servers...", func() error {
				servers, err = cc.client.MCP.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if len(servers) == 0 {
				return cc.printer.Empty("No MCP servers configured")
			}

			ids := make([]string, 0, len(servers))
			for id := range servers {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			headers := table.Row{"ID", "COMMAND", "ARGS"}
			if cc.printer.Wide() {
				headers = append(headers, "DESCRIPTION")
			}
			rows := make([]table.Row, 0, len(ids))
			for _, id := range ids {
				s := servers[id]
				row := table.Row{id, s.Command, strings.Join(s.Args, " ")}
				if cc.printer.Wide() {
					row = append(row, pkgstrings.TruncateCell(s.Description, pkgstrings.DefaultCellMaxLen))
				}
				rows = append(rows, row)
			}
			return cc.printer.Print(servers, headers, rows)
		},
	}
}

func parseEnvFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --env %q, expected KEY=VALUE", pair)
		}
		env[key] = value
	}
	return env, nil
}

func newMCPCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <mcp-id> <command>",
		Short: "Add an MCP server configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			env, err := parseEnvFlags(mcpCreateEnv)
			if err != nil {
				return err
			}

			server := api.MCPServer{
				Command:     args[1],
				Args:        mcpCreateArgs,
				Env:         env,
				Description: mcpCreateDescription,
			}

			result, err := cc.client.Validation.ValidateMCP(cmd.Context(), server)
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				fmt.Println(cli.FormatWarning(w))
			}
			if !result.Valid {
				return fmt.Errorf("MCP validation failed: %s", strings.Join(result.Errors, "; "))
			}

			if err := cc.client.MCP.Add(cmd.Context(), args[0], server); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created MCP server %q", args[0])))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&mcpCreateArgs, "arg", nil, "Command argument (repeatable)")
	cmd.Flags().StringArrayVar(&mcpCreateEnv, "env", nil, "Environment variable KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&mcpCreateDescription, "description", "", "What this server provides")
	return cmd
}

func newMCPDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <mcp-id>",
		Short: "Delete an MCP server configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if !confirmDeletion(fmt.Sprintf("MCP server %s", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			if err := cc.client.MCP.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted MCP server %s", args[0])))
			return nil
		},
	}
}

func newMCPTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <mcp-id>",
		Short: "Test connectivity to a configured MCP server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			servers, err := cc.client.MCP.List(cmd.Context())
			if err != nil {
				return err
			}
			server, ok := servers[args[0]]
			if !ok {
				return fmt.Errorf("no MCP server %q", args[0])
			}

			var result *api.ValidationResult
			err = cli.RunWithSpinner(rootQuiet, fmt.Sprintf("Testing %s...", args[0]), func() error {
				result, err = cc.client.Validation.TestMCPConnectivity(cmd.Context(), server)
				return err
			})
			if err != nil {
				return err
			}

			if result.Valid {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("MCP server %s is reachable", args[0])))
			} else {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("MCP server %s failed: %s",
					args[0], strings.Join(result.Errors, "; "))))
			}
			for _, w := range result.Warnings {
				fmt.Println(cli.FormatWarning(w))
			}
			return nil
		},
	}
}
