package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"agentverse/internal/api"
	"agentverse/internal/cli"
)

var (
	toolCreateCategory    string
	toolCreateDescription string
	toolCreateCodeFile    string
	toolSkipValidation    bool
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage user-defined tools",
		Long: `Tools are Python functions agents can call. Tool code is validated
on the backend before it is accepted.`,
	}

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsGetCmd())
	cmd.AddCommand(newToolsCreateCmd())
	cmd.AddCommand(newToolsDeleteCmd())
	cmd.AddCommand(newToolsTemplatesCmd())
	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all user-defined tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if err := cc.checkBackend(); err != nil {
				return err
			}

			var tools map[string]api.Tool
			err = cli.RunWithSpinner(rootQuiet, "Fetching tools...", func() error {
				tools, err = cc.client.Tools.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if len(tools) == 0 {
				return cc.printer.Empty("No tools configured")
			}

			ids := make([]string, 0, len(tools))
			for id := range tools {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			headers := table.Row{"ID", "NAME", "CATEGORY", "FUNCTIONS"}
			rows := make([]table.Row, 0, len(ids))
			for _, id := range ids {
				t := tools[id]
				rows = append(rows, table.Row{id, t.Name, t.Category, strings.Join(t.Functions, ", ")})
			}
			return cc.printer.Print(tools, headers, rows)
		},
	}
}

func newToolsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <tool-id>",
		Short: "Show one tool including its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			tools, err := cc.client.Tools.List(cmd.Context())
			if err != nil {
				return err
			}
			tool, ok := tools[args[0]]
			if !ok {
				return fmt.Errorf("no tool %q", args[0])
			}

			if cc.printer.Format == cli.OutputFormatTable || cc.printer.Format == cli.OutputFormatWide {
				fmt.Printf("Name:        %s\n", tool.Name)
				fmt.Printf("Category:    %s\n", tool.Category)
				fmt.Printf("Description: %s\n", tool.Description)
				fmt.Printf("Functions:   %s\n\n", strings.Join(tool.Functions, ", "))
				fmt.Println(tool.Code)
				return nil
			}
			return cc.printer.Print(tool, nil, nil)
		},
	}
}

func newToolsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <tool-id> <name>",
		Short: "Create a tool from a Python code file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if toolCreateCodeFile == "" {
				return fmt.Errorf("--code-file is required")
			}
			code, err := os.ReadFile(toolCreateCodeFile)
			if err != nil {
				return fmt.Errorf("failed to read code file: %w", err)
			}

			tool := api.Tool{
				Name:        args[1],
				Description: toolCreateDescription,
				Category:    toolCreateCategory,
				Code:        string(code),
			}

			if !toolSkipValidation {
				result, err := cc.client.Validation.ValidateTool(cmd.Context(), tool)
				if err != nil {
					return err
				}
				for _, w := range result.Warnings {
					fmt.Println(cli.FormatWarning(w))
				}
				if !result.Valid {
					return fmt.Errorf("tool validation failed: %s", strings.Join(result.Errors, "; "))
				}
			}

			if err := cc.client.Tools.Add(cmd.Context(), args[0], tool); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created tool %q", args[0])))
			return nil
		},
	}

	cmd.Flags().StringVar(&toolCreateCodeFile, "code-file", "", "Python file with the tool implementation")
	cmd.Flags().StringVar(&toolCreateCategory, "category", "custom", "Tool category")
	cmd.Flags().StringVar(&toolCreateDescription, "description", "", "What this tool does")
	cmd.Flags().BoolVar(&toolSkipValidation, "skip-validation", false, "Skip backend validation before saving")
	return cmd
}

func newToolsTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "Show starter templates for tool definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			templates, err := cc.client.Validation.ToolTemplates(cmd.Context())
			if err != nil {
				return err
			}
			return cc.printer.Print(templates, table.Row{"KEY", "VALUE"}, mapRows(templates))
		},
	}
}

func newToolsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tool-id>",
		Short: "Delete a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext()
			if err != nil {
				return err
			}
			if !confirmDeletion(fmt.Sprintf("tool %s", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			if err := cc.client.Tools.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted tool %s", args[0])))
			return nil
		},
	}
}
