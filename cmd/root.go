package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"agentverse/internal/cli"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConnection indicates the backend could not be reached.
	ExitCodeConnection = 2
)

// rootCmd represents the base command for the agentverse application.
var rootCmd = &cobra.Command{
	Use:   "agentverse",
	Short: "Chat with groups of collaborating AI agents",
	Long: `agentverse is the terminal client for an agentverse backend: create
groups of agents, chat with them in real time, upload documents for them
to work on, and manage the agent, tool and MCP server catalogs.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// Persistent flags shared by every subcommand.
var (
	rootEndpoint   string
	rootConfigPath string
	rootFormat     string
	rootNoHeaders  bool
	rootQuiet      bool
	rootLogLevel   string
)

// SetVersion sets the version for the root command. Called from main to
// inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "agentverse version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes for scripting.
func getExitCode(err error) int {
	var connErr *cli.ConnectionError
	if errors.As(err, &connErr) {
		return ExitCodeConnection
	}
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootEndpoint, "endpoint", "",
		"Backend endpoint URL (default from AGENTVERSE_ENDPOINT or config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "",
		"Configuration directory (default ~/.config/agentverse)")
	rootCmd.PersistentFlags().StringVarP(&rootFormat, "output", "o", "table",
		"Output format: table, wide, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&rootNoHeaders, "no-headers", false,
		"Omit the header row in table output")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false,
		"Suppress progress indicators")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "",
		"Log level: debug, info, warn, error (default from config.yaml)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGroupsCmd())
	rootCmd.AddCommand(newAgentsCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newLogsCmd())
	rootCmd.AddCommand(newChatCmd())
}
