package cmd

import (
	"fmt"
	"os"

	"agentverse/internal/api"
	"agentverse/internal/cli"
	"agentverse/internal/config"
	"agentverse/pkg/logging"
)

// commandContext carries the resolved runtime pieces every subcommand
// needs: loaded configuration, an API client pointed at the resolved
// endpoint, and a printer for the chosen output format.
type commandContext struct {
	cfg      config.Config
	client   *api.Client
	printer  *cli.Printer
	endpoint string
}

// newCommandContext validates flags, loads configuration, initializes
// logging, and builds the API client.
func newCommandContext() (*commandContext, error) {
	if err := cli.ValidateOutputFormat(rootFormat); err != nil {
		return nil, err
	}

	configPath := rootConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	levelStr := rootLogLevel
	if levelStr == "" {
		levelStr = cfg.LogLevel
	}
	logging.InitForCLI(logging.ParseLevel(levelStr), os.Stderr)

	endpoint := cli.ResolveEndpoint(rootEndpoint, &cfg)

	client := api.NewClient(endpoint,
		api.WithTimeout(cfg.Timeout),
		api.WithRetry(cfg.Retries),
	)

	printer := cli.NewPrinter(cli.OutputFormat(rootFormat))
	printer.NoHeaders = rootNoHeaders

	return &commandContext{
		cfg:      cfg,
		client:   client,
		printer:  printer,
		endpoint: endpoint,
	}, nil
}

// checkBackend fails fast with a classified connection error when the
// backend is unreachable.
func (c *commandContext) checkBackend() error {
	return cli.CheckServerRunning(c.endpoint)
}

// confirmDeletion asks for interactive confirmation unless quiet mode is
// set.
func confirmDeletion(what string) bool {
	if rootQuiet {
		return true
	}
	fmt.Printf("Delete %s? This cannot be undone. [y/N]: ", what)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y" || response == "yes"
}
