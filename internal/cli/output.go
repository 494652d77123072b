package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"agentverse/internal/config"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable formats output as a rounded table.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatWide formats output as a table with additional columns.
	OutputFormatWide OutputFormat = "wide"
	// OutputFormatJSON formats output as indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML formats output as YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatWide,
	OutputFormatJSON,
	OutputFormatYAML,
}

// ValidateOutputFormat validates that the given format string is a supported
// output format.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatWide, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, wide, json, yaml)", format)
	}
}

// EndpointEnvVar is the environment variable overriding the backend endpoint.
const EndpointEnvVar = "AGENTVERSE_ENDPOINT"

// ResolveEndpoint resolves the backend endpoint using the precedence order:
//  1. --endpoint flag
//  2. AGENTVERSE_ENDPOINT environment variable
//  3. endpoint from config.yaml
//  4. built-in default
func ResolveEndpoint(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EndpointEnvVar); env != "" {
		return env
	}
	if cfg != nil && cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return config.DefaultEndpoint
}

// Printer renders command results in the selected output format. Table and
// wide render through go-pretty; json and yaml serialize the raw data the
// command fetched, ignoring the tabular projection.
type Printer struct {
	Format    OutputFormat
	NoHeaders bool
	Out       io.Writer
}

// NewPrinter creates a printer writing to stdout.
func NewPrinter(format OutputFormat) *Printer {
	return &Printer{Format: format, Out: os.Stdout}
}

// Wide reports whether the wide column set should be included.
func (p *Printer) Wide() bool {
	return p.Format == OutputFormatWide
}

// Print renders data. headers and rows feed the tabular formats; data feeds
// the serialized ones.
func (p *Printer) Print(data any, headers table.Row, rows []table.Row) error {
	switch p.Format {
	case OutputFormatJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)

	case OutputFormatYAML:
		// Round-trip through JSON so yaml sees the wire field names instead
		// of Go struct names.
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = p.Out.Write(out)
		return err

	default:
		p.renderTable(headers, rows)
		return nil
	}
}

// Empty prints a friendly placeholder for empty collections in tabular
// formats and an empty document in serialized ones.
func (p *Printer) Empty(message string) error {
	switch p.Format {
	case OutputFormatJSON:
		_, err := fmt.Fprintln(p.Out, "[]")
		return err
	case OutputFormatYAML:
		_, err := fmt.Fprintln(p.Out, "[]")
		return err
	default:
		_, err := fmt.Fprintf(p.Out, "%s\n", text.FgYellow.Sprint(message))
		return err
	}
}

func (p *Printer) renderTable(headers table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(p.Out)
	t.SetStyle(table.StyleRounded)
	if !p.NoHeaders {
		colored := make(table.Row, len(headers))
		for i, h := range headers {
			colored[i] = text.FgHiCyan.Sprintf("%v", h)
		}
		t.AppendHeader(colored)
	}
	t.AppendRows(rows)
	t.Render()
}
