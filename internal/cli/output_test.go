package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentverse/internal/config"
)

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range ValidOutputFormats {
		assert.NoError(t, ValidateOutputFormat(string(format)))
	}
	assert.Error(t, ValidateOutputFormat("xml"))
	assert.Error(t, ValidateOutputFormat(""))
}

func TestResolveEndpointPrecedence(t *testing.T) {
	cfg := &config.Config{Endpoint: "http://from-config:8000"}

	assert.Equal(t, "http://from-flag:8000", ResolveEndpoint("http://from-flag:8000", cfg))

	t.Setenv(EndpointEnvVar, "http://from-env:8000")
	assert.Equal(t, "http://from-env:8000", ResolveEndpoint("", cfg))
	assert.Equal(t, "http://from-flag:8000", ResolveEndpoint("http://from-flag:8000", cfg),
		"flag beats environment")

	t.Setenv(EndpointEnvVar, "")
	assert.Equal(t, "http://from-config:8000", ResolveEndpoint("", cfg))
	assert.Equal(t, config.DefaultEndpoint, ResolveEndpoint("", &config.Config{}))
}

func TestPrinterJSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: OutputFormatJSON, Out: &buf}

	data := []map[string]string{{"name": "alpha"}}
	require.NoError(t, p.Print(data, table.Row{"NAME"}, []table.Row{{"alpha"}}))

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, data, decoded)
}

func TestPrinterYAML(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: OutputFormatYAML, Out: &buf}

	type item struct {
		Name string `json:"name"`
	}
	require.NoError(t, p.Print([]item{{Name: "alpha"}}, nil, nil))

	assert.Contains(t, buf.String(), "name: alpha", "yaml uses wire field names")
}

func TestPrinterTable(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: OutputFormatTable, Out: &buf}

	require.NoError(t, p.Print(nil, table.Row{"NAME", "AGENTS"}, []table.Row{
		{"alpha", "2"},
		{"beta", "0"},
	}))

	out := buf.String()
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "NAME")
}

func TestPrinterTableNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Format: OutputFormatTable, NoHeaders: true, Out: &buf}

	require.NoError(t, p.Print(nil, table.Row{"NAME"}, []table.Row{{"alpha"}}))
	assert.NotContains(t, buf.String(), "NAME")
}

func TestClassifyConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ConnectionErrorType
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "backend.invalid"}, ConnectionErrorDNS},
		{"refused", errors.New("dial tcp 127.0.0.1:8000: connection refused"), ConnectionErrorNetwork},
		{"timeout", errors.New("context deadline exceeded"), ConnectionErrorTimeout},
		{"other", errors.New("mystery"), ConnectionErrorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := ClassifyConnectionError(fmt.Errorf("request failed: %w", tt.err), "http://localhost:8000")
			require.NotNil(t, ce)
			assert.Equal(t, tt.want, ce.Type)
			assert.True(t, strings.Contains(ce.Error(), "http://localhost:8000"))
		})
	}

	assert.Nil(t, ClassifyConnectionError(nil, "http://localhost:8000"))
}
