package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentverse/internal/cli"
)

func TestRootHasAllSubcommands(t *testing.T) {
	expected := []string{"version", "groups", "agents", "tools", "mcp", "settings", "logs", "chat"}
	for _, name := range expected {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("")

	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	assert.Equal(t, "agentverse version 1.2.3\n", out.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCodeConnection, getExitCode(&cli.ConnectionError{
		Endpoint: "http://localhost:8000",
		Type:     cli.ConnectionErrorNetwork,
	}))
	assert.Equal(t, ExitCodeError, getExitCode(assert.AnError))
}

func TestParseEnvFlags(t *testing.T) {
	env, err := parseEnvFlags([]string{"A=1", "B=two=parts"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "two=parts"}, env)

	_, err = parseEnvFlags([]string{"missing-separator"})
	assert.Error(t, err)

	env, err = parseEnvFlags(nil)
	require.NoError(t, err)
	assert.Nil(t, env)
}
