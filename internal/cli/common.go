package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
)

// CheckServerRunning probes the backend status endpoint so commands can
// fail fast with a classified connection error instead of a raw transport
// message.
func CheckServerRunning(endpoint string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint + "/api/v1/config/status/")
	if err != nil {
		return ClassifyConnectionError(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("agentverse backend at %s is not responding correctly (status: %d)", endpoint, resp.StatusCode)
	}
	return nil
}

// FormatError formats an error message for CLI output.
func FormatError(err error) string {
	return text.FgRed.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output.
func FormatSuccess(msg string) string {
	return text.FgGreen.Sprint("✓ ") + msg
}

// FormatWarning formats a warning message for CLI output.
func FormatWarning(msg string) string {
	return text.FgYellow.Sprint("⚠ ") + msg
}
