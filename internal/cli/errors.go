package cli

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ConnectionErrorType categorizes connection failures for user feedback.
type ConnectionErrorType int

const (
	ConnectionErrorUnknown ConnectionErrorType = iota
	ConnectionErrorNetwork
	ConnectionErrorTimeout
	ConnectionErrorDNS
)

func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError indicates the backend could not be reached.
type ConnectionError struct {
	Endpoint string
	Type     ConnectionErrorType
	Reason   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf(`%s: cannot reach agentverse backend at %s: %v

Check that the backend is running and the endpoint is correct.
Set it with --endpoint, %s, or endpoint: in config.yaml.`,
		e.Type, e.Endpoint, e.Reason, EndpointEnvVar)
}

func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// ClassifyConnectionError wraps err in a ConnectionError with the matching
// category. Returns nil for a nil error.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}

	ce := &ConnectionError{Endpoint: endpoint, Type: ConnectionErrorUnknown, Reason: err}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		ce.Type = ConnectionErrorDNS
		return ce
	}
	if isTimeoutError(err) {
		ce.Type = ConnectionErrorTimeout
		return ce
	}
	if isNetworkError(err.Error()) {
		ce.Type = ConnectionErrorNetwork
		return ce
	}
	return ce
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}

func isNetworkError(msg string) bool {
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
	} {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}
