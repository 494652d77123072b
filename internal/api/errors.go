package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ValidationIssue is a single field-level validation failure extracted from
// the backend's error envelope. The backend emits both plain strings and
// {field, message} objects; both decode into this type.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v *ValidationIssue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Message = s
		return nil
	}
	type alias ValidationIssue
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = ValidationIssue(a)
	return nil
}

func (v ValidationIssue) String() string {
	if v.Field != "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return v.Message
}

// APIError represents a non-2xx response from the backend. The backend wraps
// failures in a JSON envelope with a `detail` member that is either a plain
// string or an object carrying `validation_errors`.
type APIError struct {
	// Status is the HTTP status code of the response.
	Status int

	// Detail is the human-readable failure description.
	Detail string

	// ValidationErrors holds field-level messages when the failure was a
	// configuration validation rejection.
	ValidationErrors []ValidationIssue

	// Raw is the unparsed response body, kept for diagnostics.
	Raw json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.ValidationErrors) > 0 {
		return fmt.Sprintf("HTTP %d: %s (%d validation errors)", e.Status, e.Detail, len(e.ValidationErrors))
	}
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, http.StatusText(e.Status))
}

// IsValidationError checks whether an error is (or wraps) an APIError
// carrying field-level validation messages.
func IsValidationError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && len(apiErr.ValidationErrors) > 0
}

// IsNotFound checks whether an error is (or wraps) a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// parseAPIError builds an APIError from a non-2xx response body. It tolerates
// bodies that are not JSON at all, keeping whatever text fits as the detail.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Raw: append(json.RawMessage(nil), body...)}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		apiErr.Detail = truncate(string(body), 200)
		return apiErr
	}

	// detail as plain string
	var detailStr string
	if err := json.Unmarshal(envelope.Detail, &detailStr); err == nil {
		apiErr.Detail = detailStr
		return apiErr
	}

	// detail as structured object
	var detailObj struct {
		Message          string            `json:"message"`
		Error            string            `json:"error"`
		ValidationErrors []ValidationIssue `json:"validation_errors"`
	}
	if err := json.Unmarshal(envelope.Detail, &detailObj); err == nil {
		apiErr.ValidationErrors = detailObj.ValidationErrors
		switch {
		case detailObj.Message != "":
			apiErr.Detail = detailObj.Message
		case detailObj.Error != "":
			apiErr.Detail = detailObj.Error
		case len(detailObj.ValidationErrors) > 0:
			apiErr.Detail = "validation failed"
		}
	}
	if apiErr.Detail == "" {
		apiErr.Detail = truncate(string(envelope.Detail), 200)
	}
	return apiErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
