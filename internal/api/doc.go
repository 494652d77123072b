// Package api is the typed HTTP client for the agentverse backend.
//
// The backend owns all business logic; this package only wraps its REST
// surface (mounted under /api/v1) and the per-group SSE event stream.
//
// # Structure
//
// A single Client carries the shared request path: JSON headers, per-request
// timeouts, optional retry with exponential backoff, request logging, and a
// cancel registry for aborting tagged in-flight requests. Domain resources
// hang off it as typed services:
//
//	client := api.NewClient("http://localhost:8000")
//	groups, err := client.Groups.List(ctx)
//	err = client.Chat.Send(ctx, groupID, agentID, "hello")
//
// # Error handling
//
// Non-2xx responses decode into *APIError. The backend wraps failures in a
// `detail` envelope that is either a plain string or an object carrying
// `validation_errors`; both shapes are extracted so form editors can show
// field-level messages. Use IsValidationError and IsNotFound to branch.
//
// # Cancellation
//
// Group-scoped loads register themselves under stable tags
// ("group-agents:<id>", "group-messages:<id>", "group-documents:<id>").
// CancelAllRequests aborts whatever is in flight; the store calls it when
// the selected group changes so late responses cannot clobber fresh state.
package api
