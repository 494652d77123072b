// Package stream maintains the per-group SSE connection and translates
// inbound server events into state store mutations.
//
// The backend pushes heterogeneous JSON frames over one long-lived
// connection per group. Each frame carries a `type` discriminator; Decode
// turns it into a tagged union (one Event variant per recognized kind, with
// UnknownEvent as the forward-compatible fallback).
//
// The Manager owns the connection lifecycle:
//
//	DISCONNECTED -> CONNECTING -> CONNECTED -> DISCONNECTED
//
// Connect always tears down the previous connection first, so at most one
// connection exists per manager. CONNECTING promotes to CONNECTED on the
// first decoded event (usually the backend's `connected` acknowledgement).
// Transport failures return to DISCONNECTED and surface through the
// optional OnError callback; the manager deliberately implements no
// reconnection policy, that decision belongs to the caller.
//
// Every event effect flows through the Actions interface (append a message,
// reload a collection, raise a notification), keeping a single mutation path
// into the store. Parse failures and unknown event types are logged and
// skipped without closing the stream.
package stream
