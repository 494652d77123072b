// Package store holds the client-side state for the active session: the
// group catalog, the selected group, and its agents, transcript, and
// documents.
//
// Every collection is wrapped in a Resource carrying its loading lifecycle
// so consumers render loading and error states uniformly. Collection load
// failures are captured in the wrapper, not returned; explicit write
// operations (send, upload, create, delete) return their errors so callers
// can react synchronously.
//
// Selection changes are epoch-tagged. SetSelectedGroup disconnects the old
// event stream, cancels in-flight loads, clears group-scoped state, and
// only then dispatches new loads; a response that arrives tagged with a
// previous epoch is dropped. This makes rapid group switching safe against
// slow responses from a deselected group.
//
// The store is the single mutation point for the transcript: both the REST
// send path and the event stream manager append through AddMessage, which
// owns role validation, local-echo deduplication, and mention detection.
package store
