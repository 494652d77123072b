// Package watcher uploads files dropped into a local directory to the
// active group. It is the terminal analog of a drag-and-drop upload panel:
// during a chat session, saving a file into the watched folder pushes it to
// the backend for the configured agent.
package watcher
