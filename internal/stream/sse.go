package stream

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// frameReader extracts data payloads from a text/event-stream body.
// The backend emits "data: <json>\n\n" blocks; event/id/retry fields and
// comment lines are tolerated and skipped.
type frameReader struct {
	scanner *bufio.Scanner
}

// maxFrameSize bounds a single stream frame. Event payloads carry message
// excerpts, not documents, so 1MB is generous.
const maxFrameSize = 1024 * 1024

func newFrameReader(r io.Reader) *frameReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return &frameReader{scanner: scanner}
}

// Next returns the data payload of the next frame. Multi-line data fields
// are joined with newlines per the SSE specification. Returns io.EOF when
// the stream ends cleanly and the scanner's error otherwise.
func (f *frameReader) Next() ([]byte, error) {
	var data bytes.Buffer
	for f.scanner.Scan() {
		line := f.scanner.Text()

		if line == "" {
			// Blank line terminates a frame; skip keep-alive separators
			// that carried no data.
			if data.Len() > 0 {
				return data.Bytes(), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue // comment / keep-alive
		}
		if value, ok := strings.CutPrefix(line, "data:"); ok {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(value, " "))
		}
		// event:/id:/retry: fields are not used by the backend; skip.
	}
	if err := f.scanner.Err(); err != nil {
		return nil, err
	}
	if data.Len() > 0 {
		// Stream ended mid-frame; deliver what we have.
		return data.Bytes(), nil
	}
	return nil, io.EOF
}
