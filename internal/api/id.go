package api

import (
	"fmt"
	"sync/atomic"
	"time"
)

var localSeq atomic.Uint64

// NewLocalMessageID returns a timestamp-derived identifier for messages
// constructed client-side. Stream payloads carry no stable id, so locally
// appended messages mint their own; the sequence suffix keeps ids unique
// within a single millisecond.
func NewLocalMessageID() string {
	return fmt.Sprintf("local-%d-%d", time.Now().UnixMilli(), localSeq.Add(1))
}
