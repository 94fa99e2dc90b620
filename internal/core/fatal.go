package core

import "fmt"

// FatalError describes an engine condition that cannot be surfaced as a
// catchable script error (allocation failure, internal assertion). It is
// carried by a panic, never returned as a value: the engine's control
// transfer for this fault class cannot unwind across the boundary, so the
// current unit of work is terminated and the owning Context is disabled.
type FatalError struct {
	Code    int    // engine fault code, 0 when the engine reported none
	Message string // the engine's fatal message
	Dump    string // best-effort dump of internal engine state
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal engine fault (code %d): %s", e.Code, e.Message)
}
