package ingest

import "fmt"

// SourceError wraps an unrecoverable failure of one listing source within a
// cycle (timeout, non-2xx, malformed body, auth). It is isolated to that
// source and never aborts the cycle.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
