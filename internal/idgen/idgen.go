// Package idgen generates opaque trace identifiers for logging and
// tracing, grounded on the teacher's pervasive use of
// github.com/google/uuid for opaque ids elsewhere in the codebase.
// Surface and client ids are never UUIDs: those are the monotonic
// counters the registry and session manager hand out.
package idgen

import "github.com/google/uuid"

// TraceID returns a fresh opaque trace identifier for one client
// connection's logger.LogContext.
func TraceID() string {
	return uuid.New().String()
}

// SpanID returns a fresh opaque span identifier for one IPC request
// within a trace.
func SpanID() string {
	return uuid.New().String()[:8]
}
