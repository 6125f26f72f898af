package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging fields for one client request
// as it flows through session dispatch, registry mutation, and
// composition.
type LogContext struct {
	TraceID   string
	SpanID    string
	ClientID  uint32
	SurfaceID uint32
	OutputID  string
	StartTime time.Time
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a freshly connected client.
func NewLogContext(clientID uint32) *LogContext {
	return &LogContext{
		ClientID:  clientID,
		StartTime: time.Now(),
	}
}

// Clone returns a copy of lc.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithSurface returns a copy with the surface ID set.
func (lc *LogContext) WithSurface(id uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.SurfaceID = id
	}
	return clone
}

// WithOutput returns a copy with the output ID set.
func (lc *LogContext) WithOutput(id string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.OutputID = id
	}
	return clone
}

// WithTrace returns a copy with trace/span IDs set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
