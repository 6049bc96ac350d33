// Package telemetry records operational events that must not interrupt loss
// processing: swallowed secondary failures, recovery actions, and
// performance warnings.
package telemetry

import (
	"context"
	"time"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event is a single telemetry record.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Severity  Severity          `json:"severity"`
	Source    string            `json:"source"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Store persists telemetry events.
type Store interface {
	AppendTelemetryEvent(ctx context.Context, evt Event) error
}

// Emitter records operational telemetry events.
type Emitter struct {
	store Store
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store Store) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the emitter or its
// store is nil, so callers never guard the call site.
func (e *Emitter) Emit(ctx context.Context, evt Event) {
	if e == nil || e.store == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		clock := e.clock
		if clock == nil {
			clock = time.Now
		}
		evt.Timestamp = clock().UTC()
	}
	// A telemetry write failure has nowhere useful to go.
	_ = e.store.AppendTelemetryEvent(ctx, evt)
}

// Warn emits a WARN event.
func (e *Emitter) Warn(ctx context.Context, source, message string, metadata map[string]string) {
	e.Emit(ctx, Event{Severity: SeverityWarn, Source: source, Message: message, Metadata: metadata})
}

// Info emits an INFO event.
func (e *Emitter) Info(ctx context.Context, source, message string, metadata map[string]string) {
	e.Emit(ctx, Event{Severity: SeverityInfo, Source: source, Message: message, Metadata: metadata})
}

// Error emits an ERROR event.
func (e *Emitter) Error(ctx context.Context, source, message string, metadata map[string]string) {
	e.Emit(ctx, Event{Severity: SeverityError, Source: source, Message: message, Metadata: metadata})
}
