// Package events provides the event infrastructure for validation lifecycle
// emission. It defines the Envelope type wrapping lifecycle events with
// consistent metadata and the EventSink interface for event delivery to the
// onboarding event bus.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
)

// Event types emitted during a validation run.
const (
	// TypeValidationStarted announces that pre-qualification began for a
	// customer. Emitted exactly once, before any status transition.
	TypeValidationStarted = "validation.started"

	// TypeValidationFinished announces the terminal status of a run. Emitted
	// best-effort after the outcome is already recorded downstream.
	TypeValidationFinished = "validation.finished"
)

// Source identifies this orchestrator as the event emitter.
const Source = "company-validation-wfl"

// Envelope wraps lifecycle events with consistent metadata for reliable
// processing by downstream consumers. Payload schema varies by Type.
type Envelope struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type identifies the event for routing, e.g. TypeValidationStarted.
	Type string `json:"type"`

	// Source identifies the component that emitted this event.
	Source string `json:"source"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// ProcessID correlates the event with the validation run.
	ProcessID string `json:"process_id"`

	// Customer identifies the onboarding customer the event concerns.
	Customer string `json:"customer"`

	// Payload contains the event data as JSON.
	Payload json.RawMessage `json:"payload"`
}

// EventSink delivers envelopes to downstream consumers. Implementations may
// publish to an event bus, an outbox table, or a log. Delivery is
// best-effort: sink failures must not fail the validation run.
type EventSink interface {
	// Append adds an event to the sink. Implementations should handle
	// duplicate events as no-ops and return quickly.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink is a null EventSink for tests or disabled event emission.
type NoOpEventSink struct{}

// Append implements EventSink with no-op behavior.
func (NoOpEventSink) Append(context.Context, Envelope) error { return nil }

// NewNoOpEventSink creates a sink that discards every event.
func NewNoOpEventSink() EventSink { return NoOpEventSink{} }

// LogSink writes envelopes to a structured logger. It is the default sink
// for local runs where no event bus is configured.
type LogSink struct{ logger *slog.Logger }

// NewLogSink creates a sink backed by the given logger. A nil logger uses
// slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "event-sink")}
}

// Append implements EventSink by logging the envelope.
func (s *LogSink) Append(_ context.Context, envelope Envelope) error {
	s.logger.Info("event emitted",
		"event_id", envelope.ID,
		"event_type", envelope.Type,
		"process_id", envelope.ProcessID,
		"customer", envelope.Customer,
	)
	return nil
}
