// Package lifecycle implements the run-lifecycle events of the validation
// orchestrator, starting with the pre-qualification announcement emitted to
// the onboarding event bus before any status transition.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/onboarding-cl/company-validation/internal/domain"
	pkgactivity "github.com/onboarding-cl/company-validation/pkg/activity"
	"github.com/onboarding-cl/company-validation/pkg/events"
)

// Registered activity names.
const (
	ActivityEmitStarted  = "lifecycle.EmitStarted"
	ActivityEmitFinished = "lifecycle.EmitFinished"
)

// startedPayload is the event body announcing pre-qualification.
type startedPayload struct {
	EventName string        `json:"eventName"`
	Code      int           `json:"code"`
	Message   string        `json:"message"`
	Product   string        `json:"product"`
	ClientID  string        `json:"clientId"`
	Status    domain.Status `json:"status"`
}

// Activities provides the lifecycle Temporal activities.
type Activities struct {
	pkgactivity.BaseActivities
	sink events.EventSink
}

// NewActivities creates lifecycle activities with the provided sink.
func NewActivities(base pkgactivity.BaseActivities, sink events.EventSink) *Activities {
	return &Activities{BaseActivities: base, sink: sink}
}

// EmitStarted announces that pre-qualification began for the request.
// Unlike status updates, this event gates the run: a sink that cannot
// accept the announcement fails the orchestration before any state changes.
func (a *Activities) EmitStarted(ctx context.Context, req domain.ValidationRequest) error {
	payload, err := json.Marshal(startedPayload{
		EventName: "INICIANDO_PRECALIFICACION",
		Code:      0,
		Message:   "iniciado proceso de precalificación",
		Product:   req.Product,
		ClientID:  req.ClientID,
		Status:    domain.StatusPrecalificacion,
	})
	if err != nil {
		return fmt.Errorf("marshal started payload: %w", err)
	}

	envelope := events.Envelope{
		ID:        uuid.NewString(),
		Type:      events.TypeValidationStarted,
		Source:    events.Source,
		Timestamp: time.Now().UTC(),
		ProcessID: req.ProcessID,
		Customer:  req.CustomerCode,
		Payload:   payload,
	}

	if err := a.sink.Append(ctx, envelope); err != nil {
		return fmt.Errorf("emit started event: %w", err)
	}

	pkgactivity.SafeLog(ctx, "validation started event emitted",
		"process_id", req.ProcessID, "customer", req.CustomerCode)
	return nil
}

// EmitFinishedInput carries the terminal status of a completed run.
type EmitFinishedInput struct {
	Request         domain.ValidationRequest `json:"request"`
	Status          domain.Status            `json:"status"`
	RESCheckStarted bool                     `json:"resCheckStarted"`
}

// finishedPayload is the event body reporting the terminal status.
type finishedPayload struct {
	Status          domain.Status `json:"status"`
	RESCheckStarted bool          `json:"resCheckStarted"`
	Product         string        `json:"product"`
	ClientID        string        `json:"clientId"`
}

// EmitFinished reports the terminal status of a run. The outcome is already
// recorded downstream by the time this fires, so emission is best-effort
// and never fails the run.
func (a *Activities) EmitFinished(ctx context.Context, in EmitFinishedInput) error {
	payload, err := json.Marshal(finishedPayload{
		Status:          in.Status,
		RESCheckStarted: in.RESCheckStarted,
		Product:         in.Request.Product,
		ClientID:        in.Request.ClientID,
	})
	if err != nil {
		return fmt.Errorf("marshal finished payload: %w", err)
	}

	a.EmitEventSafe(ctx, events.Envelope{
		ID:        uuid.NewString(),
		Type:      events.TypeValidationFinished,
		Source:    events.Source,
		Timestamp: time.Now().UTC(),
		ProcessID: in.Request.ProcessID,
		Customer:  in.Request.CustomerCode,
		Payload:   payload,
	}, "validation finished")
	return nil
}
