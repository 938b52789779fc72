package notify

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/onboarding-cl/company-validation/internal/domain"
	pkgactivity "github.com/onboarding-cl/company-validation/pkg/activity"
)

// ActivityNotify is the registered name of the notification activity.
const ActivityNotify = "notify.Notify"

// NotifyInput carries one notification for the manager application.
type NotifyInput struct {
	Request domain.ValidationRequest `json:"request"`
	Status  domain.Status            `json:"status"`
	Data    json.RawMessage          `json:"data,omitempty"`
}

// Activities provides the notification Temporal activities.
type Activities struct {
	pkgactivity.BaseActivities
	client Client
}

// NewActivities creates notify activities with the provided client.
func NewActivities(base pkgactivity.BaseActivities, client Client) *Activities {
	return &Activities{BaseActivities: base, client: client}
}

// Notify pushes one status notification. Notification delivery is
// best-effort from the workflow's point of view; the error return lets the
// caller decide whether to swallow it.
func (a *Activities) Notify(ctx context.Context, in NotifyInput) error {
	if err := a.client.Notify(ctx, in.Request, in.Status, in.Data); err != nil {
		pkgactivity.SafeLogError(ctx, "notification failed",
			"process_id", in.Request.ProcessID, "status", in.Status, "error", err)
		return err
	}

	pkgactivity.SafeLog(ctx, "notification sent",
		"process_id", in.Request.ProcessID, "status", in.Status)
	return nil
}
