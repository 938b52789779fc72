package ecommerce

import (
	"context"
	"fmt"

	"github.com/onboarding-cl/company-validation/internal/domain"
	pkgactivity "github.com/onboarding-cl/company-validation/pkg/activity"
)

// ActivityUpdateStatus is the registered name of the status-update activity.
// Workflows invoke it by name so test environments can mock it directly.
const ActivityUpdateStatus = "ecommerce.UpdateStatus"

// UpdateStatusInput carries one status transition for the onboarding
// request.
type UpdateStatusInput struct {
	Request domain.ValidationRequest `json:"request"`
	Data    StatusData               `json:"data"`
}

// Activities provides the status-update Temporal activities.
type Activities struct {
	pkgactivity.BaseActivities
	client StatusClient
}

// NewActivities creates ecommerce activities with the provided client.
func NewActivities(base pkgactivity.BaseActivities, client StatusClient) *Activities {
	return &Activities{BaseActivities: base, client: client}
}

// UpdateStatus records a status transition on the onboarding request.
// Retry classification is left to the caller's retry policy: every failure
// is returned as a plain retryable error because the service is idempotent
// for identical payloads.
func (a *Activities) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*UpdateResult, error) {
	res, err := a.client.Update(ctx, in.Request, in.Data)
	if err != nil {
		pkgactivity.SafeLogError(ctx, "status update failed",
			"process_id", in.Request.ProcessID, "status", in.Data.Status, "error", err)
		return nil, fmt.Errorf("update status %q: %w", in.Data.Status, err)
	}

	pkgactivity.SafeLog(ctx, "status updated",
		"process_id", in.Request.ProcessID, "status", in.Data.Status, "http_status", res.StatusCode)
	return res, nil
}
