package legalentity

import (
	"context"
	"fmt"

	"github.com/onboarding-cl/company-validation/internal/domain"
	"github.com/onboarding-cl/company-validation/internal/storage"
	pkgactivity "github.com/onboarding-cl/company-validation/pkg/activity"
)

// Registered activity names. Workflows invoke activities by name so test
// environments can mock them directly.
const (
	ActivityLookup              = "legalentity.Lookup"
	ActivityPersistEntity       = "legalentity.PersistEntity"
	ActivityValidateWithFilter  = "legalentity.ValidateWithFilter"
	ActivityPersistFilterResult = "legalentity.PersistFilterResult"
)

// LookupInput identifies the company to resolve.
type LookupInput struct {
	Rut string `json:"rut"`
}

// FilterInput carries the company identity sent to the regulator filter.
type FilterInput struct {
	Rut         string `json:"rut"`
	RazonSocial string `json:"razonSocial"`
}

// PersistEntityInput stores the raw registry record for the audit trail.
type PersistEntityInput struct {
	Rut       string             `json:"rut"`
	ProcessID string             `json:"processId"`
	Entity    domain.LegalEntity `json:"entity"`
}

// PersistFilterInput stores the regulator filter response.
type PersistFilterInput struct {
	Rut       string                       `json:"rut"`
	ProcessID string                       `json:"processId"`
	Result    domain.RegulatorFilterResult `json:"result"`
}

// Activities provides the legal-entity branch Temporal activities.
type Activities struct {
	pkgactivity.BaseActivities
	lookup LookupClient
	filter FilterClient
	store  storage.ArtifactStore
}

// NewActivities creates legal-entity activities with the provided
// collaborators.
func NewActivities(
	base pkgactivity.BaseActivities,
	lookup LookupClient,
	filter FilterClient,
	store storage.ArtifactStore,
) *Activities {
	return &Activities{BaseActivities: base, lookup: lookup, filter: filter, store: store}
}

// Lookup resolves the company record from the legal-entity registry. The
// registry job can take minutes; the activity heartbeats so the workflow can
// detect a stalled lookup before the start-to-close timeout fires.
func (a *Activities) Lookup(ctx context.Context, in LookupInput) (*domain.LegalEntityLookup, error) {
	a.RecordHeartbeat(ctx, "lookup started")

	lookup, err := a.lookup.Lookup(ctx, in.Rut)
	if err != nil {
		return nil, fmt.Errorf("lookup legal entity %s: %w", in.Rut, err)
	}

	a.RecordHeartbeat(ctx, "lookup finished")
	pkgactivity.SafeLog(ctx, "legal entity resolved",
		"rut", in.Rut, "codigo", lookup.Codigo, "estado", lookup.Estado)
	return lookup, nil
}

// PersistEntity stores the raw legal-entity record. Overwrites on retry.
func (a *Activities) PersistEntity(ctx context.Context, in PersistEntityInput) (*storage.Ref, error) {
	ref, err := a.store.Put(ctx, storage.LegalEntityKey(in.Rut, in.ProcessID), in.Entity)
	if err != nil {
		return nil, fmt.Errorf("persist legal entity: %w", err)
	}

	pkgactivity.SafeLog(ctx, "legal entity persisted", "key", ref.Key, "size", ref.Size)
	return &ref, nil
}

// ValidateWithFilter posts the company identity to the regulator filter API.
// An error body inside a successful response is returned as data, not as an
// error: the branch distinguishes call failure from filter failure.
func (a *Activities) ValidateWithFilter(ctx context.Context, in FilterInput) (*domain.RegulatorFilterResult, error) {
	result, err := a.filter.Validate(ctx, in.Rut, in.RazonSocial)
	if err != nil {
		return nil, fmt.Errorf("validate %s with regulator filter: %w", in.Rut, err)
	}

	pkgactivity.SafeLog(ctx, "regulator filter answered",
		"rut", in.Rut, "failed", result.Failed())
	return result, nil
}

// PersistFilterResult stores the regulator filter response. Overwrites on
// retry.
func (a *Activities) PersistFilterResult(ctx context.Context, in PersistFilterInput) (*storage.Ref, error) {
	ref, err := a.store.Put(ctx, storage.FilterResultKey(in.Rut, in.ProcessID), in.Result)
	if err != nil {
		return nil, fmt.Errorf("persist filter result: %w", err)
	}

	pkgactivity.SafeLog(ctx, "filter result persisted", "key", ref.Key, "size", ref.Size)
	return &ref, nil
}
