package legalbot

import (
	"context"
	"fmt"

	"github.com/onboarding-cl/company-validation/internal/domain"
	"github.com/onboarding-cl/company-validation/internal/storage"
	pkgactivity "github.com/onboarding-cl/company-validation/pkg/activity"
)

// Registered activity names.
const (
	ActivityFetchStudy      = "legalbot.FetchStudy"
	ActivityProcessStudy    = "legalbot.ProcessStudy"
	ActivityCheckDuration   = "legalbot.CheckDuration"
	ActivityPersistRawStudy = "legalbot.PersistRawStudy"
	ActivityPersistStudy    = "legalbot.PersistStudy"
)

// FetchStudyInput identifies the company whose study to retrieve.
type FetchStudyInput struct {
	Rut string `json:"rut"`
}

// ProcessStudyInput carries the raw reference to the processing function.
type ProcessStudyInput struct {
	Reference domain.StudyReference `json:"reference"`
}

// CheckDurationInput carries the declared duration end date.
type CheckDurationInput struct {
	DurationEndDate string `json:"durationEndDate"`
}

// DurationResult reports whether a defined duration is still valid.
type DurationResult struct {
	Valid bool `json:"valid"`
}

// PersistRawStudyInput stores the raw registry response.
type PersistRawStudyInput struct {
	Rut       string                `json:"rut"`
	ProcessID string                `json:"processId"`
	Reference domain.StudyReference `json:"reference"`
}

// PersistStudyInput stores the processed study.
type PersistStudyInput struct {
	Rut       string       `json:"rut"`
	ProcessID string       `json:"processId"`
	Study     domain.Study `json:"study"`
}

// Activities provides the ownership-branch Temporal activities.
type Activities struct {
	pkgactivity.BaseActivities
	registry  RegistryClient
	processor PayloadProcessor
	duration  DurationChecker
	store     storage.ArtifactStore
}

// NewActivities creates legalbot activities with the provided collaborators.
func NewActivities(
	base pkgactivity.BaseActivities,
	registry RegistryClient,
	processor PayloadProcessor,
	duration DurationChecker,
	store storage.ArtifactStore,
) *Activities {
	return &Activities{
		BaseActivities: base,
		registry:       registry,
		processor:      processor,
		duration:       duration,
		store:          store,
	}
}

// FetchStudy retrieves the ownership study reference for a RUT.
func (a *Activities) FetchStudy(ctx context.Context, in FetchStudyInput) (*domain.StudyReference, error) {
	ref, err := a.registry.GetStudy(ctx, in.Rut)
	if err != nil {
		return nil, fmt.Errorf("fetch study for %s: %w", in.Rut, err)
	}

	pkgactivity.SafeLog(ctx, "study fetched",
		"rut", in.Rut, "codigo", ref.Codigo, "mensaje", ref.Mensaje)
	return ref, nil
}

// ProcessStudy shapes the raw registry response into the processed study.
func (a *Activities) ProcessStudy(ctx context.Context, in ProcessStudyInput) (*domain.Study, error) {
	study, err := a.processor.Process(ctx, in.Reference)
	if err != nil {
		return nil, fmt.Errorf("process study payload: %w", err)
	}

	pkgactivity.SafeLog(ctx, "study processed",
		"study_id", study.ID, "company_kind", study.CompanyKind, "associates", len(study.Associates))
	return study, nil
}

// CheckDuration validates a defined duration end date through the external
// validity function.
func (a *Activities) CheckDuration(ctx context.Context, in CheckDurationInput) (*DurationResult, error) {
	valid, err := a.duration.CheckDuration(ctx, in.DurationEndDate)
	if err != nil {
		return nil, fmt.Errorf("check duration validity: %w", err)
	}
	return &DurationResult{Valid: valid}, nil
}

// PersistRawStudy stores the raw registry response. Overwrites on retry.
func (a *Activities) PersistRawStudy(ctx context.Context, in PersistRawStudyInput) (*storage.Ref, error) {
	ref, err := a.store.Put(ctx, storage.StudyKey(in.Rut, in.ProcessID), in.Reference)
	if err != nil {
		return nil, fmt.Errorf("persist raw study: %w", err)
	}

	pkgactivity.SafeLog(ctx, "raw study persisted", "key", ref.Key, "size", ref.Size)
	return &ref, nil
}

// PersistStudy stores the processed study. Overwrites on retry.
func (a *Activities) PersistStudy(ctx context.Context, in PersistStudyInput) (*storage.Ref, error) {
	ref, err := a.store.Put(ctx, storage.ProcessedStudyKey(in.Rut, in.ProcessID), in.Study)
	if err != nil {
		return nil, fmt.Errorf("persist processed study: %w", err)
	}

	pkgactivity.SafeLog(ctx, "processed study persisted", "key", ref.Key, "size", ref.Size)
	return &ref, nil
}
