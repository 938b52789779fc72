// Package worker wires the validation workflow and its activities onto a
// Temporal worker. Construction of collaborator clients lives here so the
// activity packages stay focused on activity logic.
package worker

import (
	sdkactivity "go.temporal.io/sdk/activity"
	sdkworker "go.temporal.io/sdk/worker"
	sdkworkflow "go.temporal.io/sdk/workflow"

	"github.com/onboarding-cl/company-validation/internal/ecommerce"
	"github.com/onboarding-cl/company-validation/internal/legalbot"
	"github.com/onboarding-cl/company-validation/internal/legalentity"
	"github.com/onboarding-cl/company-validation/internal/lifecycle"
	"github.com/onboarding-cl/company-validation/internal/notify"
	"github.com/onboarding-cl/company-validation/internal/workflow"
)

// Components groups everything RegisterAll puts on a worker.
type Components struct {
	Workflows *workflow.Workflows

	Lifecycle   *lifecycle.Activities
	Ecommerce   *ecommerce.Activities
	Notify      *notify.Activities
	LegalEntity *legalentity.Activities
	LegalBot    *legalbot.Activities
}

// RegisterAll registers the validation workflow and every activity under its
// stable name. Names are part of the execution history contract: renaming one
// breaks replay of open workflows. Not thread-safe; call once during startup
// before the worker runs.
func RegisterAll(w sdkworker.Worker, c Components) {
	w.RegisterWorkflowWithOptions(c.Workflows.CompanyValidation,
		sdkworkflow.RegisterOptions{Name: workflow.WorkflowCompanyValidation})

	w.RegisterActivityWithOptions(c.Lifecycle.EmitStarted,
		sdkactivity.RegisterOptions{Name: lifecycle.ActivityEmitStarted})
	w.RegisterActivityWithOptions(c.Lifecycle.EmitFinished,
		sdkactivity.RegisterOptions{Name: lifecycle.ActivityEmitFinished})
	w.RegisterActivityWithOptions(c.Ecommerce.UpdateStatus,
		sdkactivity.RegisterOptions{Name: ecommerce.ActivityUpdateStatus})
	w.RegisterActivityWithOptions(c.Notify.Notify,
		sdkactivity.RegisterOptions{Name: notify.ActivityNotify})

	w.RegisterActivityWithOptions(c.LegalEntity.Lookup,
		sdkactivity.RegisterOptions{Name: legalentity.ActivityLookup})
	w.RegisterActivityWithOptions(c.LegalEntity.PersistEntity,
		sdkactivity.RegisterOptions{Name: legalentity.ActivityPersistEntity})
	w.RegisterActivityWithOptions(c.LegalEntity.ValidateWithFilter,
		sdkactivity.RegisterOptions{Name: legalentity.ActivityValidateWithFilter})
	w.RegisterActivityWithOptions(c.LegalEntity.PersistFilterResult,
		sdkactivity.RegisterOptions{Name: legalentity.ActivityPersistFilterResult})

	w.RegisterActivityWithOptions(c.LegalBot.FetchStudy,
		sdkactivity.RegisterOptions{Name: legalbot.ActivityFetchStudy})
	w.RegisterActivityWithOptions(c.LegalBot.ProcessStudy,
		sdkactivity.RegisterOptions{Name: legalbot.ActivityProcessStudy})
	w.RegisterActivityWithOptions(c.LegalBot.CheckDuration,
		sdkactivity.RegisterOptions{Name: legalbot.ActivityCheckDuration})
	w.RegisterActivityWithOptions(c.LegalBot.PersistRawStudy,
		sdkactivity.RegisterOptions{Name: legalbot.ActivityPersistRawStudy})
	w.RegisterActivityWithOptions(c.LegalBot.PersistStudy,
		sdkactivity.RegisterOptions{Name: legalbot.ActivityPersistStudy})
}
