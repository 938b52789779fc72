package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/onboarding-cl/company-validation/internal/domain"
	"github.com/onboarding-cl/company-validation/internal/ecommerce"
	"github.com/onboarding-cl/company-validation/internal/legalentity"
	"github.com/onboarding-cl/company-validation/internal/storage"
)

// entityState enumerates the steps of the legal-entity branch. The branch
// advances strictly forward; every state either moves to the next one or
// resolves the branch with a terminal result.
type entityState int

const (
	entityFetch entityState = iota
	entityCheckExistence
	entityPersist
	entitySaveValidation
	entityCheckActivityStart
	entityCheckTermination
	entityCheckActivities
	entityCheckSubtype
	entityCallFilter
	entityPersistFilter
	entitySaveFilterValidation
	entityCheckFilterResult
)

// entityBranch carries the data accumulated while the branch advances.
type entityBranch struct {
	wf  *Workflows
	req domain.ValidationRequest

	lookup    domain.LegalEntityLookup
	entityRef storage.Ref
	filter    domain.RegulatorFilterResult
	filterRef storage.Ref
}

// runLegalEntityBranch validates the company against the legal-entity
// registry and the institutional filter, resolving a terminal result.
func (w *Workflows) runLegalEntityBranch(ctx workflow.Context, req domain.ValidationRequest) domain.BranchResult {
	b := &entityBranch{wf: w, req: req}
	state := entityFetch
	for {
		next, result := b.step(ctx, state)
		if result != nil {
			return *result
		}
		state = next
	}
}

func (b *entityBranch) step(ctx workflow.Context, state entityState) (entityState, *domain.BranchResult) {
	switch state {
	case entityFetch:
		return b.fetch(ctx)
	case entityCheckExistence:
		return b.checkExistence(ctx)
	case entityPersist:
		return b.persist(ctx)
	case entitySaveValidation:
		return b.saveValidation(ctx)
	case entityCheckActivityStart:
		return b.checkActivityStart(ctx)
	case entityCheckTermination:
		return b.checkTermination(ctx)
	case entityCheckActivities:
		return b.checkActivities(ctx)
	case entityCheckSubtype:
		return b.checkSubtype(ctx)
	case entityCallFilter:
		return b.callFilter(ctx)
	case entityPersistFilter:
		return b.persistFilter(ctx)
	case entitySaveFilterValidation:
		return b.saveFilterValidation(ctx)
	case entityCheckFilterResult:
		return b.checkFilterResult(ctx)
	default:
		res := b.wf.internalError(ctx, b.req)
		return state, &res
	}
}

// asInternalError is the recovery continuation for calls whose exhaustion is
// a system fault.
func (b *entityBranch) asInternalError(ctx workflow.Context) domain.BranchResult {
	return b.wf.internalError(ctx, b.req)
}

func (b *entityBranch) fail(ctx workflow.Context) (entityState, *domain.BranchResult) {
	res := b.wf.internalError(ctx, b.req)
	return 0, &res
}

func (b *entityBranch) rejected(ctx workflow.Context, status domain.Status, data ecommerce.StatusData) (entityState, *domain.BranchResult) {
	res := b.wf.reject(ctx, b.req, status, data)
	return 0, &res
}

func (b *entityBranch) fetch(ctx workflow.Context) (entityState, *domain.BranchResult) {
	input := legalentity.LookupInput{Rut: b.req.Rut}
	if res := callActivity(ctx, withLookupOptions, legalentity.ActivityLookup,
		input, &b.lookup, b.asInternalError); res != nil {
		return 0, res
	}
	return entityCheckExistence, nil
}

func (b *entityBranch) checkExistence(ctx workflow.Context) (entityState, *domain.BranchResult) {
	if b.lookup.Fetching() {
		// The lookup activity already waited out the assembly window; still
		// fetching here means the registry record never stabilized.
		return b.fail(ctx)
	}
	if !b.lookup.Found() {
		return b.rejected(ctx, domain.StatusRechazadaEntidadNoEncontrada, ecommerce.StatusData{})
	}
	return entityPersist, nil
}

func (b *entityBranch) persist(ctx workflow.Context) (entityState, *domain.BranchResult) {
	input := legalentity.PersistEntityInput{
		Rut:       b.req.Rut,
		ProcessID: b.req.ProcessID,
		Entity:    *b.lookup.EntidadLegal,
	}
	if res := callActivity(ctx, withRetry, legalentity.ActivityPersistEntity,
		input, &b.entityRef, b.asInternalError); res != nil {
		return 0, res
	}
	return entitySaveValidation, nil
}

func (b *entityBranch) saveValidation(ctx workflow.Context) (entityState, *domain.BranchResult) {
	input := ecommerce.UpdateStatusInput{
		Request: b.req,
		Data: ecommerce.StatusData{
			CompanyValidation: &ecommerce.CompanyValidation{
				LegalEntitiesURL: b.entityRef.URL,
				CompanyName:      b.lookup.EntidadLegal.RazonSocial,
			},
		},
	}
	if res := callActivity(ctx, withRetry, ecommerce.ActivityUpdateStatus,
		input, nil, b.asInternalError); res != nil {
		return 0, res
	}
	return entityCheckActivityStart, nil
}

func (b *entityBranch) checkActivityStart(ctx workflow.Context) (entityState, *domain.BranchResult) {
	if b.lookup.EntidadLegal.DatosBase.FchInicioActividades == nil {
		return b.rejected(ctx, domain.StatusRechazadaNoInicioActividades, ecommerce.StatusData{})
	}
	return entityCheckTermination, nil
}

func (b *entityBranch) checkTermination(ctx workflow.Context) (entityState, *domain.BranchResult) {
	if b.lookup.EntidadLegal.Terminated() {
		return b.rejected(ctx, domain.StatusRechazadaTerminoActividades, ecommerce.StatusData{})
	}
	return entityCheckActivities, nil
}

func (b *entityBranch) checkActivities(ctx workflow.Context) (entityState, *domain.BranchResult) {
	activities := b.lookup.EntidadLegal.DatosBase.ActEconomicas
	if len(activities) == 0 {
		// An active company with no declared economic activity is a registry
		// inconsistency, not a business rejection.
		return b.fail(ctx)
	}
	if b.wf.rules.AnyActivityBlocked(activities) {
		return b.rejected(ctx, domain.StatusRechazadaActividadesNoPermitidas, ecommerce.StatusData{})
	}
	return entityCheckSubtype, nil
}

func (b *entityBranch) checkSubtype(ctx workflow.Context) (entityState, *domain.BranchResult) {
	extra := b.lookup.EntidadLegal.DatosAdicionales
	if extra != nil && !b.wf.rules.SubtypeAllowed(extra.SubTipoContribuyente) {
		return b.rejected(ctx, domain.StatusRechazadaTipoSociedad, ecommerce.StatusData{})
	}
	return entityCallFilter, nil
}

func (b *entityBranch) callFilter(ctx workflow.Context) (entityState, *domain.BranchResult) {
	input := legalentity.FilterInput{
		Rut:         b.req.Rut,
		RazonSocial: b.lookup.EntidadLegal.RazonSocial,
	}
	// The filter is a client-facing dependency: its unavailability is
	// reported as an API error, not as an internal one.
	if res := callActivity(ctx, withRetry, legalentity.ActivityValidateWithFilter,
		input, &b.filter, func(ctx workflow.Context) domain.BranchResult {
			return b.wf.reject(ctx, b.req, domain.StatusErrorApiCliente, ecommerce.StatusData{})
		}); res != nil {
		return 0, res
	}
	return entityPersistFilter, nil
}

func (b *entityBranch) persistFilter(ctx workflow.Context) (entityState, *domain.BranchResult) {
	input := legalentity.PersistFilterInput{
		Rut:       b.req.Rut,
		ProcessID: b.req.ProcessID,
		Result:    b.filter,
	}
	if res := callActivity(ctx, withRetry, legalentity.ActivityPersistFilterResult,
		input, &b.filterRef, b.asInternalError); res != nil {
		return 0, res
	}
	return entitySaveFilterValidation, nil
}

func (b *entityBranch) saveFilterValidation(ctx workflow.Context) (entityState, *domain.BranchResult) {
	input := ecommerce.UpdateStatusInput{
		Request: b.req,
		Data: ecommerce.StatusData{
			CompanyValidation: &ecommerce.CompanyValidation{
				BciFilterValidateCompanyURL: b.filterRef.URL,
			},
		},
	}
	if res := callActivity(ctx, withRetry, ecommerce.ActivityUpdateStatus,
		input, nil, b.asInternalError); res != nil {
		return 0, res
	}
	return entityCheckFilterResult, nil
}

func (b *entityBranch) checkFilterResult(ctx workflow.Context) (entityState, *domain.BranchResult) {
	if b.filter.Failed() {
		return b.rejected(ctx, domain.StatusErrorApiCliente, ecommerce.StatusData{})
	}
	if !b.filter.Data.Valido {
		return b.rejected(ctx, domain.StatusRechazadaFiltroBciEmpresa, ecommerce.StatusData{})
	}
	return 0, &domain.BranchResult{Code: domain.BranchOK}
}
