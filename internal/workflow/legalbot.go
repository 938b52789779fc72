package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/onboarding-cl/company-validation/internal/domain"
	"github.com/onboarding-cl/company-validation/internal/ecommerce"
	"github.com/onboarding-cl/company-validation/internal/legalbot"
	"github.com/onboarding-cl/company-validation/internal/storage"
)

// botState enumerates the steps of the ownership branch.
type botState int

const (
	botFetch botState = iota
	botClassifyRetrieval
	botNoRES
	botProcess
	botPersistRaw
	botPersistProcessed
	botSaveReference
	botCheckApproval
	botDispatchShortcut
	botCheckDuration
	botCheckCompanyKind
	botCheckPartners
	botCheckAssociateCount
	botPersistPartners
)

// botBranch carries the data accumulated while the branch advances.
type botBranch struct {
	wf  *Workflows
	req domain.ValidationRequest

	reference domain.StudyReference
	study     domain.Study
	rawRef    storage.Ref

	// dispatch marks that partner data is saved without further gating,
	// either because approval was undetermined or via the no-duration
	// shortcut.
	dispatch bool
}

// runLegalBotBranch retrieves the ownership study and validates partners,
// resolving a terminal result.
func (w *Workflows) runLegalBotBranch(ctx workflow.Context, req domain.ValidationRequest) domain.BranchResult {
	b := &botBranch{wf: w, req: req}
	state := botFetch
	for {
		next, result := b.step(ctx, state)
		if result != nil {
			return *result
		}
		state = next
	}
}

func (b *botBranch) step(ctx workflow.Context, state botState) (botState, *domain.BranchResult) {
	switch state {
	case botFetch:
		return b.fetch(ctx)
	case botClassifyRetrieval:
		return b.classifyRetrieval(ctx)
	case botNoRES:
		return b.noRES(ctx)
	case botProcess:
		return b.process(ctx)
	case botPersistRaw:
		return b.persistRaw(ctx)
	case botPersistProcessed:
		return b.persistProcessed(ctx)
	case botSaveReference:
		return b.saveReference(ctx)
	case botCheckApproval:
		return b.checkApproval(ctx)
	case botDispatchShortcut:
		return b.dispatchShortcut(ctx)
	case botCheckDuration:
		return b.checkDuration(ctx)
	case botCheckCompanyKind:
		return b.checkCompanyKind(ctx)
	case botCheckPartners:
		return b.checkPartners(ctx)
	case botCheckAssociateCount:
		return b.checkAssociateCount(ctx)
	case botPersistPartners:
		return b.persistPartners(ctx)
	default:
		res := b.wf.internalError(ctx, b.req)
		return state, &res
	}
}

// asInternalError is the recovery continuation for calls whose exhaustion is
// a system fault.
func (b *botBranch) asInternalError(ctx workflow.Context) domain.BranchResult {
	return b.wf.internalError(ctx, b.req)
}

func (b *botBranch) fail(ctx workflow.Context) (botState, *domain.BranchResult) {
	res := b.wf.internalError(ctx, b.req)
	return 0, &res
}

func (b *botBranch) rejected(ctx workflow.Context, status domain.Status, data ecommerce.StatusData) (botState, *domain.BranchResult) {
	res := b.wf.reject(ctx, b.req, status, data)
	return 0, &res
}

func (b *botBranch) fetch(ctx workflow.Context) (botState, *domain.BranchResult) {
	input := legalbot.FetchStudyInput{Rut: b.req.Rut}
	if res := callActivity(ctx, withRetry, legalbot.ActivityFetchStudy,
		input, &b.reference, b.asInternalError); res != nil {
		return 0, res
	}
	return botClassifyRetrieval, nil
}

func (b *botBranch) classifyRetrieval(ctx workflow.Context) (botState, *domain.BranchResult) {
	switch {
	case b.reference.NotSameDayCompany():
		return botNoRES, nil
	case b.reference.Downloaded():
		return botProcess, nil
	default:
		// Any other registry answer is outside the contract.
		return b.fail(ctx)
	}
}

// noRES handles companies not registered in the same-day registry: the raw
// response is persisted, the request records RegistroRES false, and the
// branch completes successfully with partner validation skipped.
func (b *botBranch) noRES(ctx workflow.Context) (botState, *domain.BranchResult) {
	if res := b.persistRawReference(ctx); res != nil {
		return 0, res
	}

	registered := false
	data := ecommerce.StatusData{
		PartnersAndAttorneys: &ecommerce.PartnersData{
			LegalbotFuenteURL: b.rawRef.URL,
			RegistroRES:       &registered,
		},
	}
	if !b.wf.recordStatus(ctx, b.req, data) {
		return 0, &domain.BranchResult{Code: domain.BranchRejected}
	}
	b.wf.notifyStatus(ctx, b.req, domain.StatusApoderadosYSociosRecuperados)
	return 0, &domain.BranchResult{Code: domain.BranchOK, NotInRES: true}
}

func (b *botBranch) process(ctx workflow.Context) (botState, *domain.BranchResult) {
	input := legalbot.ProcessStudyInput{Reference: b.reference}
	if res := callActivity(ctx, withSingleAttempt, legalbot.ActivityProcessStudy,
		input, &b.study, b.asInternalError); res != nil {
		return 0, res
	}
	return botPersistRaw, nil
}

func (b *botBranch) persistRaw(ctx workflow.Context) (botState, *domain.BranchResult) {
	if res := b.persistRawReference(ctx); res != nil {
		return 0, res
	}
	return botPersistProcessed, nil
}

func (b *botBranch) persistRawReference(ctx workflow.Context) *domain.BranchResult {
	input := legalbot.PersistRawStudyInput{
		Rut:       b.req.Rut,
		ProcessID: b.req.ProcessID,
		Reference: b.reference,
	}
	return callActivity(ctx, withRetry, legalbot.ActivityPersistRawStudy,
		input, &b.rawRef, b.asInternalError)
}

func (b *botBranch) persistProcessed(ctx workflow.Context) (botState, *domain.BranchResult) {
	input := legalbot.PersistStudyInput{
		Rut:       b.req.Rut,
		ProcessID: b.req.ProcessID,
		Study:     b.study,
	}
	if res := callActivity(ctx, withRetry, legalbot.ActivityPersistStudy,
		input, nil, b.asInternalError); res != nil {
		return 0, res
	}
	return botSaveReference, nil
}

func (b *botBranch) saveReference(ctx workflow.Context) (botState, *domain.BranchResult) {
	data := ecommerce.StatusData{
		PartnersAndAttorneys: &ecommerce.PartnersData{
			LegalbotFuenteURL: b.rawRef.URL,
		},
	}
	if !b.wf.recordStatus(ctx, b.req, data) {
		return 0, &domain.BranchResult{Code: domain.BranchRejected}
	}
	return botCheckApproval, nil
}

func (b *botBranch) checkApproval(ctx workflow.Context) (botState, *domain.BranchResult) {
	switch b.study.Approval() {
	case domain.ApprovalContinue:
		return botDispatchShortcut, nil
	case domain.ApprovalDispatch:
		b.dispatch = true
		return botPersistPartners, nil
	default:
		return b.rejected(ctx, domain.StatusRechazadaDeterminandoApoderados, ecommerce.StatusData{})
	}
}

func (b *botBranch) dispatchShortcut(ctx workflow.Context) (botState, *domain.BranchResult) {
	if b.study.DispatchShortcut() {
		b.dispatch = true
		return botPersistPartners, nil
	}
	return botCheckDuration, nil
}

func (b *botBranch) checkDuration(ctx workflow.Context) (botState, *domain.BranchResult) {
	if !b.study.HasDefinedDuration() {
		return botCheckCompanyKind, nil
	}

	input := legalbot.CheckDurationInput{DurationEndDate: b.study.DurationEndDate}
	var result legalbot.DurationResult
	if res := callActivity(ctx, withSingleAttempt, legalbot.ActivityCheckDuration,
		input, &result, b.asInternalError); res != nil {
		return 0, res
	}
	if !result.Valid {
		return b.rejected(ctx, domain.StatusRechazadaDuracionDefinida, ecommerce.StatusData{})
	}
	return botCheckCompanyKind, nil
}

func (b *botBranch) checkCompanyKind(ctx workflow.Context) (botState, *domain.BranchResult) {
	if !b.wf.rules.CompanyKindAllowed(b.study.CompanyKind) {
		return b.rejected(ctx, domain.StatusRechazadaTipoSociedad, ecommerce.StatusData{})
	}
	return botCheckPartners, nil
}

// checkPartners classifies every associate against the Pyme threshold.
// All associates are checked before deciding so the rejection is the same
// regardless of partner order; an unparseable RUT counts as a violation.
func (b *botBranch) checkPartners(ctx workflow.Context) (botState, *domain.BranchResult) {
	var violators []domain.Associate
	for _, assoc := range b.study.Associates {
		numeric, err := domain.NumericRut(assoc.Rut)
		if err != nil || b.wf.rules.ExceedsPymeThreshold(numeric) {
			violators = append(violators, assoc)
		}
	}
	if len(violators) > 0 {
		data := ecommerce.StatusData{
			PartnersAndAttorneys: &ecommerce.PartnersData{Partners: violators},
		}
		return b.rejected(ctx, domain.StatusRechazadaSocioPyme, data)
	}
	return botCheckAssociateCount, nil
}

func (b *botBranch) checkAssociateCount(ctx workflow.Context) (botState, *domain.BranchResult) {
	if !b.wf.rules.AssociateCountValid(b.study.CompanyKind, len(b.study.Associates)) {
		return b.rejected(ctx, domain.StatusRechazadaCantidadSocios, ecommerce.StatusData{})
	}
	return botPersistPartners, nil
}

func (b *botBranch) persistPartners(ctx workflow.Context) (botState, *domain.BranchResult) {
	data := ecommerce.StatusData{
		PartnersAndAttorneys: &ecommerce.PartnersData{
			Partners: b.study.Associates,
			StudyID:  b.study.ID,
			Rut:      b.study.Rut,
			Dispatch: &b.dispatch,
		},
	}
	if !b.wf.recordStatus(ctx, b.req, data) {
		return 0, &domain.BranchResult{Code: domain.BranchRejected}
	}
	b.wf.notifyStatus(ctx, b.req, domain.StatusApoderadosYSociosRecuperados)
	return 0, &domain.BranchResult{Code: domain.BranchOK}
}
