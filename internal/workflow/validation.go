package workflow

import (
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/onboarding-cl/company-validation/internal/domain"
	"github.com/onboarding-cl/company-validation/internal/ecommerce"
	"github.com/onboarding-cl/company-validation/internal/lifecycle"
	"github.com/onboarding-cl/company-validation/internal/notify"
)

// WorkflowCompanyValidation is the registered name of the validation workflow.
const WorkflowCompanyValidation = "CompanyValidation"

// RESCheckInput is the argument passed to the downstream registry check.
type RESCheckInput struct {
	Rut       string `json:"rut"`
	ProcessID string `json:"processId"`
}

// Workflows holds the configuration shared by workflow executions. The
// rule set is fixed at worker start so every execution on a worker applies
// the same policy.
type Workflows struct {
	rules domain.Rules
}

// NewWorkflows returns the workflow set evaluating the given rules.
func NewWorkflows(rules domain.Rules) *Workflows {
	return &Workflows{rules: rules}
}

// CompanyValidation validates a company for onboarding and resolves a single
// terminal Outcome.
//
// The run gates on the started event and the initial status update: if either
// fails there is no downstream record of the attempt, so the run fails hard
// and the caller retries from scratch. After that point every failure is
// absorbed into a branch result and the run completes with an outcome.
func (w *Workflows) CompanyValidation(ctx workflow.Context, req domain.ValidationRequest) (*domain.Outcome, error) {
	logger := workflow.GetLogger(ctx)

	if err := req.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid validation request", "InvalidRequest", err)
	}

	logger.Info("starting company validation",
		"rut", req.Rut, "process_id", req.ProcessID)

	actx := withSingleAttempt(ctx)
	if err := workflow.ExecuteActivity(actx, lifecycle.ActivityEmitStarted, req).Get(ctx, nil); err != nil {
		return nil, temporal.NewApplicationError(
			"emitting started event", string(domain.StatusErrorInterno), err)
	}

	var updated ecommerce.UpdateResult
	input := ecommerce.UpdateStatusInput{
		Request: req,
		Data: ecommerce.StatusData{
			Status:                 domain.StatusPrecalificacion,
			BciValidationProcessID: req.ProcessID,
		},
	}
	if err := workflow.ExecuteActivity(actx, ecommerce.ActivityUpdateStatus, input).Get(ctx, &updated); err != nil {
		return nil, temporal.NewApplicationError(
			"recording prequalification status", string(domain.StatusErrorInterno), err)
	}

	// Both branches run to a terminal result on their own; neither can fail
	// the other. The legalbot branch runs on a coroutine while the entity
	// branch runs on the main dispatcher, then the barrier joins them.
	var (
		legalBot domain.BranchResult
		botDone  bool
	)
	workflow.Go(ctx, func(gctx workflow.Context) {
		legalBot = w.runLegalBotBranch(gctx, req)
		botDone = true
	})

	legalEntity := w.runLegalEntityBranch(ctx, req)

	if err := workflow.Await(ctx, func() bool { return botDone }); err != nil {
		return nil, err
	}

	outcome := &domain.Outcome{
		Status:      domain.Resolve(legalBot, legalEntity),
		LegalBot:    legalBot,
		LegalEntity: legalEntity,
	}

	logger.Info("branches resolved",
		"status", outcome.Status,
		"legalbot", legalBot.Code.String(),
		"legal_entity", legalEntity.Code.String())

	if outcome.Accepted() {
		w.notifyStatus(ctx, req, domain.StatusEmpresaValida)
		if !legalBot.NotInRES {
			outcome.RESCheckStarted = w.startRESCheck(ctx, req)
		}
	}

	// The terminal is already recorded downstream; the finished event is
	// observability only and never changes the result.
	finished := lifecycle.EmitFinishedInput{
		Request:         req,
		Status:          outcome.Status,
		RESCheckStarted: outcome.RESCheckStarted,
	}
	if err := workflow.ExecuteActivity(actx, lifecycle.ActivityEmitFinished, finished).Get(ctx, nil); err != nil {
		logger.Warn("finished event lost", "process_id", req.ProcessID, "error", err)
	}

	return outcome, nil
}

// startRESCheck fires the downstream registry check as an abandoned child
// workflow. The validation outcome never depends on it, so a start failure
// is logged and swallowed.
func (w *Workflows) startRESCheck(ctx workflow.Context, req domain.ValidationRequest) bool {
	cctx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
		WorkflowID:        "res-check-" + req.ProcessID,
		ParentClosePolicy: enumspb.PARENT_CLOSE_POLICY_ABANDON,
	})
	fut := workflow.ExecuteChildWorkflow(cctx, RESCheckWorkflowName, RESCheckInput{
		Rut:       req.Rut,
		ProcessID: req.ProcessID,
	})
	if err := fut.GetChildWorkflowExecution().Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("registry check did not start",
			"process_id", req.ProcessID, "error", err)
		return false
	}
	return true
}

// recordStatus pushes a status update downstream with a single attempt and
// reports whether it landed. Once a branch has reached a terminal decision
// the update is best effort: a failure here must not resurrect the branch.
func (w *Workflows) recordStatus(ctx workflow.Context, req domain.ValidationRequest, data ecommerce.StatusData) bool {
	actx := withSingleAttempt(ctx)
	input := ecommerce.UpdateStatusInput{Request: req, Data: data}
	if err := workflow.ExecuteActivity(actx, ecommerce.ActivityUpdateStatus, input).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("status update lost",
			"status", data.Status, "process_id", req.ProcessID, "error", err)
		return false
	}
	return true
}

// notifyStatus publishes a status to the notification manager, best effort.
func (w *Workflows) notifyStatus(ctx workflow.Context, req domain.ValidationRequest, status domain.Status) {
	actx := withSingleAttempt(ctx)
	input := notify.NotifyInput{Request: req, Status: status}
	if err := workflow.ExecuteActivity(actx, notify.ActivityNotify, input).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("notification lost",
			"status", status, "process_id", req.ProcessID, "error", err)
	}
}

// reject ends a branch with a business rejection. The status is recorded and
// notified first; if the record itself is lost the branch still ends rejected
// but without a reason, so the merge falls back to the generic error status.
func (w *Workflows) reject(ctx workflow.Context, req domain.ValidationRequest, status domain.Status, data ecommerce.StatusData) domain.BranchResult {
	data.Status = status
	data.BciValidationProcessID = req.ProcessID
	if !w.recordStatus(ctx, req, data) {
		return domain.BranchResult{Code: domain.BranchRejected}
	}
	w.notifyStatus(ctx, req, status)
	return domain.BranchResult{Code: domain.BranchRejected, Reason: status}
}

// internalError ends a branch after an unrecoverable collaborator failure.
func (w *Workflows) internalError(ctx workflow.Context, req domain.ValidationRequest) domain.BranchResult {
	data := ecommerce.StatusData{
		Status:                 domain.StatusErrorInterno,
		BciValidationProcessID: req.ProcessID,
	}
	if w.recordStatus(ctx, req, data) {
		w.notifyStatus(ctx, req, domain.StatusErrorInterno)
	}
	return domain.BranchResult{Code: domain.BranchSystemError}
}
