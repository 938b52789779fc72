package domain

// Status is the name of a request state as recorded in the status-update
// service and the notification channel. Every run settles on exactly one
// terminal status; intermediate statuses mark progress.
type Status string

const (
	// StatusPrecalificacion marks the start of the validation run.
	StatusPrecalificacion Status = "Precalificacion"

	// StatusEmpresaValida is the accepted terminal outcome.
	StatusEmpresaValida Status = "EmpresaValida"

	// StatusApoderadosYSociosRecuperados marks successful completion of the
	// partner/attorney retrieval branch.
	StatusApoderadosYSociosRecuperados Status = "ApoderadosYSociosRecuperados"

	// StatusErrorInterno is the generic internal-error terminal.
	StatusErrorInterno Status = "ErrorInterno"

	// StatusErrorApiCliente marks a regulator filter API failure, a
	// business-visible rejection rather than a run failure.
	StatusErrorApiCliente Status = "ErrorApiCliente"
)

// Named rejection terminals.
const (
	StatusRechazadaEntidadNoEncontrada         Status = "RechazadaEntidadNoEncontrada"
	StatusRechazadaNoInicioActividades         Status = "RechazadaNoInicioActividades"
	StatusRechazadaTerminoActividades          Status = "RechazadaTerminoActividades"
	StatusRechazadaActividadesNoPermitidas     Status = "RechazadaActividadesOGiroNoPermitidos"
	StatusRechazadaTipoSociedad                Status = "RechazadaTipoSociedad"
	StatusRechazadaFiltroBciEmpresa            Status = "RechazadaFiltroBciEmpresa"
	StatusRechazadaDeterminandoApoderados      Status = "RechazadaDeterminandoApoderadosSocios"
	StatusRechazadaDuracionDefinida            Status = "RechazadaDuracionDefinida"
	StatusRechazadaSocioPyme                   Status = "RechazadaSocioPyme"
	StatusRechazadaCantidadSocios              Status = "RechazadaCantidadSocios"
	StatusRechazadaNoRES                       Status = "RechazadaNoRES"
)

// BranchCode tags the terminal result of a validation branch.
type BranchCode int

const (
	// BranchOK means the branch completed with no rejection.
	BranchOK BranchCode = iota

	// BranchRejected means the branch decided a business rejection. The
	// specific reason was already recorded and notified inside the branch.
	BranchRejected

	// BranchSystemError means the branch hit an unrecoverable fault after
	// retries; the generic internal-error status was recorded.
	BranchSystemError
)

// String returns the tag name for logging.
func (c BranchCode) String() string {
	switch c {
	case BranchOK:
		return "ok"
	case BranchRejected:
		return "rejected"
	case BranchSystemError:
		return "system_error"
	default:
		return "unknown"
	}
}

// BranchResult is the tagged outcome a branch reports to the coordinator.
// Branches are total: every path inside them terminates in one of these,
// so the coordinator never observes a raw error.
type BranchResult struct {
	Code BranchCode `json:"code"`

	// Reason names the rejection when Code is BranchRejected. It may be
	// empty when a rejection was decided but its status update could not be
	// recorded (the request was already in a rejected state).
	Reason Status `json:"reason,omitempty"`

	// NotInRES is set by the ownership branch when the company is not
	// registered in the same-day registry; it suppresses the downstream
	// registry-check sub-workflow.
	NotInRES bool `json:"notInRES,omitempty"`
}

// OK reports whether the branch completed with no rejection.
func (r BranchResult) OK() bool { return r.Code == BranchOK }

// Outcome is the single terminal result of a validation run.
type Outcome struct {
	Status Status `json:"status"`

	// LegalBot and LegalEntity carry the per-branch results for auditing.
	LegalBot    BranchResult `json:"legalBot"`
	LegalEntity BranchResult `json:"legalEntity"`

	// RESCheckStarted records that the downstream registry-check
	// sub-workflow was fired after joint branch success.
	RESCheckStarted bool `json:"resCheckStarted,omitempty"`
}

// Accepted reports whether the run terminated in the accepted outcome.
func (o *Outcome) Accepted() bool { return o.Status == StatusEmpresaValida }

// Resolve merges the two branch results into the terminal outcome status.
// Both branches must report OK for acceptance. On rejection the ownership
// branch reason wins when present; deterministic regardless of which branch
// finished first. A branch system error or a recorded rejection with no
// reason resolves to the generic internal-error status.
func Resolve(legalBot, legalEntity BranchResult) Status {
	if legalBot.OK() && legalEntity.OK() {
		return StatusEmpresaValida
	}
	for _, r := range []BranchResult{legalBot, legalEntity} {
		if r.Code == BranchRejected && r.Reason != "" {
			return r.Reason
		}
	}
	return StatusErrorInterno
}
