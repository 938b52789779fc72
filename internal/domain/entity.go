package domain

// Legal-entity lookup status values. The lookup reports Codigo 0 together
// with an Estado string describing retrieval progress.
const (
	// LookupStateCompleted means the registry record is fully retrieved.
	LookupStateCompleted = "Completado"

	// LookupStateFetching means the registry is still assembling the record.
	// Validation cannot proceed; the run terminates with an internal error
	// rather than a business rejection.
	LookupStateFetching = "ObteniendoDatos"
)

// LegalEntityLookup is the envelope returned by the legal-entity lookup.
// Codigo 0 with LookupStateCompleted is the only combination that carries a
// usable EntidadLegal record.
type LegalEntityLookup struct {
	Codigo       int          `json:"Codigo"`
	Estado       string       `json:"Estado"`
	EntidadLegal *LegalEntity `json:"EntidadLegal,omitempty"`
}

// Found reports whether the lookup carries a complete company record.
func (l *LegalEntityLookup) Found() bool {
	return l.Codigo == 0 && l.Estado == LookupStateCompleted && l.EntidadLegal != nil
}

// Fetching reports whether the registry is still retrieving the record.
func (l *LegalEntityLookup) Fetching() bool {
	return l.Codigo == 0 && l.Estado == LookupStateFetching
}

// LegalEntity is the company registry record, persisted verbatim to the
// object store as an audit artifact.
type LegalEntity struct {
	Rut              string          `json:"Rut"`
	RazonSocial      string          `json:"RazonSocial"`
	DatosBase        BaseData        `json:"DatosBase"`
	DatosAdicionales *AdditionalData `json:"DatosAdicionales,omitempty"`
}

// BaseData holds the lifecycle and activity facts of the company.
type BaseData struct {
	// FchInicioActividades is the start-of-activities date. A company that
	// never declared a start of activities is rejected.
	FchInicioActividades *string `json:"FchInicioActividades,omitempty"`

	// ActEconomicas lists the declared economic activities.
	ActEconomicas []EconomicActivity `json:"ActEconomicas,omitempty"`
}

// EconomicActivity is one declared activity line, identified by its code.
type EconomicActivity struct {
	Codigo int `json:"Codigo"`
}

// AdditionalData is optional registry data. Its absence means "no termination
// recorded" for the termination check, but also skips the contributor-subtype
// check entirely; the two checks deliberately read absence differently.
type AdditionalData struct {
	SubTipoContribuyente string  `json:"SubTipoContribuyente"`
	FchTerminoGiro       *string `json:"FchTerminoGiro,omitempty"`
}

// Terminated reports whether a termination-of-activities date is recorded.
// Nil additional data counts as not terminated.
func (e *LegalEntity) Terminated() bool {
	return e.DatosAdicionales != nil && e.DatosAdicionales.FchTerminoGiro != nil
}

// RegulatorFilterResult is the regulator filter API response. A nil Data
// together with a nil Error, or a present Error, is the distinct
// client-API failure case rather than a business verdict.
type RegulatorFilterResult struct {
	Data  *FilterVerdict `json:"Data,omitempty"`
	Error *string        `json:"Error,omitempty"`
}

// FilterVerdict carries the regulator filter decision.
type FilterVerdict struct {
	Valido bool `json:"Valido"`
}

// Failed reports whether the filter call produced an error body instead of
// a verdict.
func (r *RegulatorFilterResult) Failed() bool {
	return r == nil || r.Error != nil || r.Data == nil
}
