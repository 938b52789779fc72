package domain

// Ownership registry response messages that classify a study retrieval.
const (
	// StudyMsgDownloaded means the study was retrieved and its payload is
	// available for processing.
	StudyMsgDownloaded = "Descarga realizada."

	// StudyMsgNotSameDayCompany means the RUT does not belong to a company
	// registered in the same-day registry (RES). No partner validation is
	// possible or required for such companies.
	StudyMsgNotSameDayCompany = "El RUT solicitado no es de empresa en un día."
)

// StudyReference is the raw ownership-registry response envelope.
type StudyReference struct {
	Codigo     int     `json:"Codigo"`
	Mensaje    string  `json:"Mensaje"`
	EnlaceJson *string `json:"EnlaceJson,omitempty"`
}

// Downloaded reports whether the registry completed the study retrieval.
func (s *StudyReference) Downloaded() bool {
	return s.EnlaceJson != nil && s.Codigo == 0 && s.Mensaje == StudyMsgDownloaded
}

// NotSameDayCompany reports whether the RUT is not registrable in the
// same-day registry. The exact message is part of the registry contract.
func (s *StudyReference) NotSameDayCompany() bool {
	return s.EnlaceJson == nil && s.Codigo == 0 && s.Mensaje == StudyMsgNotSameDayCompany
}

// Study is the processed ownership study: company approval state, duration
// facts, and the partner list used for Pyme and count validation.
type Study struct {
	ID   string `json:"id"`
	Rut  string `json:"rut"`

	// CompanyKind is the enumerated legal entity type code. It selects the
	// associate-count rule and gates which kinds are accepted at all.
	CompanyKind int `json:"companyKind"`

	// IsApproved is three-valued: approved, not approved, or undetermined
	// (nil). The approval decision distinguishes nil from false.
	IsApproved    *bool `json:"isApproved,omitempty"`
	IsPreApproved bool  `json:"isPreApproved"`

	// DurationType flags a fixed operating duration when equal to
	// DurationTypeDefined; nil means no duration information.
	DurationType    *int   `json:"durationType,omitempty"`
	DurationEndDate string `json:"durationEndDate,omitempty"`

	Associates []Associate `json:"associates"`
}

// DurationTypeDefined marks a company with a defined (fixed) operating
// duration whose end date requires external validity checking.
const DurationTypeDefined = 7

// Associate is one partner of the company.
type Associate struct {
	Rut string `json:"rut"`
}

// ApprovalDecision classifies the (isApproved, isPreApproved) pair.
type ApprovalDecision int

const (
	// ApprovalContinue: the company is legally approved; partner validation
	// continues through the duration and company-kind gates.
	ApprovalContinue ApprovalDecision = iota

	// ApprovalDispatch: approval is undetermined but not pre-approved; the
	// partner data is dispatched directly, skipping the remaining gates.
	ApprovalDispatch

	// ApprovalRejected: any other combination; the run is rejected while
	// determining attorneys and partners.
	ApprovalRejected
)

// Approval classifies the study's approval state. (true,true) and
// (true,false) continue, (nil,false) dispatches, everything else rejects.
func (s *Study) Approval() ApprovalDecision {
	switch {
	case s.IsApproved != nil && *s.IsApproved:
		return ApprovalContinue
	case s.IsApproved == nil && !s.IsPreApproved:
		return ApprovalDispatch
	default:
		return ApprovalRejected
	}
}

// DispatchShortcut reports whether partner data is dispatched directly when
// no duration information exists: (true,false) or (nil,false) approval with
// a nil DurationType skips the duration, kind, Pyme, and count checks.
func (s *Study) DispatchShortcut() bool {
	if s.DurationType != nil {
		return false
	}
	approvedNotPre := s.IsApproved != nil && *s.IsApproved && !s.IsPreApproved
	undeterminedNotPre := s.IsApproved == nil && !s.IsPreApproved
	return approvedNotPre || undeterminedNotPre
}

// HasDefinedDuration reports whether the study declares a fixed duration
// that requires end-date validity checking.
func (s *Study) HasDefinedDuration() bool {
	return s.DurationType != nil && *s.DurationType == DurationTypeDefined
}
