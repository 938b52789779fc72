package domain

import "slices"

// Range is an inclusive integer interval.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n lies within the range, boundaries included.
func (r Range) Contains(n int) bool { return n >= r.Min && n <= r.Max }

// Rules is the injected regulatory rule content the orchestrator consumes:
// blocklisted activity codes, whitelisted contributor subtypes, the Pyme RUT
// threshold, and the associate-count ranges per company kind. The values are
// configuration data, not logic the orchestrator derives.
type Rules struct {
	// BlockedActivityCodes lists disallowed economic activity codes. A
	// single match anywhere in the declared activity set rejects the run.
	BlockedActivityCodes []int `json:"blockedActivityCodes"`

	// AllowedSubtypes whitelists contributor subtypes. Checked only when
	// the registry record carries additional data.
	AllowedSubtypes []string `json:"allowedSubtypes"`

	// PymeRutThreshold classifies a partner as a Pyme when the numeric
	// portion of its RUT exceeds this value.
	PymeRutThreshold int64 `json:"pymeRutThreshold"`

	// AssociateCountByKind keys the inclusive partner-count range by
	// company kind. Kinds without an entry are not accepted.
	AssociateCountByKind map[int]Range `json:"associateCountByKind"`
}

// DefaultRules returns the rule content currently in force.
func DefaultRules() Rules {
	return Rules{
		BlockedActivityCodes: []int{
			842300, 829120, 563001, 551002, 661209, 641990, 383001, 663091,
			949903, 661903, 910100, 889000, 920090, 466902, 932901, 843090,
			661904, 643000, 383009, 17000, 949904, 661909, 649100, 651100,
			949909, 841100, 663092, 663099, 661902, 949901, 949902, 990000,
			649209, 649900, 649202, 649201, 661204, 942000, 661100, 842100,
			949100, 451001, 451002, 454001,
		},
		AllowedSubtypes: []string{
			"EMPR. INDIVIDUAL RESP. LTDA.",
			"SOC. RESPONSABILIDAD LIMITADA",
			"SOCIEDAD POR ACCIONES",
		},
		PymeRutThreshold: 50_000_000,
		AssociateCountByKind: map[int]Range{
			1: {Min: 1, Max: 5},
			2: {Min: 1, Max: 1},
			3: {Min: 1, Max: 5},
		},
	}
}

// ActivityBlocked reports whether the activity code is blocklisted.
func (r Rules) ActivityBlocked(code int) bool {
	return slices.Contains(r.BlockedActivityCodes, code)
}

// AnyActivityBlocked reports whether any declared activity is blocklisted.
// The decision is independent of element order.
func (r Rules) AnyActivityBlocked(activities []EconomicActivity) bool {
	return slices.ContainsFunc(activities, func(a EconomicActivity) bool {
		return r.ActivityBlocked(a.Codigo)
	})
}

// SubtypeAllowed reports whether the contributor subtype is whitelisted.
func (r Rules) SubtypeAllowed(subtype string) bool {
	return slices.Contains(r.AllowedSubtypes, subtype)
}

// ExceedsPymeThreshold reports whether a numeric RUT classifies as Pyme.
func (r Rules) ExceedsPymeThreshold(numericRut int64) bool {
	return numericRut > r.PymeRutThreshold
}

// CompanyKindAllowed reports whether the company kind is accepted at all.
func (r Rules) CompanyKindAllowed(kind int) bool {
	_, ok := r.AssociateCountByKind[kind]
	return ok
}

// AssociateCountValid reports whether the partner count is acceptable for
// the company kind, boundaries inclusive.
func (r Rules) AssociateCountValid(kind, count int) bool {
	rng, ok := r.AssociateCountByKind[kind]
	return ok && rng.Contains(count)
}
