package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesActivityBlocked(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		code    int
		blocked bool
	}{
		{name: "public administration code is blocked", code: 842300, blocked: true},
		{name: "first code in list", code: 842300, blocked: true},
		{name: "last code in list", code: 454001, blocked: true},
		{name: "retail code is allowed", code: 471100, blocked: false},
		{name: "zero code is allowed", code: 0, blocked: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blocked, rules.ActivityBlocked(tt.code))
		})
	}
}

func TestRulesAnyActivityBlocked(t *testing.T) {
	rules := DefaultRules()

	t.Run("single blocked activity rejects the set", func(t *testing.T) {
		acts := []EconomicActivity{{Codigo: 842300}}
		assert.True(t, rules.AnyActivityBlocked(acts))
	})

	t.Run("one bad element among good ones rejects", func(t *testing.T) {
		acts := []EconomicActivity{{Codigo: 471100}, {Codigo: 649100}, {Codigo: 620200}}
		assert.True(t, rules.AnyActivityBlocked(acts))
	})

	t.Run("order independent", func(t *testing.T) {
		forward := []EconomicActivity{{Codigo: 471100}, {Codigo: 842300}}
		backward := []EconomicActivity{{Codigo: 842300}, {Codigo: 471100}}
		assert.Equal(t, rules.AnyActivityBlocked(forward), rules.AnyActivityBlocked(backward))
	})

	t.Run("all allowed passes", func(t *testing.T) {
		acts := []EconomicActivity{{Codigo: 471100}, {Codigo: 620200}}
		assert.False(t, rules.AnyActivityBlocked(acts))
	})
}

func TestRulesSubtypeAllowed(t *testing.T) {
	rules := DefaultRules()

	assert.True(t, rules.SubtypeAllowed("SOC. RESPONSABILIDAD LIMITADA"))
	assert.True(t, rules.SubtypeAllowed("SOCIEDAD POR ACCIONES"))
	assert.True(t, rules.SubtypeAllowed("EMPR. INDIVIDUAL RESP. LTDA."))
	assert.False(t, rules.SubtypeAllowed("SOCIEDAD ANONIMA"))
	assert.False(t, rules.SubtypeAllowed(""))
}

func TestRulesPymeThreshold(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		rut     int64
		exceeds bool
	}{
		{name: "well below threshold", rut: 12_345_678, exceeds: false},
		{name: "exactly at threshold does not exceed", rut: 50_000_000, exceeds: false},
		{name: "one above threshold exceeds", rut: 50_000_001, exceeds: true},
		{name: "sixty million exceeds", rut: 60_000_000, exceeds: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exceeds, rules.ExceedsPymeThreshold(tt.rut))
		})
	}
}

func TestRulesAssociateCount(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name  string
		kind  int
		count int
		valid bool
	}{
		{name: "kind 1 lower boundary", kind: 1, count: 1, valid: true},
		{name: "kind 1 upper boundary inclusive", kind: 1, count: 5, valid: true},
		{name: "kind 1 above range", kind: 1, count: 6, valid: false},
		{name: "kind 1 zero partners", kind: 1, count: 0, valid: false},
		{name: "kind 2 exactly one", kind: 2, count: 1, valid: true},
		{name: "kind 2 two partners", kind: 2, count: 2, valid: false},
		{name: "kind 3 upper boundary inclusive", kind: 3, count: 5, valid: true},
		{name: "kind 3 above range", kind: 3, count: 6, valid: false},
		{name: "unknown kind never valid", kind: 4, count: 1, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, rules.AssociateCountValid(tt.kind, tt.count))
		})
	}
}

func TestRulesCompanyKindAllowed(t *testing.T) {
	rules := DefaultRules()

	for _, kind := range []int{1, 2, 3} {
		assert.True(t, rules.CompanyKindAllowed(kind), "kind %d must be allowed", kind)
	}
	for _, kind := range []int{0, 4, 7, -1} {
		assert.False(t, rules.CompanyKindAllowed(kind), "kind %d must not be allowed", kind)
	}
}

func TestDefaultRulesContent(t *testing.T) {
	rules := DefaultRules()

	require.Len(t, rules.BlockedActivityCodes, 44)
	require.Len(t, rules.AllowedSubtypes, 3)
	assert.EqualValues(t, 50_000_000, rules.PymeRutThreshold)
}
