package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCompany(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"plain name", "Sunrun", "SUNRUN"},
		{"legal suffix", "Sunrun LLC", "SUNRUN"},
		{"legal suffix with period", "Brightline Inc.", "BRIGHTLINE"},
		{"leading the", "The Brightline Corp", "BRIGHTLINE"},
		{"dba clause dropped", "Acme Inc. DBA Acme Solar Energy", "ACME"},
		{"dba with periods", "Acme D.B.A. Acme Roofing", "ACME"},
		{"solar phrase collapsed", "Sunrun Solar Installation, LLC", "SUNRUN SOLAR"},
		{"solar power collapsed", "The Solar Power Co.", "SOLAR"},
		{"solar energy collapsed", "Horizon Solar Energy", "HORIZON SOLAR"},
		{"punctuation stripped", "O'Brien-Smith (West) Solar", "O BRIEN SMITH WEST SOLAR"},
		{"whitespace collapsed", "Sunrun    Solar   Panels", "SUNRUN SOLAR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeCompany(tc.input))
		})
	}
}

func TestNormalizeCompanySameBusinessTwoAgencies(t *testing.T) {
	// The point of the canonicalization: the permit system and the utility
	// record the same business differently.
	a := NormalizeCompany("Sunrun Solar Installation, LLC")
	b := NormalizeCompany("SUNRUN SOLAR POWER")
	assert.Equal(t, a, b)
	assert.Equal(t, "SUNRUN SOLAR", a)
}
