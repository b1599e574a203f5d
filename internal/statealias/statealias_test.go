package statealias

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizePinCodeAndHyphen(t *testing.T) {
	a := New()
	got, ok := a.Canonicalize("GUJARAT- 363641")
	assert.True(t, ok)
	assert.Equal(t, "GUJARAT", got)
}

func TestCanonicalizeEmbeddedInAddress(t *testing.T) {
	a := New()
	got, ok := a.Canonicalize("BAGALKOT - 587103 KARNATAKA")
	assert.True(t, ok)
	assert.Equal(t, "KARNATAKA", got)
}

func TestCanonicalizeOldNames(t *testing.T) {
	a := New()

	tests := map[string]string{
		"PONDICHERRY": "PUDUCHERRY",
		"ORISSA":      "ODISHA",
		"CHATTISGARH": "CHHATTISGARH",
		"NEW DELHI":   "DELHI (NCT)",
		"UTTRAKHAND":  "UTTARAKHAND",
	}
	for raw, want := range tests {
		got, ok := a.Canonicalize(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestCanonicalizeUnresolvedReturnsFalse(t *testing.T) {
	a := New()
	_, ok := a.Canonicalize("ATLANTIS")
	assert.False(t, ok)
}

func TestAddAliasTakesPriority(t *testing.T) {
	a := New()
	a.AddAlias("J AND K", "JAMMU AND KASHMIR")
	got, ok := a.Canonicalize("j and k")
	assert.True(t, ok)
	assert.Equal(t, "JAMMU AND KASHMIR", got)
}

func TestCode2(t *testing.T) {
	assert.Equal(t, "KA", Code2("KARNATAKA"))
	assert.Equal(t, "", Code2("NOT A STATE"))
}
