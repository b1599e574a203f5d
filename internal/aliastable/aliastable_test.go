package aliastable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbvh/collegematch/internal/model"
)

func TestResolveLongestMatchWins(t *testing.T) {
	table := New(model.AliasCollege)
	table.Load([]model.Alias{
		{AliasText: "GMC", CanonicalTarget: "GOVERNMENT MEDICAL COLLEGE", Kind: model.AliasCollege},
		{AliasText: "GMC TRIVANDRUM", CanonicalTarget: "GOVERNMENT MEDICAL COLLEGE THIRUVANANTHAPURAM", Kind: model.AliasCollege},
	})

	resolved, rule, ok := table.Resolve("GMC Trivandrum")
	require.True(t, ok)
	assert.Equal(t, "GMC TRIVANDRUM", rule)
	assert.Equal(t, "GOVERNMENT MEDICAL COLLEGE THIRUVANANTHAPURAM", resolved)
}

func TestResolveFallsBackToShorterRule(t *testing.T) {
	table := New(model.AliasCollege)
	table.Load([]model.Alias{
		{AliasText: "GMC", CanonicalTarget: "GOVERNMENT MEDICAL COLLEGE", Kind: model.AliasCollege},
	})

	resolved, rule, ok := table.Resolve("GMC Kozhikode")
	require.True(t, ok)
	assert.Equal(t, "GMC", rule)
	assert.Contains(t, resolved, "GOVERNMENT MEDICAL COLLEGE")
}

func TestResolveNoMatchReturnsInputUnchanged(t *testing.T) {
	table := New(model.AliasCollege)
	table.Load(nil)

	resolved, rule, ok := table.Resolve("Some College")
	assert.False(t, ok)
	assert.Empty(t, rule)
	assert.Equal(t, "SOME COLLEGE", resolved)
}

func TestIgnoresAliasesOfOtherKind(t *testing.T) {
	table := New(model.AliasCollege)
	table.Load([]model.Alias{
		{AliasText: "MBBS", CanonicalTarget: "MBBS", Kind: model.AliasCourse},
	})

	_, _, ok := table.Resolve("MBBS")
	assert.False(t, ok)
}
