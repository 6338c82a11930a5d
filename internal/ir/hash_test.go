package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = SearchParams{MaxDepth: 60, MaxShellNorm: 64, FactorBudget: 1 << 18, TableDigest: "abc"}

func TestTargetIDDeterminism(t *testing.T) {
	target := Target{Kind: KindAngle, Theta: 0.3, Epsilon: 0.01}

	id1, err := TargetID(target, testParams)
	require.NoError(t, err)
	id2, err := TargetID(target, testParams)
	require.NoError(t, err)

	assert.Equal(t, id1, id2, "TargetID must be deterministic")
	assert.Len(t, id1, 64, "SHA-256 hex is 64 characters")
}

func TestTargetIDChangesWithInput(t *testing.T) {
	base := Target{Kind: KindAngle, Theta: 0.3, Epsilon: 0.01}
	id := MustTargetID(base, testParams)

	otherEps := base
	otherEps.Epsilon = 0.02
	otherParams := testParams
	otherParams.MaxDepth = 10
	otherTable := testParams
	otherTable.TableDigest = "def"
	otherBudget := testParams
	otherBudget.FactorBudget = 1 << 10

	assert.NotEqual(t, id, MustTargetID(otherEps, testParams))
	assert.NotEqual(t, id, MustTargetID(base, otherParams))
	assert.NotEqual(t, id, MustTargetID(base, otherTable))
	assert.NotEqual(t, id, MustTargetID(base, otherBudget), "the factoring budget can change the search outcome")
	assert.NotEqual(t, id, MustTargetID(Target{Kind: KindDirection, Re: 0.3, Epsilon: 0.01}, testParams))
}

func TestTargetIDIgnoresUnusedFields(t *testing.T) {
	a := Target{Kind: KindGates, Gates: "HT"}
	b := Target{Kind: KindGates, Gates: "HT", Theta: 1, Epsilon: 0.5}
	assert.Equal(t, MustTargetID(a, testParams), MustTargetID(b, testParams))
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainTarget, data), hashWithDomain(DomainResult, data))
	assert.Equal(t, TableDigest(data), hashWithDomain(DomainTable, data))
}

func TestResultDigest(t *testing.T) {
	r := Result{
		TargetID: "id",
		Target:   Target{Kind: KindGates, Gates: "HT"},
		Gates:    "HT",
		Length:   2,
		TCount:   1,
		HCount:   1,
		SDE:      2,
		Phase:    5,
		Exact:    true,
	}
	d1, err := ResultDigest(r)
	require.NoError(t, err)

	r.Distance = 1e-17
	d2, err := ResultDigest(r)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}
