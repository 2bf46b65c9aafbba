package hmmprofile

import (
	"testing"

	"github.com/antzucaro/matchr"
	"github.com/stretchr/testify/assert"
)

func TestLevenshteinMatchesIndependentOracle(t *testing.T) {
	cases := []struct{ a, b string }{
		{"pkinase", "pkinase"},
		{"pkinase", "pk1nase"},
		{"globin", "hemoglobin"},
		{"", "abc"},
		{"kinase", ""},
		{"PF00001", "PF00002"},
	}
	for _, c := range cases {
		want := matchr.Levenshtein(c.a, c.b)
		got := levenshtein(c.a, c.b)
		assert.Equal(t, want, got, "levenshtein(%q, %q)", c.a, c.b)
	}
}

func profileNamed(name, accession string) *Profile {
	return &Profile{Name: name, Accession: accession}
}

func TestResolveNameExactMatch(t *testing.T) {
	candidates := []*Profile{profileNamed("pkinase", "PF00069"), profileNamed("globin", "PF00042")}
	got, err := ResolveName(candidates, "globin", 2)
	assert.NoError(t, err)
	assert.Equal(t, candidates[1], got)
}

func TestResolveNameExactAccessionMatch(t *testing.T) {
	candidates := []*Profile{profileNamed("pkinase", "PF00069")}
	got, err := ResolveName(candidates, "PF00069", 2)
	assert.NoError(t, err)
	assert.Equal(t, candidates[0], got)
}

func TestResolveNameFuzzyFallback(t *testing.T) {
	candidates := []*Profile{profileNamed("pkinase", "PF00069"), profileNamed("globin", "PF00042")}
	got, err := ResolveName(candidates, "pk1nase", 2)
	assert.NoError(t, err)
	assert.Equal(t, candidates[0], got)
}

func TestResolveNameBeyondMaxDistanceFails(t *testing.T) {
	candidates := []*Profile{profileNamed("pkinase", "PF00069")}
	_, err := ResolveName(candidates, "completely-different-name", 2)
	assert.Error(t, err)
}

func TestResolveNameAmbiguousTieFails(t *testing.T) {
	candidates := []*Profile{profileNamed("abcde", ""), profileNamed("abcdf", "")}
	_, err := ResolveName(candidates, "abcdz", 3)
	assert.Error(t, err)
}

func TestResolveNameNoCandidatesFails(t *testing.T) {
	_, err := ResolveName(nil, "anything", 5)
	assert.Error(t, err)
}
