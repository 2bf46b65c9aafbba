package hmmprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProfile() *Profile {
	return &Profile{
		Name:     "toy",
		Alphabet: "ACGT",
		Length:   2,
		Nodes: []Node{
			{}, // sentinel position 0
			{Match: []float64{0.1, 0.2, 0.3, 0.4}, Insert: []float64{-1, -1, -1, -1}},
			{Match: []float64{0.5, 0.6, 0.7, 0.8}, Insert: []float64{-1, -1, -1, -1}},
		},
	}
}

func TestResidueLookup(t *testing.T) {
	p := testProfile()
	assert.Equal(t, 0, p.Residue('A'))
	assert.Equal(t, 3, p.Residue('T'))
	assert.Equal(t, -1, p.Residue('X'))
}

func TestMatchAndInsertScore(t *testing.T) {
	p := testProfile()
	assert.Equal(t, 0.3, p.MatchScore(1, 2))
	assert.Equal(t, 0.8, p.MatchScore(2, 3))
	assert.Equal(t, -1.0, p.InsertScore(1, 0))
}

func TestNewSequenceEncodesResidues(t *testing.T) {
	p := testProfile()
	seq, err := NewSequence(p, "query1", []byte("ACGT"))
	assert.NoError(t, err)
	assert.Equal(t, 4, seq.Length)
	assert.Equal(t, 0, seq.At(1))
	assert.Equal(t, 3, seq.At(4))
}

func TestNewSequenceRejectsUnknownResidue(t *testing.T) {
	p := testProfile()
	_, err := NewSequence(p, "query1", []byte("ACGZ"))
	assert.Error(t, err)
}
