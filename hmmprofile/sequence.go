package hmmprofile

import "github.com/pkg/errors"

// Sequence is an integer-coded query sequence: length Q, one residue
// index per position. Position 0 is an unused sentinel so that query
// position i (1-indexed, matching the profile's position convention)
// indexes directly into Residues.
type Sequence struct {
	Name     string
	Residues []int // Residues[0] is unused; len(Residues) == Length+1
	Length   int
}

// NewSequence encodes raw as residue indices against profile, returning an
// error if raw contains a byte the profile's alphabet doesn't recognize.
func NewSequence(profile *Profile, name string, raw []byte) (*Sequence, error) {
	seq := &Sequence{
		Name:     name,
		Residues: make([]int, len(raw)+1),
		Length:   len(raw),
	}
	for i, b := range raw {
		a := profile.Residue(b)
		if a < 0 {
			return nil, errors.Errorf("hmmprofile: sequence %s: unrecognized residue %q at position %d", name, b, i+1)
		}
		seq.Residues[i+1] = a
	}
	return seq, nil
}

// At returns the residue index at 1-indexed query position q.
func (s *Sequence) At(q int) int {
	return s.Residues[q]
}
