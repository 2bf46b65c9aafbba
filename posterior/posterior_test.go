package posterior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/bio/boundfwdbck"
	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/hmmprofile"
	"github.com/grailbio/bio/logspace"
	"github.com/grailbio/bio/spmatrix"
)

func buildRowSet(q, t int, triples ...[3]int) *edgebound.Set {
	s := edgebound.New(q, t, edgebound.ByRow)
	for _, tr := range triples {
		s.Push(edgebound.Bound{ID: tr[0], LB: tr[1], RB: tr[2]})
	}
	s.Sort()
	return s
}

func denseMatrix(q, t int) *spmatrix.Matrix {
	var innerTriples, outerTriples [][3]int
	for row := 0; row <= q; row++ {
		innerTriples = append(innerTriples, [3]int{row, 0, t + 1})
	}
	for row := -1; row <= q+1; row++ {
		outerTriples = append(outerTriples, [3]int{row, -1, t + 2})
	}
	inner := buildRowSet(q, t, innerTriples...)
	outer := buildRowSet(q, t, outerTriples...)
	m, err := spmatrix.Shape(inner, outer)
	if err != nil {
		panic(err)
	}
	return m
}

func toyProfile() *hmmprofile.Profile {
	trans := hmmprofile.Transitions{MM: 0, MI: -50, MD: -50, IM: -50, II: -50, DM: -50, DD: -50}
	node := func() hmmprofile.Node {
		return hmmprofile.Node{Match: []float64{0, 0}, Insert: []float64{-50, -50}, Trans: trans}
	}
	bg := hmmprofile.Background{
		Special: [5]hmmprofile.SpecialTransitions{
			hmmprofile.StateN: {Loop: -1, Move: 0},
			hmmprofile.StateC: {Loop: -1, Move: 0},
			hmmprofile.StateJ: {Loop: -1, Move: -1},
			hmmprofile.StateE: {Loop: logspace.NegInf, Move: 0},
			hmmprofile.StateB: {},
		},
	}
	return &hmmprofile.Profile{
		Name:       "toy",
		Alphabet:   "AC",
		Length:     3,
		Nodes:      []hmmprofile.Node{{}, node(), node(), node()},
		Background: bg,
		IsLocal:    true,
	}
}

func toySequence() *hmmprofile.Sequence {
	return &hmmprofile.Sequence{Name: "q", Length: 3, Residues: []int{0, 0, 0, 0}}
}

func runForwardBackward(p *hmmprofile.Profile, seq *hmmprofile.Sequence) (fwdMatrix, bckMatrix *spmatrix.Matrix, fwd, bck boundfwdbck.Result) {
	fwdMatrix = denseMatrix(3, 3)
	bckMatrix = denseMatrix(3, 3)
	fwd = boundfwdbck.Forward(boundfwdbck.Input{Query: seq, Profile: p, Matrix: fwdMatrix})
	bck = boundfwdbck.Backward(boundfwdbck.Input{Query: seq, Profile: p, Matrix: bckMatrix})
	return
}

func TestDecodeRowsSumToOne(t *testing.T) {
	p := toyProfile()
	seq := toySequence()
	fwdMatrix, bckMatrix, fwd, bck := runForwardBackward(p, seq)

	cells, specials, err := Decode(p, fwdMatrix, bckMatrix, fwd, bck)
	assert.NoError(t, err)

	for q := 1; q <= 3; q++ {
		sum := specials[q][hmmprofile.StateN] + specials[q][hmmprofile.StateJ] + specials[q][hmmprofile.StateC]
		ids, idStarts := cells.Inner.IndexRows()
		for idx, row := range ids {
			if row != q {
				continue
			}
			start := idStarts[idx]
			end := edgebound.RowEnd(idStarts, len(cells.Inner.Bounds), idx)
			for r := start; r < end; r++ {
				b := cells.Inner.Bounds[r]
				for delta := 0; delta < b.Len(); delta++ {
					sum += cells.At(r, delta, spmatrix.Match)
					sum += cells.At(r, delta, spmatrix.Insert)
				}
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "row %d posteriors must sum to 1", q)
	}
}

func TestDecodeDeletePlaneStaysZero(t *testing.T) {
	p := toyProfile()
	seq := toySequence()
	fwdMatrix, bckMatrix, fwd, bck := runForwardBackward(p, seq)

	cells, _, err := Decode(p, fwdMatrix, bckMatrix, fwd, bck)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, cells.At(3, 1, spmatrix.Delete))
}

func TestDetectDomainsReturnsValidRanges(t *testing.T) {
	p := toyProfile()
	seq := toySequence()
	_, _, fwd, bck := runForwardBackward(p, seq)

	domains := DetectDomains(p, fwd, bck, 0.25, 0.1)
	assert.True(t, len(domains) >= 0) // toy profile's thresholds are data-dependent; just confirm no panic/invalid range
	for _, d := range domains {
		assert.True(t, d.Beg <= d.End)
		assert.True(t, d.Beg >= 1)
		assert.True(t, d.End <= 3)
	}
}

func TestDomainBiasIsFinite(t *testing.T) {
	p := toyProfile()
	seq := toySequence()
	fwdMatrix, bckMatrix, fwd, bck := runForwardBackward(p, seq)
	cells, specials, err := Decode(p, fwdMatrix, bckMatrix, fwd, bck)
	assert.NoError(t, err)

	bias := DomainBias(p, seq, cells, specials, Domain{Beg: 1, End: 3})
	assert.False(t, math.IsNaN(bias))
}
