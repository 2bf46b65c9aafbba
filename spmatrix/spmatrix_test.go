package spmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/logspace"
)

// buildRowSet is a small helper for constructing an already-sorted by-row
// edgebound set from (id, lb, rb) triples.
func buildRowSet(q, t int, triples ...[3]int) *edgebound.Set {
	s := edgebound.New(q, t, edgebound.ByRow)
	for _, tr := range triples {
		s.Push(edgebound.Bound{ID: tr[0], LB: tr[1], RB: tr[2]})
	}
	s.Sort()
	return s
}

func TestShapeRejectsNonRowOrientation(t *testing.T) {
	diag := edgebound.New(4, 4, edgebound.ByAntidiagonal)
	diag.Push(edgebound.Bound{ID: 1, LB: 0, RB: 2})
	_, err := Shape(diag, diag)
	assert.Error(t, err)
}

func TestShapeInitializesToNegInf(t *testing.T) {
	inner := buildRowSet(4, 4, [3]int{1, 1, 2})
	outer := buildRowSet(4, 4, [3]int{0, 0, 3}, [3]int{1, 0, 3}, [3]int{2, 0, 3})

	m, err := Shape(inner, outer)
	assert.NoError(t, err)
	assert.Equal(t, logspace.NegInf, m.At(0, 0, Match))
	assert.Equal(t, logspace.NegInf, m.At(0, 0, Insert))
	assert.Equal(t, logspace.NegInf, m.At(0, 0, Delete))
}

func TestSetThenAtRoundTrips(t *testing.T) {
	inner := buildRowSet(4, 4, [3]int{1, 1, 3})
	outer := buildRowSet(4, 4, [3]int{0, 0, 4}, [3]int{1, 0, 4}, [3]int{2, 0, 4})

	m, err := Shape(inner, outer)
	assert.NoError(t, err)

	m.Set(0, 0, Match, -1.5)
	m.Set(0, 1, Insert, -2.5)
	assert.Equal(t, -1.5, m.At(0, 0, Match))
	assert.Equal(t, -2.5, m.At(0, 1, Insert))
	// Writing one plane must not disturb its neighbours.
	assert.Equal(t, logspace.NegInf, m.At(0, 0, Insert))
	assert.Equal(t, logspace.NegInf, m.At(0, 1, Match))
}

func TestPrevAndNextRowReadNeighborRows(t *testing.T) {
	// Inner row 1 spans columns [1,3); outer rows 0,1,2 each span [0,4),
	// so the row above/below are both addressable at the same column.
	inner := buildRowSet(4, 4, [3]int{1, 1, 3})
	outer := buildRowSet(4, 4, [3]int{0, 0, 4}, [3]int{1, 0, 4}, [3]int{2, 0, 4})

	m, err := Shape(inner, outer)
	assert.NoError(t, err)

	// Row 0 (above row 1) and row 2 (below) are only reachable through the
	// outer set; write to them directly in Data at the imapPrv/imapNxt
	// offsets, then confirm row 1 can see them.
	prevBase := m.imapPrv[0]
	m.Data[prevBase*NumPlanes+1*NumPlanes+int(Delete)] = -9
	assert.Equal(t, -9.0, m.AtPrevRow(0, 1, Delete))

	nextBase := m.imapNxt[0]
	m.Data[nextBase*NumPlanes+1*NumPlanes+int(Insert)] = -7
	assert.Equal(t, -7.0, m.AtNextRow(0, 1, Insert))
}

func TestShapeErrorsWhenOuterDoesNotCoverInner(t *testing.T) {
	inner := buildRowSet(4, 4, [3]int{1, 1, 3})
	// Outer omits row 1 entirely: inner is not padded into outer.
	outer := buildRowSet(4, 4, [3]int{0, 0, 4}, [3]int{2, 0, 4})

	_, err := Shape(inner, outer)
	assert.Error(t, err)
}

func TestNumCellsMatchesOuterCoverage(t *testing.T) {
	inner := buildRowSet(4, 4, [3]int{1, 1, 3})
	outer := buildRowSet(4, 4, [3]int{0, 0, 2}, [3]int{1, 0, 4}, [3]int{2, 0, 2})

	m, err := Shape(inner, outer)
	assert.NoError(t, err)
	assert.Equal(t, outer.CountCells(), m.NumCells())
}
