package edgebound

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
)

func TestSortOrdersByIDThenRange(t *testing.T) {
	s := New(10, 10, ByAntidiagonal)
	s.Push(Bound{ID: 2, LB: 5, RB: 7})
	s.Push(Bound{ID: 1, LB: 3, RB: 4})
	s.Push(Bound{ID: 1, LB: 0, RB: 2})
	s.Sort()
	expect.EQ(t, s.Bounds, []Bound{
		{ID: 1, LB: 0, RB: 2},
		{ID: 1, LB: 3, RB: 4},
		{ID: 2, LB: 5, RB: 7},
	})
}

func TestMergeCoalescesTouchingAndOverlapping(t *testing.T) {
	s := New(10, 10, ByAntidiagonal)
	s.Push(Bound{ID: 0, LB: 0, RB: 3})
	s.Push(Bound{ID: 0, LB: 3, RB: 5}) // touches: prev.RB == next.LB
	s.Push(Bound{ID: 0, LB: 4, RB: 8}) // overlaps
	s.Push(Bound{ID: 1, LB: 0, RB: 2}) // different id, stays separate
	s.Sort()
	s.Merge()
	expect.EQ(t, s.Bounds, []Bound{
		{ID: 0, LB: 0, RB: 8},
		{ID: 1, LB: 0, RB: 2},
	})
}

func TestMergeLeavesGapsAlone(t *testing.T) {
	s := New(10, 10, ByAntidiagonal)
	s.Push(Bound{ID: 0, LB: 0, RB: 2})
	s.Push(Bound{ID: 0, LB: 3, RB: 5}) // gap: 2 < 3, must not merge
	s.Sort()
	s.Merge()
	expect.EQ(t, s.Bounds, []Bound{
		{ID: 0, LB: 0, RB: 2},
		{ID: 0, LB: 3, RB: 5},
	})
}

func TestReverse(t *testing.T) {
	s := New(10, 10, ByAntidiagonal)
	s.Push(Bound{ID: 0, LB: 0, RB: 1})
	s.Push(Bound{ID: 1, LB: 0, RB: 1})
	s.Push(Bound{ID: 2, LB: 0, RB: 1})
	s.Reverse()
	expect.EQ(t, []int{2, 1, 0}, []int{s.Bounds[0].ID, s.Bounds[1].ID, s.Bounds[2].ID})
}

func TestSearch(t *testing.T) {
	s := New(20, 20, ByAntidiagonal)
	s.Push(Bound{ID: 3, LB: 2, RB: 6})
	s.Push(Bound{ID: 3, LB: 10, RB: 12})
	s.Push(Bound{ID: 5, LB: 0, RB: 4})
	s.Sort()

	assert.Equal(t, 0, s.Search(3, 3))
	assert.Equal(t, 1, s.Search(3, 11))
	assert.Equal(t, -1, s.Search(3, 6)) // rb is exclusive
	assert.Equal(t, -1, s.Search(3, 7)) // gap between the two id=3 bounds
	assert.Equal(t, 2, s.Search(5, 0))
	assert.Equal(t, -1, s.Search(4, 0)) // no bound at this id
}

func TestIndexRowsNoSentinel(t *testing.T) {
	s := New(20, 20, ByAntidiagonal)
	s.Push(Bound{ID: 0, LB: 0, RB: 1})
	s.Push(Bound{ID: 0, LB: 2, RB: 3})
	s.Push(Bound{ID: 2, LB: 0, RB: 1})
	s.Sort()

	ids, idStarts := s.IndexRows()
	assert.Equal(t, []int{0, 2}, ids)
	assert.Equal(t, []int{0, 2}, idStarts)

	assert.Equal(t, 2, RowEnd(idStarts, len(s.Bounds), 0))
	assert.Equal(t, len(s.Bounds), RowEnd(idStarts, len(s.Bounds), 1))
}

func TestCountCells(t *testing.T) {
	s := New(20, 20, ByAntidiagonal)
	s.Push(Bound{ID: 0, LB: 0, RB: 3})
	s.Push(Bound{ID: 1, LB: 5, RB: 8})
	assert.Equal(t, 6, s.CountCells())
}

func TestUnionMergesOverlappingAcrossInputs(t *testing.T) {
	a := New(10, 10, ByAntidiagonal)
	a.Push(Bound{ID: 4, LB: 0, RB: 3})
	b := New(10, 10, ByAntidiagonal)
	b.Push(Bound{ID: 4, LB: 2, RB: 6})
	b.Push(Bound{ID: 5, LB: 0, RB: 1})

	out := Union(a, b)
	expect.EQ(t, out.Bounds, []Bound{
		{ID: 4, LB: 0, RB: 6},
		{ID: 5, LB: 0, RB: 1},
	})
	assert.Equal(t, ByAntidiagonal, out.Orientation)
}

// TestReorientDiagToRowSingleCell covers the simplest case: one antidiagonal
// bound spanning several rows, each contributing exactly one cell.
func TestReorientDiagToRowSingleCell(t *testing.T) {
	// Q=3, T=3 matrix; antidiagonal d=3 covering rows 1..2 (t = 3-i: row1->t2, row2->t1).
	s := New(3, 3, ByAntidiagonal)
	s.Push(Bound{ID: 3, LB: 1, RB: 3})

	out := s.ReorientDiagToRow()
	assert.Equal(t, ByRow, out.Orientation)
	expect.EQ(t, out.Bounds, []Bound{
		{ID: 1, LB: 2, RB: 3},
		{ID: 2, LB: 1, RB: 2},
	})
}

// TestReorientDiagToRowMergesContiguousAntidiagonals checks that several
// antidiagonals covering the same row at consecutive columns collapse into
// one contiguous row bound, rather than one bound per antidiagonal.
func TestReorientDiagToRowMergesContiguousAntidiagonals(t *testing.T) {
	// Row 2 is covered by antidiagonals 2,3,4 (columns 0,1,2) and separately
	// by antidiagonal 6 (column 4) after a gap at column 3.
	s := New(5, 5, ByAntidiagonal)
	for d := 2; d <= 4; d++ {
		s.Push(Bound{ID: d, LB: 2, RB: 3})
	}
	s.Push(Bound{ID: 6, LB: 2, RB: 3})
	s.Sort()

	out := s.ReorientDiagToRow()
	expect.EQ(t, out.Bounds, []Bound{
		{ID: 2, LB: 0, RB: 3},
		{ID: 2, LB: 4, RB: 5},
	})
}

func TestPadExpandsByOneInEachDirection(t *testing.T) {
	s := New(10, 10, ByAntidiagonal)
	s.Push(Bound{ID: 5, LB: 3, RB: 5})

	out := s.Pad()
	expect.EQ(t, out.Bounds, []Bound{
		{ID: 4, LB: 2, RB: 6},
		{ID: 5, LB: 2, RB: 6},
		{ID: 6, LB: 2, RB: 6},
	})
}

func TestPadMergesOverlappingNeighbors(t *testing.T) {
	s := New(10, 10, ByAntidiagonal)
	s.Push(Bound{ID: 5, LB: 3, RB: 5})
	s.Push(Bound{ID: 6, LB: 3, RB: 5})

	out := s.Pad()
	// Both bounds' padding touches id=5 and id=6 in overlapping ways; Merge
	// must coalesce them rather than leaving duplicate/overlapping ranges.
	for i := 1; i < len(out.Bounds); i++ {
		if out.Bounds[i].ID == out.Bounds[i-1].ID {
			assert.True(t, out.Bounds[i].LB > out.Bounds[i-1].RB)
		}
	}
}

func TestReorientRoundTripsCellCount(t *testing.T) {
	s := New(6, 6, ByAntidiagonal)
	s.Push(Bound{ID: 2, LB: 0, RB: 2})
	s.Push(Bound{ID: 3, LB: 0, RB: 3})
	s.Push(Bound{ID: 4, LB: 1, RB: 3})
	s.Sort()
	s.Merge()

	out := s.ReorientDiagToRow()
	assert.Equal(t, s.CountCells(), out.CountCells())
}
