// Package spmatrix implements the sparse 3-plane (Match/Insert/Delete)
// dynamic-programming matrix used by the bounded Forward/Backward
// recurrences. Instead of allocating a full (Q+1)x(T+1)x3 array, it stores
// only the cells named by a pair of by-row edgebound sets — an inner set
// (the cells actually scored) and an outer set (the inner set padded by one
// cell in every direction, so every neighbour a recurrence might read is
// physically present) — in one flat slice, with three offset-vector tables
// translating an inner bound's row into the previous, current and next
// row's position within that shared buffer.
package spmatrix

import (
	"github.com/pkg/errors"

	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/logspace"
)

// NumPlanes is the number of DP planes stored per cell (Match, Insert,
// Delete).
const NumPlanes = 3

// Plane indexes one of the three per-cell scores.
type Plane int

const (
	Match Plane = iota
	Insert
	Delete
)

// Matrix is a sparse 3-plane DP matrix shaped by a pair of by-row edgebound
// sets. Its lifetime is tied to those sets: it stays valid, and can be
// reused across Forward, Backward and posterior passes, as long as Inner
// and Outer are not mutated.
type Matrix struct {
	Q, T         int
	Inner, Outer *edgebound.Set

	// omapCur[i] is the cell offset (data index divided by NumPlanes)
	// where Outer.Bounds[i]'s cells begin;
	// omapCur has one extra trailing entry equal to len(Data)/NumPlanes,
	// so omapCur[i+1]-omapCur[i] always gives bound i's cell count
	// without a separate end-of-range branch.
	omapCur []int

	// imapPrv/imapCur/imapNxt[r] is the cell offset corresponding to
	// Inner.Bounds[r].LB on the outer row one above, the same as, and one
	// below Inner.Bounds[r].ID respectively. A recurrence reading the
	// cell at column t reads
	// Data[NumPlanes*(imap*[r] + t-Inner.Bounds[r].LB) + int(plane)].
	imapPrv, imapCur, imapNxt []int

	// Data is the flat backing store, length NumPlanes * total outer
	// cells, indexed as Data[NumPlanes*(cellOffset + colDelta) + int(plane)].
	Data []float64
}

// Shape builds a Matrix from an inner (scored) and outer (padded) by-row
// edgebound set, both describing the same (Q, T) matrix. Data is
// initialised to logspace.NegInf, matching the source's convention that an
// unwritten cell scores as an impossible path.
//
// Shape does not modify inner or outer; callers that rebuild them per
// query/target pair should call Shape again rather than attempt to mutate
// an existing Matrix in place.
func Shape(inner, outer *edgebound.Set) (*Matrix, error) {
	if inner.Orientation != edgebound.ByRow || outer.Orientation != edgebound.ByRow {
		return nil, errors.Errorf("spmatrix: Shape requires by-row edgebound sets")
	}
	m := &Matrix{Q: outer.Q, T: outer.T, Inner: inner, Outer: outer}
	m.mapOuter()
	if err := m.mapInner(); err != nil {
		return nil, err
	}
	m.Data = make([]float64, m.omapCur[len(m.omapCur)-1]*NumPlanes)
	for i := range m.Data {
		m.Data[i] = logspace.NegInf
	}
	return m, nil
}

// mapOuter assigns each outer bound its starting cell offset, with a
// trailing sentinel entry equal to the total cell count. This mirrors
// MATRIX_3D_SPARSE_Map_to_Outer_Edgebounds, one entry per bound plus the
// running total; unlike edgebound.Set.IndexRows, a sentinel is kept here
// because the offsets are consumed as a running total (omapCur[i+1] is
// needed to know bound i's width), not as a row lookup table.
func (m *Matrix) mapOuter() {
	m.omapCur = make([]int, len(m.Outer.Bounds)+1)
	offset := 0
	for i, b := range m.Outer.Bounds {
		m.omapCur[i] = offset
		offset += b.Len()
	}
	m.omapCur[len(m.Outer.Bounds)] = offset
}

// mapInner locates, for every inner bound, the outer bound on the row
// above, the same row, and the row below that covers its left edge, and
// records the corresponding cell offset. The source does this with a
// monotone three-cursor merge walk over sorted bound lists; Set.Search
// (itself a doubling-probe-then-binary-search, per edgebound's own
// grounding) gives the same answer with less bookkeeping, at the cost of a
// logarithmic rather than amortised-constant lookup per inner bound —
// an acceptable trade since this runs once per query/target pair, not in
// the per-cell recurrence hot loop.
func (m *Matrix) mapInner() error {
	n := len(m.Inner.Bounds)
	m.imapPrv = make([]int, n)
	m.imapCur = make([]int, n)
	m.imapNxt = make([]int, n)

	for r, b := range m.Inner.Bounds {
		prv, err := m.outerOffset(b.ID-1, b.LB)
		if err != nil {
			return errors.Wrapf(err, "spmatrix: row above row %d", b.ID)
		}
		cur, err := m.outerOffset(b.ID, b.LB)
		if err != nil {
			return errors.Wrapf(err, "spmatrix: row %d", b.ID)
		}
		nxt, err := m.outerOffset(b.ID+1, b.LB)
		if err != nil {
			return errors.Wrapf(err, "spmatrix: row below row %d", b.ID)
		}
		m.imapPrv[r], m.imapCur[r], m.imapNxt[r] = prv, cur, nxt
	}
	return nil
}

func (m *Matrix) outerOffset(row, col int) (int, error) {
	idx := m.Outer.Search(row, col)
	if idx < 0 {
		return 0, errors.Errorf("spmatrix: outer set does not cover (row=%d, col=%d); inner set was not padded before shaping", row, col)
	}
	return m.omapCur[idx] + (col - m.Outer.Bounds[idx].LB), nil
}

// At returns the score at inner-bound row index r (an index into
// m.Inner.Bounds), column delta colDelta (0-based offset from that bound's
// LB), and plane, read from the current row.
func (m *Matrix) At(r, colDelta int, plane Plane) float64 {
	return m.Data[m.imapCur[r]*NumPlanes+colDelta*NumPlanes+int(plane)]
}

// Set writes the score at inner-bound row index r, column delta colDelta,
// and plane, in the current row.
func (m *Matrix) Set(r, colDelta int, plane Plane, v float64) {
	m.Data[m.imapCur[r]*NumPlanes+colDelta*NumPlanes+int(plane)] = v
}

// AtPrevRow returns the score at the row above inner-bound row r, column
// delta colDelta relative to r's own LB (the recurrence always offsets
// relative to the current bound's range, since that's the loop it's
// iterating), and plane.
func (m *Matrix) AtPrevRow(r, colDelta int, plane Plane) float64 {
	return m.Data[m.imapPrv[r]*NumPlanes+colDelta*NumPlanes+int(plane)]
}

// AtNextRow returns the score at the row below inner-bound row r, column
// delta colDelta relative to r's own LB, and plane. Used by the backward
// sweep, which reads "ahead" in row order.
func (m *Matrix) AtNextRow(r, colDelta int, plane Plane) float64 {
	return m.Data[m.imapNxt[r]*NumPlanes+colDelta*NumPlanes+int(plane)]
}

// Fill sets every stored cell, across both inner and outer bounds, to v.
// posterior.Decode uses it to zero a freshly shaped Matrix before writing
// probabilities into it.
func (m *Matrix) Fill(v float64) {
	for i := range m.Data {
		m.Data[i] = v
	}
}

// NumCells returns the total number of (row, column) positions stored
// (across all three planes), i.e. the outer set's cell count.
func (m *Matrix) NumCells() int {
	return len(m.Data) / NumPlanes
}
