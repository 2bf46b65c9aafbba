// Package seed defines the seed alignment the cloud search anchors to: a
// trace of (state, query position, target position) triples produced by an
// upstream aligner (e.g. a fast filter stage), of which only the begin and
// end points are actually consumed.
package seed

import "github.com/grailbio/base/log"

// State names a Plan7 alignment state. Only the states that can appear in
// a seed trace are listed; special states (N/C/J) never appear in a
// Viterbi traceback and so have no place here.
type State int

const (
	StateB State = iota // begin
	StateM               // match
	StateI               // insert
	StateD               // delete
	StateE               // end
)

// Point is a single step of a seed trace: the state occupied and the
// (query, target) cell it corresponds to.
type Point struct {
	State State
	Q, T  int
}

// Trace is an ordered sequence of trace points, typically produced by a
// fast alignment filter upstream of the cloud search.
type Trace struct {
	Points []Point
}

// Endpoints returns the (q, t) coordinates of the trace's first B->M
// transition and last M->E transition: the two points the cloud search
// actually anchors to. ok is false if the trace contains no B or no E
// state.
func (tr *Trace) Endpoints() (qBeg, tBeg, qEnd, tEnd int, ok bool) {
	begIdx, endIdx := -1, -1
	for i, p := range tr.Points {
		if p.State == StateB && begIdx < 0 {
			begIdx = i
		}
		if p.State == StateE {
			endIdx = i
		}
	}
	if begIdx < 0 || endIdx < 0 || begIdx+1 >= len(tr.Points) || endIdx-1 < 0 {
		return 0, 0, 0, 0, false
	}
	beg := tr.Points[begIdx+1] // first M after B
	end := tr.Points[endIdx-1] // last M before E
	return beg.Q, beg.T, end.Q, end.T, true
}

// Clamp adjusts a seed endpoint that falls exactly on the matrix border
// inward by one cell, so the cloud search always has at least one row and
// column of room to grow from the seed. Both begin and end points must lie
// strictly inside the (Q+1) x (T+1) matrix; an endpoint sitting on the
// border (q == 0, t == 0, q == matrixQ, or t == matrixT) is nudged inward
// and the adjustment is logged at debug level rather than silently
// absorbed, since it changes where the search actually starts.
func Clamp(q, t, matrixQ, matrixT int, label string) (int, int) {
	origQ, origT := q, t
	if q == 0 {
		q = 1
	}
	if q == matrixQ {
		q = matrixQ - 1
	}
	if t == 0 {
		t = 1
	}
	if t == matrixT {
		t = matrixT - 1
	}
	if q != origQ || t != origT {
		log.Debugf("seed: clamped %s endpoint (%d,%d) -> (%d,%d) to stay inside matrix bounds (Q=%d, T=%d)",
			label, origQ, origT, q, t, matrixQ, matrixT)
	}
	return q, t
}
