// Package cloudsearch implements the antidiagonal "cloud search": a
// pruned, linear-memory sweep of the Forward (or Backward) recurrence that
// discovers which cells of the full (Q+1)x(T+1) dynamic-programming matrix
// are worth scoring at all, starting from a single seed alignment and
// growing outward until an x-drop threshold or the matrix edge stops it.
// Its output is a by-antidiagonal edgebound.Set, not a score: the full
// bounded Forward/Backward pass (package boundfwdbck) does the actual
// scoring, restricted to the cells this package names.
package cloudsearch

import (
	"github.com/grailbio/bio/circular"
	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/hmmprofile"
	"github.com/grailbio/bio/logspace"
)

// Direction selects which end of the seed the sweep grows from.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Params holds the x-drop pruning thresholds: Alpha bounds how far a
// single antidiagonal's surviving range can fall below that antidiagonal's
// own best score; Beta bounds how far the best score seen on any
// antidiagonal so far can fall below the best score seen across the whole
// sweep before the search gives up entirely; Gamma is the number of
// antidiagonals swept with no pruning at all, to let the cloud establish
// itself before trimming starts.
type Params struct {
	Alpha, Beta float64
	Gamma       int
}

// cell holds one antidiagonal position's Match/Insert/Delete scores.
type cell struct {
	M, I, D float64
}

// buffer is the three-row rolling store the sweep reads and writes,
// indexed by antidiagonal modulo 3 and by k = query offset. Each sweep
// allocates a fresh buffer whose rows are sized to a power of two
// (circular.NextExp2, reused from the teacher's rolling-buffer sizing
// idiom).
type buffer struct {
	rows [3][]cell
}

func (b *buffer) ensureCap(n int) {
	for i := range b.rows {
		if cap(b.rows[i]) < n {
			b.rows[i] = make([]cell, n)
		} else {
			b.rows[i] = b.rows[i][:n]
		}
	}
}

func (b *buffer) row(d int) []cell {
	return b.rows[((d%3)+3)%3]
}

// clearRow resets a row to -Inf in every plane, matching the sweep's
// unconditional scrub of the now-two-back antidiagonal after each step.
// The source skips this scrub in one code path due to a comparison typo
// (`if (st_MX3->clean = false)` assigns rather than compares); this
// reimplementation always clears, never reproducing that bug.
func clearRow(row []cell) {
	for i := range row {
		row[i] = cell{M: logspace.NegInf, I: logspace.NegInf, D: logspace.NegInf}
	}
}

// Range is a half-open [LB, RB) span of k-offsets (query positions) alive
// on one antidiagonal.
type Range struct {
	LB, RB int
}

func (r Range) empty() bool { return r.RB <= r.LB }

// Pruner decides, for one antidiagonal's freshly computed cells, which
// sub-range survives, and whether the whole sweep should stop. The core
// search uses XDropEdgeTrimPruner; the interface exists so alternative
// strategies (e.g. one that bifurcates a range into disjoint surviving
// pieces, rather than only trimming from the two ends) can be substituted
// without touching the sweep driver. This module ships only the edge-trim
// strategy; a bifurcating pruner is a documented, unimplemented extension
// point.
type Pruner interface {
	// Prune is called once per antidiagonal after its raw (candidate)
	// range's cells have been scored. dCount is how many antidiagonals
	// have been swept so far (0 for the seed's own antidiagonal). totalMax
	// is the running best cell score across the whole sweep; Prune may
	// update it (scanning raw for a new max) and uses it to test against
	// Beta. row is the freshly computed row for this antidiagonal, valid
	// over indices [raw.LB, raw.RB).
	Prune(dCount int, raw Range, row []cell, totalMax *float64, params Params) (kept Range, terminate bool)
}

// XDropEdgeTrimPruner is the "double x-drop edge-trim" strategy: it trims
// a range inward from both ends until every remaining cell's best state
// score is within Alpha of that antidiagonal's own max, and separately
// terminates the whole sweep once an antidiagonal's max falls more than
// Beta below the best score seen anywhere in the sweep so far. It never
// splits a range into disjoint pieces, so it cannot recover a branch that
// dips below threshold and later recovers on the same antidiagonal — that
// is the tradeoff a bifurcating pruner would avoid, at the cost of
// tracking more than one range per antidiagonal.
type XDropEdgeTrimPruner struct{}

func cellMax(c cell) float64 {
	m := c.M
	if c.I > m {
		m = c.I
	}
	if c.D > m {
		m = c.D
	}
	return m
}

func (XDropEdgeTrimPruner) Prune(dCount int, raw Range, row []cell, totalMax *float64, params Params) (Range, bool) {
	diagMax := logspace.NegInf
	for k := raw.LB; k < raw.RB; k++ {
		if m := cellMax(row[k]); m > diagMax {
			diagMax = m
		}
	}
	if diagMax > *totalMax {
		*totalMax = diagMax
	}

	if diagMax == logspace.NegInf {
		// Nothing on this antidiagonal is reachable at all (every cell is
		// log-space zero); -Inf >= -Inf would otherwise let the edge-trim
		// loop below keep the whole range by accident.
		return Range{}, false
	}

	if dCount < params.Gamma {
		return raw, false
	}

	totalLimit := *totalMax - params.Beta
	terminate := diagMax < totalLimit

	diagLimit := diagMax - params.Alpha
	lb := -1
	for k := raw.LB; k < raw.RB; k++ {
		if cellMax(row[k]) >= diagLimit {
			lb = k
			break
		}
	}
	if lb < 0 {
		return Range{}, terminate
	}
	rb := raw.RB
	for k := raw.RB - 1; k >= raw.LB; k-- {
		if cellMax(row[k]) >= diagLimit {
			rb = k + 1
			break
		}
	}
	return Range{LB: lb, RB: rb}, terminate
}

// Input bundles the read-only collaborators and seed endpoints a sweep
// needs.
type Input struct {
	Query   *hmmprofile.Sequence
	Profile *hmmprofile.Profile
	Q, T    int

	// QBeg/TBeg/QEnd/TEnd are the seed's clamped begin and end points
	// (see package seed). Forward starts from (QBeg,TBeg); Backward starts
	// from (QEnd,TEnd).
	QBeg, TBeg, QEnd, TEnd int

	Params Params
	Pruner Pruner
}

// Sweep runs one direction of the cloud search and returns the
// by-antidiagonal edgebound set of surviving cells.
func Sweep(dir Direction, in Input) *edgebound.Set {
	if in.Pruner == nil {
		in.Pruner = XDropEdgeTrimPruner{}
	}
	if dir == Forward {
		return sweep(in, in.QBeg, in.TBeg, +1)
	}
	return sweep(in, in.QEnd, in.TEnd, -1)
}

// sweep drives the antidiagonal loop in direction step (+1 for Forward,
// -1 for Backward). The recurrence neighbour offsets, free-variable choice
// (B for Forward, E for Backward) and row-scrub target all flip with step,
// but the loop shape — extend, score, prune, record, scrub, rotate — does
// not.
func sweep(in Input, qStart, tStart, step int) *edgebound.Set {
	Q, T := in.Q, in.T
	out := edgebound.New(Q, T, edgebound.ByAntidiagonal)

	buf := &buffer{}
	rowCap := circular.NextExp2(Q + 2)
	buf.ensureCap(rowCap)
	for i := range buf.rows {
		clearRow(buf.rows[i])
	}

	dStart := qStart + tStart
	dEnd := Q + T
	if step < 0 {
		dEnd = 0
	}

	cur := Range{LB: qStart, RB: qStart + 1}
	totalMax := logspace.NegInf
	dCount := 0

	for d := dStart; ; d += step {
		raw := extendAndClip(cur, d, Q, T, step)
		if raw.empty() {
			break
		}

		row := buf.row(d)
		for k := raw.LB; k < raw.RB; k++ {
			row[k] = scoreCell(in, dir(step), d, k, d == dStart, buf)
		}

		kept, terminate := in.Pruner.Prune(dCount, raw, row, &totalMax, in.Params)
		dCount++
		if !kept.empty() {
			out.Push(edgebound.Bound{ID: d, LB: kept.LB, RB: kept.RB})
		}

		// Scrub the row now two antidiagonals behind the frontier: the
		// recurrence never reads further back than d-2 (forward) or d+2
		// (backward), so it is safe to reuse.
		clearRow(buf.row(d - 2*step))

		if kept.empty() || terminate || d == dEnd {
			break
		}
		cur = kept
	}

	out.Sort()
	return out
}

func dir(step int) Direction {
	if step > 0 {
		return Forward
	}
	return Backward
}

// extendAndClip grows the previous antidiagonal's surviving range by one
// cell on each side and clips it to the valid k-range on antidiagonal d:
// k = q must satisfy 0 <= k <= Q and 0 <= d-k <= T.
func extendAndClip(prev Range, d, Q, T int, step int) Range {
	lb, rb := prev.LB-1, prev.RB+1
	if lb < 0 {
		lb = 0
	}
	if lb < d-T {
		lb = d - T
	}
	if rb > Q+1 {
		rb = Q + 1
	}
	if rb > d+1 {
		rb = d + 1
	}
	return Range{LB: lb, RB: rb}
}

// scoreCell computes the Match/Insert/Delete scores at antidiagonal d,
// offset k, reading whatever neighbours the sweep direction calls for from
// the rolling buffer. first is true only for the antidiagonal the sweep
// starts on, where the free begin/end term is 0 rather than -Inf, which
// confines the cloud to paths through the seed rather than letting a new
// alignment start anywhere inside the cloud.
func scoreCell(in Input, d Direction, antidiag, k int, first bool, buf *buffer) cell {
	t := antidiag - k
	if k == 0 || t == 0 || t > in.Profile.Length {
		// Row q==0 and column t==0 are the begin/end boundary, not a real
		// profile position: there is no Match/Insert emission there, so
		// no M/I/D state is reachable from this cell.
		return cell{M: logspace.NegInf, I: logspace.NegInf, D: logspace.NegInf}
	}
	free := logspace.NegInf
	if first {
		free = 0
	}

	if d == Forward {
		a := in.Query.At(k)
		prev2 := buf.row(antidiag - 2)
		prev1 := buf.row(antidiag - 1)

		// Match and Delete advance the profile position, so the transition
		// that lands on t is stored at the source node t-1; Insert stays
		// at t (it doesn't consume a profile position), so it reads t's
		// own outgoing transitions.
		srcTr := in.Profile.Nodes[t-1].Trans
		var m, ins, del float64 = logspace.NegInf, logspace.NegInf, logspace.NegInf
		if k-1 >= 0 {
			p2 := prev2[k-1]
			m = logspace.Sum4(p2.M+srcTr.MM, p2.I+srcTr.IM, p2.D+srcTr.DM, free)
			tr := in.Profile.Nodes[t].Trans
			p1 := prev1[k-1]
			ins = logspace.Sum(p1.M+tr.MI, p1.I+tr.II)
		}
		p1same := prev1[k]
		del = logspace.Sum(p1same.M+srcTr.MD, p1same.D+srcTr.DD)

		return cell{
			M: in.Profile.MatchScore(t, a) + m,
			I: in.Profile.InsertScore(t, a) + ins,
			D: del,
		}
	}

	// Backward: symmetric neighbour offsets (q+1,t+1), (q,t+1), (q+1,t),
	// with E standing in for B. This mirrors the forward recurrence's
	// structure exactly as the cloud only needs to know which cells are
	// reachable, not a separately re-derived Backward formulation.
	a := in.Query.At(k)
	next2 := buf.row(antidiag + 2)
	next1 := buf.row(antidiag + 1)

	var m, ins, del float64 = logspace.NegInf, logspace.NegInf, logspace.NegInf
	if k+1 <= in.Q {
		tr := in.Profile.Nodes[t].Trans
		n2 := next2[k+1]
		m = logspace.Sum4(n2.M+tr.MM, n2.I+tr.IM, n2.D+tr.DM, free)
		n1 := next1[k+1]
		ins = logspace.Sum(n1.M+tr.MI, n1.I+tr.II)
	}
	n1same := next1[k]
	del = logspace.Sum(n1same.M+in.Profile.Nodes[t].Trans.MD, n1same.D+in.Profile.Nodes[t].Trans.DD)

	return cell{
		M: in.Profile.MatchScore(t, a) + m,
		I: in.Profile.InsertScore(t, a) + ins,
		D: del,
	}
}
