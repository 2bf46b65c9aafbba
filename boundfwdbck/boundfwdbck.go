// Package boundfwdbck implements the bounded Forward and Backward
// recurrences: the standard HMMER-style Plan7 algorithm, restricted to
// whatever cells the cloud search (package cloudsearch) and the
// merge/pad/reorient step (package edgebound) decided were worth scoring.
// The normal M/I/D states live in a spmatrix.Matrix; the five special
// states (N, C, J, E, B) are dense per query row, since every row touches
// them regardless of how sparse the normal-state coverage is.
package boundfwdbck

import (
	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/hmmprofile"
	"github.com/grailbio/bio/logspace"
	"github.com/grailbio/bio/spmatrix"
)

// Specials holds the five special-state scores for one query row, indexed
// by hmmprofile.SpecialState.
type Specials [5]float64

// Range restricts a pass to a slice of query positions: cells outside
// [Beg, End) are forced to -Inf while the special states still update
// across the whole row range, so the same matrix can be re-scored per
// detected domain without reshaping it.
type Range struct {
	Beg, End int
}

func (r *Range) contains(q int) bool {
	return r == nil || (q >= r.Beg && q < r.End)
}

// Input bundles everything a bounded pass needs: the matrix must already
// be shaped (spmatrix.Shape) over the cloud's by-row inner/outer sets.
type Input struct {
	Query       *hmmprofile.Sequence
	Profile     *hmmprofile.Profile
	Matrix      *spmatrix.Matrix
	DomainRange *Range
}

// Result is what a bounded pass returns: the final score and the dense
// per-row special-state array, both consumed by package posterior.
type Result struct {
	Score    float64
	Specials []Specials // length Q+1, indexed by absolute query row
}

// entryTerm returns the score a cell must add before it can count toward
// the End state: 0 in local mode (an alignment may end anywhere), 0 in
// glocal mode only at the profile's final position (an alignment may only
// end at the model's last match column), -Inf everywhere else in glocal
// mode.
func entryTerm(p *hmmprofile.Profile, t int, isLocal bool) float64 {
	if isLocal || t == p.Length {
		return 0
	}
	return logspace.NegInf
}

// Forward runs the bounded Forward recurrence over in.Matrix's inner set,
// row 0 through Q, and returns the final score (C(Q) + tC_MOVE) and the
// per-row special-state array.
func Forward(in Input) Result {
	m := in.Matrix
	p := in.Profile
	bg := p.Background
	Q := m.Q
	special := make([]Specials, Q+1)

	special[0][hmmprofile.StateN] = 0
	special[0][hmmprofile.StateB] = bg.Special[hmmprofile.StateN].Move
	special[0][hmmprofile.StateE] = logspace.NegInf
	special[0][hmmprofile.StateJ] = logspace.NegInf
	special[0][hmmprofile.StateC] = logspace.NegInf

	ids, idStarts := m.Inner.IndexRows()
	rowIdx := 0
	for q := 1; q <= Q; q++ {
		eAccum := logspace.NegInf
		inDomain := in.DomainRange.contains(q)

		for rowIdx < len(ids) && ids[rowIdx] < q {
			rowIdx++ // skip rows Forward never visits, e.g. a row-0 bound
		}
		if rowIdx < len(ids) && ids[rowIdx] == q {
			start := idStarts[rowIdx]
			end := edgebound.RowEnd(idStarts, len(m.Inner.Bounds), rowIdx)
			rowIdx++
			a := in.Query.At(q)
			for r := start; r < end; r++ {
				b := m.Inner.Bounds[r]
				for delta := 0; delta < b.Len(); delta++ {
					t := b.LB + delta
					if t == 0 || !inDomain {
						m.Set(r, delta, spmatrix.Match, logspace.NegInf)
						m.Set(r, delta, spmatrix.Insert, logspace.NegInf)
						m.Set(r, delta, spmatrix.Delete, logspace.NegInf)
						continue
					}

					// Match and Delete land on t, so their incoming
					// transition is stored at the source node t-1; Insert
					// does not advance the profile position, so it reads
					// t's own outgoing transitions (see cloudsearch, same
					// convention).
					srcTr := p.Nodes[t-1].Trans
					diagM := m.AtPrevRow(r, delta-1, spmatrix.Match) + srcTr.MM
					diagI := m.AtPrevRow(r, delta-1, spmatrix.Insert) + srcTr.IM
					diagD := m.AtPrevRow(r, delta-1, spmatrix.Delete) + srcTr.DM
					diagB := special[q-1][hmmprofile.StateB] + p.EntryScore()
					mVal := p.MatchScore(t, a) + logspace.Sum4(diagM, diagI, diagD, diagB)
					m.Set(r, delta, spmatrix.Match, mVal)

					tr := p.Nodes[t].Trans
					upM := m.AtPrevRow(r, delta, spmatrix.Match) + tr.MI
					upI := m.AtPrevRow(r, delta, spmatrix.Insert) + tr.II
					iVal := p.InsertScore(t, a) + logspace.Sum(upM, upI)
					m.Set(r, delta, spmatrix.Insert, iVal)

					leftM := m.At(r, delta-1, spmatrix.Match) + srcTr.MD
					leftD := m.At(r, delta-1, spmatrix.Delete) + srcTr.DD
					dVal := logspace.Sum(leftM, leftD)
					m.Set(r, delta, spmatrix.Delete, dVal)

					term := entryTerm(p, t, p.IsLocal)
					eAccum = logspace.Sum3(eAccum, mVal+term, dVal+term)
				}
			}
		}

		special[q][hmmprofile.StateE] = eAccum
		special[q][hmmprofile.StateJ] = logspace.Sum(
			special[q-1][hmmprofile.StateJ]+bg.Special[hmmprofile.StateJ].Loop,
			eAccum+bg.Special[hmmprofile.StateE].Loop)
		special[q][hmmprofile.StateC] = logspace.Sum(
			special[q-1][hmmprofile.StateC]+bg.Special[hmmprofile.StateC].Loop,
			eAccum+bg.Special[hmmprofile.StateE].Move)
		special[q][hmmprofile.StateN] = special[q-1][hmmprofile.StateN] + bg.Special[hmmprofile.StateN].Loop
		special[q][hmmprofile.StateB] = logspace.Sum(
			special[q][hmmprofile.StateN]+bg.Special[hmmprofile.StateN].Move,
			special[q][hmmprofile.StateJ]+bg.Special[hmmprofile.StateJ].Move)
	}

	score := special[Q][hmmprofile.StateC] + bg.Special[hmmprofile.StateC].Move
	return Result{Score: score, Specials: special}
}

// Backward runs the bounded Backward recurrence, row Q down to 0. It is
// the standard HMMER Backward recursion, self-consistent with Forward
// above, rather than a line-for-line port of the source's two-row
// lookback cursor bookkeeping: a linear-memory Backward pass only needs
// to agree with Forward on what each state means, not reproduce the
// source's specific cell-by-cell traversal order. Its score lives at
// N(0) on return.
func Backward(in Input) Result {
	m := in.Matrix
	p := in.Profile
	bg := p.Background
	Q := m.Q
	special := make([]Specials, Q+1)

	special[Q][hmmprofile.StateJ] = logspace.NegInf
	special[Q][hmmprofile.StateB] = logspace.NegInf
	special[Q][hmmprofile.StateN] = logspace.NegInf
	special[Q][hmmprofile.StateC] = bg.Special[hmmprofile.StateC].Move
	special[Q][hmmprofile.StateE] = special[Q][hmmprofile.StateC] + bg.Special[hmmprofile.StateE].Move

	ids, idStarts := m.Inner.IndexRows()
	rowIdx := len(ids) - 1
	for q := Q; q >= 1; q-- {
		inDomain := in.DomainRange.contains(q)
		a := in.Query.At(q)
		var aNext int
		haveNext := q+1 <= in.Query.Length
		if haveNext {
			aNext = in.Query.At(q + 1)
		}

		bAccum := logspace.NegInf

		for rowIdx >= 0 && ids[rowIdx] > q {
			rowIdx-- // skip rows Backward never visits, e.g. a row-Q+1 bound
		}
		if rowIdx >= 0 && ids[rowIdx] == q {
			start := idStarts[rowIdx]
			end := edgebound.RowEnd(idStarts, len(m.Inner.Bounds), rowIdx)
			rowIdx--
			for r := end - 1; r >= start; r-- {
				b := m.Inner.Bounds[r]
				for delta := b.Len() - 1; delta >= 0; delta-- {
					t := b.LB + delta
					if t == 0 || !inDomain {
						m.Set(r, delta, spmatrix.Match, logspace.NegInf)
						m.Set(r, delta, spmatrix.Insert, logspace.NegInf)
						m.Set(r, delta, spmatrix.Delete, logspace.NegInf)
						continue
					}

					// Transitions leaving t are stored at Nodes[t], same
					// convention as the forward pass's Insert term.
					tr := p.Nodes[t].Trans
					eTerm := special[q][hmmprofile.StateE] + entryTerm(p, t, p.IsLocal)

					mscNext, iscNext := logspace.NegInf, logspace.NegInf
					if haveNext && t+1 <= p.Length {
						mscNext = p.MatchScore(t+1, aNext)
					}
					if haveNext {
						iscNext = p.InsertScore(t, aNext)
					}

					toMatch := logspace.NegInf
					toInsert := logspace.NegInf
					if haveNext && t+1 <= p.Length {
						toMatch = m.AtNextRow(r, delta+1, spmatrix.Match) + tr.MM + mscNext
					}
					if haveNext {
						toInsert = m.AtNextRow(r, delta, spmatrix.Insert) + tr.MI + iscNext
					}
					toDelete := m.At(r, delta+1, spmatrix.Delete) + tr.MD
					mVal := logspace.Sum4(toMatch, toInsert, toDelete, eTerm)
					m.Set(r, delta, spmatrix.Match, mVal)

					selfLoop := logspace.NegInf
					insToMatch := logspace.NegInf
					if haveNext {
						selfLoop = m.AtNextRow(r, delta, spmatrix.Insert) + tr.II + iscNext
					}
					if haveNext && t+1 <= p.Length {
						insToMatch = m.AtNextRow(r, delta+1, spmatrix.Match) + tr.IM + mscNext
					}
					iVal := logspace.Sum(selfLoop, insToMatch)
					m.Set(r, delta, spmatrix.Insert, iVal)

					delToDel := m.At(r, delta+1, spmatrix.Delete) + tr.DD
					delToMatch := logspace.NegInf
					if haveNext && t+1 <= p.Length {
						delToMatch = m.AtNextRow(r, delta+1, spmatrix.Match) + tr.DM + mscNext
					}
					dVal := logspace.Sum3(delToDel, delToMatch, eTerm)
					m.Set(r, delta, spmatrix.Delete, dVal)

					// A new alignment entering the profile at this row
					// transitions B -> M_t and emits the current row's own
					// residue at M_t; that emission is not part of mVal
					// itself (mVal is "the rest of the path after this
					// state", which already assumes its own emission
					// happened), so it is added here explicitly.
					bAccum = logspace.Sum(bAccum, mVal+p.EntryScore()+p.MatchScore(t, a))
				}
			}
		}

		special[q-1][hmmprofile.StateB] = bAccum
		special[q-1][hmmprofile.StateJ] = logspace.Sum(
			special[q][hmmprofile.StateJ]+bg.Special[hmmprofile.StateJ].Loop,
			bAccum+bg.Special[hmmprofile.StateJ].Move)
		special[q-1][hmmprofile.StateC] = special[q][hmmprofile.StateC] + bg.Special[hmmprofile.StateC].Loop
		special[q-1][hmmprofile.StateE] = logspace.Sum(
			special[q-1][hmmprofile.StateJ]+bg.Special[hmmprofile.StateE].Loop,
			special[q-1][hmmprofile.StateC]+bg.Special[hmmprofile.StateE].Move)
		special[q-1][hmmprofile.StateN] = logspace.Sum(
			special[q][hmmprofile.StateN]+bg.Special[hmmprofile.StateN].Loop,
			bAccum+bg.Special[hmmprofile.StateN].Move)
	}

	return Result{Score: special[0][hmmprofile.StateN], Specials: special}
}
