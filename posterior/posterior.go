// Package posterior turns a Forward/Backward score pair into posterior
// decoding probabilities, detected domain ranges, and a null2
// composition-bias correction per domain. It never touches the DP
// recurrences themselves (that is boundfwdbck's job); it only reads the
// matrices and special-state arrays those recurrences already produced.
package posterior

import (
	"math"

	"github.com/grailbio/bio/boundfwdbck"
	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/hmmprofile"
	"github.com/grailbio/bio/logspace"
	"github.com/grailbio/bio/spmatrix"
)

// Cells holds real-space Match/Insert posterior probabilities over the
// same sparse shape the Forward/Backward matrices were computed on.
// Delete is always 0: a delete state emits no residue, so it carries no
// posterior mass in this decoding.
type Cells struct {
	*spmatrix.Matrix
}

// Decode computes per-cell and per-row posterior probabilities from a
// completed Forward/Backward pair run over the same Inner/Outer shape.
// fwdMatrix and bckMatrix are the matrices Forward and Backward wrote
// their log-space scores into; z is the Forward score (fwd.Score).
//
// Per row, M/I/N/J/C posteriors are normalized to sum to 1 (the row's
// denom), matching the source's convention that posterior mass at a
// query position is a probability distribution over "what state, if any,
// explains this residue".
func Decode(p *hmmprofile.Profile, fwdMatrix, bckMatrix *spmatrix.Matrix, fwd, bck boundfwdbck.Result) (*Cells, []boundfwdbck.Specials, error) {
	z := fwd.Score
	bg := p.Background

	m, err := spmatrix.Shape(fwdMatrix.Inner, fwdMatrix.Outer)
	if err != nil {
		return nil, nil, err
	}
	m.Fill(0)

	Q := fwdMatrix.Q
	specials := make([]boundfwdbck.Specials, Q+1)

	ids, idStarts := fwdMatrix.Inner.IndexRows()
	rowIdx := 0
	for q := 1; q <= Q; q++ {
		denom := 0.0
		rowStart, rowEnd, hasRow := 0, 0, false

		for rowIdx < len(ids) && ids[rowIdx] < q {
			rowIdx++
		}
		if rowIdx < len(ids) && ids[rowIdx] == q {
			rowStart = idStarts[rowIdx]
			rowEnd = edgebound.RowEnd(idStarts, len(fwdMatrix.Inner.Bounds), rowIdx)
			hasRow = true
			rowIdx++
			for r := rowStart; r < rowEnd; r++ {
				b := fwdMatrix.Inner.Bounds[r]
				for delta := 0; delta < b.Len(); delta++ {
					t := b.LB + delta
					if t == 0 {
						continue
					}

					mReal := math.Exp(fwdMatrix.At(r, delta, spmatrix.Match) + bckMatrix.At(r, delta, spmatrix.Match) - z)
					m.Set(r, delta, spmatrix.Match, mReal)
					denom += mReal

					if delta == b.Len()-1 {
						// Right edge of a bound: the next column isn't
						// covered, so there is no insert state to land
						// in from here.
						continue
					}
					iReal := math.Exp(fwdMatrix.At(r, delta, spmatrix.Insert) + bckMatrix.At(r, delta, spmatrix.Insert) - z)
					m.Set(r, delta, spmatrix.Insert, iReal)
					denom += iReal
				}
			}
		}

		nReal := math.Exp(fwd.Specials[q-1][hmmprofile.StateN] + bck.Specials[q][hmmprofile.StateN] + bg.Special[hmmprofile.StateN].Loop - z)
		jReal := math.Exp(fwd.Specials[q-1][hmmprofile.StateJ] + bck.Specials[q][hmmprofile.StateJ] + bg.Special[hmmprofile.StateJ].Loop - z)
		cReal := math.Exp(fwd.Specials[q-1][hmmprofile.StateC] + bck.Specials[q][hmmprofile.StateC] + bg.Special[hmmprofile.StateC].Loop - z)
		specials[q][hmmprofile.StateN] = nReal
		specials[q][hmmprofile.StateJ] = jReal
		specials[q][hmmprofile.StateC] = cReal
		denom += nReal + jReal + cReal

		if denom <= 0 {
			continue
		}
		if hasRow {
			for r := rowStart; r < rowEnd; r++ {
				b := fwdMatrix.Inner.Bounds[r]
				for delta := 0; delta < b.Len(); delta++ {
					m.Set(r, delta, spmatrix.Match, m.At(r, delta, spmatrix.Match)/denom)
					m.Set(r, delta, spmatrix.Insert, m.At(r, delta, spmatrix.Insert)/denom)
				}
			}
		}
		specials[q][hmmprofile.StateN] /= denom
		specials[q][hmmprofile.StateJ] /= denom
		specials[q][hmmprofile.StateC] /= denom
	}

	return &Cells{Matrix: m}, specials, nil
}

// Domain is a detected query-position range [Beg, End], both ends
// inclusive.
type Domain struct {
	Beg, End int
}

// DetectDomains runs the rt1/rt2 occupancy threshold state machine over
// the dense Forward/Backward special-state arrays: b_tot and e_tot track
// cumulative begin/end posterior mass, m_occ is 1 minus the probability
// of being in N, J or C (i.e. the probability of being inside some
// domain) at query position q.
func DetectDomains(p *hmmprofile.Profile, fwd, bck boundfwdbck.Result, rt1, rt2 float64) []Domain {
	z := fwd.Score
	bg := p.Background
	Q := len(fwd.Specials) - 1

	bTot := make([]float64, Q+1)
	eTot := make([]float64, Q+1)
	mOcc := make([]float64, Q+1)
	for q := 1; q <= Q; q++ {
		bTot[q] = bTot[q-1] + math.Exp(fwd.Specials[q-1][hmmprofile.StateB]+bck.Specials[q-1][hmmprofile.StateB]-z)
		eTot[q] = eTot[q-1] + math.Exp(fwd.Specials[q][hmmprofile.StateE]+bck.Specials[q][hmmprofile.StateE]-z)

		njc := math.Exp(fwd.Specials[q-1][hmmprofile.StateN]+bck.Specials[q][hmmprofile.StateN]+bg.Special[hmmprofile.StateN].Loop-z) +
			math.Exp(fwd.Specials[q-1][hmmprofile.StateJ]+bck.Specials[q][hmmprofile.StateJ]+bg.Special[hmmprofile.StateJ].Loop-z) +
			math.Exp(fwd.Specials[q-1][hmmprofile.StateC]+bck.Specials[q][hmmprofile.StateC]+bg.Special[hmmprofile.StateC].Loop-z)
		mOcc[q] = 1 - njc
	}

	var domains []Domain
	inside := false
	qBeg := -1
	for q := 1; q <= Q; q++ {
		if !inside {
			if mOcc[q]-(bTot[q]-bTot[q-1]) < rt2 {
				qBeg = q
			}
			if mOcc[q] >= rt1 {
				inside = true
			}
			continue
		}
		if mOcc[q]-(eTot[q]-eTot[q-1]) < rt2 {
			domains = append(domains, Domain{Beg: qBeg, End: q})
			inside = false
			qBeg = -1
		}
	}
	if inside && qBeg >= 0 {
		domains = append(domains, Domain{Beg: qBeg, End: Q})
	}
	return domains
}

// canonicalResidues is the number of alphabet symbols DomainBias treats as
// distinct amino acids; any symbol beyond that (X, gaps, other
// degeneracies) is assigned the mean of the canonical 20 rather than a
// per-symbol score, since this accelerator's Profile does not tag which
// extra symbols are degenerate-X versus gap/sentinel the way the source's
// alphabet table does.
const canonicalResidues = 20

// DomainBias computes the log-space null2 composition-bias correction for
// one domain, given the posterior cells and per-row special posteriors
// Decode produced over a shape covering (at least) that domain.
func DomainBias(p *hmmprofile.Profile, seq *hmmprofile.Sequence, cells *Cells, specials []boundfwdbck.Specials, d Domain) float64 {
	T := p.Length
	fM := make([]float64, T+1)
	fI := make([]float64, T+1)

	ids, idStarts := cells.Inner.IndexRows()
	for idx, row := range ids {
		if row < d.Beg || row > d.End {
			continue
		}
		start := idStarts[idx]
		end := edgebound.RowEnd(idStarts, len(cells.Inner.Bounds), idx)
		for r := start; r < end; r++ {
			b := cells.Inner.Bounds[r]
			for delta := 0; delta < b.Len(); delta++ {
				t := b.LB + delta
				if t == 0 || t > T {
					continue
				}
				fM[t] += cells.At(r, delta, spmatrix.Match)
				fI[t] += cells.At(r, delta, spmatrix.Insert)
			}
		}
	}

	var fN, fJ, fC float64
	for q := d.Beg; q <= d.End; q++ {
		fN += specials[q][hmmprofile.StateN]
		fJ += specials[q][hmmprofile.StateJ]
		fC += specials[q][hmmprofile.StateC]
	}

	n := float64(d.End - d.Beg + 1)
	logAvg := func(sum float64) float64 {
		if sum <= 0 || n <= 0 {
			return logspace.NegInf
		}
		return math.Log(sum) - math.Log(n)
	}
	x := logspace.Sum(logAvg(fN), logspace.Sum(logAvg(fC), logAvg(fJ)))

	alphaLen := len(p.Alphabet)
	canon := alphaLen
	if canon > canonicalResidues {
		canon = canonicalResidues
	}

	null2 := make([]float64, alphaLen)
	var mean float64
	for a := 0; a < canon; a++ {
		acc := logspace.NegInf
		for t := 1; t <= T; t++ {
			term := logspace.Sum(logAvg(fM[t])+p.MatchScore(t, a), logAvg(fI[t])+p.InsertScore(t, a))
			acc = logspace.Sum(acc, term)
		}
		acc = logspace.Sum(acc, x)
		null2[a] = math.Exp(acc)
		mean += null2[a]
	}
	if canon > 0 {
		mean /= float64(canon)
	}
	for a := canon; a < alphaLen; a++ {
		null2[a] = mean
	}

	bias := 0.0
	for q := d.Beg; q <= d.End; q++ {
		a := seq.At(q)
		score := mean
		if a >= 0 && a < alphaLen {
			score = null2[a]
		}
		bias += math.Log(score)
	}
	return bias
}
