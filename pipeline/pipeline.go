// Package pipeline strings together the cloud search, bounded
// Forward/Backward, posterior decoding and scoring stages into the single
// per-(query, target) call an outer fan-out layer makes once per pair.
package pipeline

import (
	"context"
	"math"

	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"

	"github.com/grailbio/bio/boundfwdbck"
	"github.com/grailbio/bio/cloudsearch"
	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/hmmprofile"
	"github.com/grailbio/bio/posterior"
	"github.com/grailbio/bio/scoring"
	"github.com/grailbio/bio/seed"
	"github.com/grailbio/bio/spmatrix"
)

// Work is everything one call to Run needs: the profile/sequence pair, a
// seed trace to anchor the cloud search to, and the cloud/domain
// parameters.
type Work struct {
	Profile *hmmprofile.Profile
	Query   *hmmprofile.Sequence
	Seed    *seed.Trace

	Cloud cloudsearch.Params
	RT1   float64 // domain-detection occupancy thresholds, §4.8
	RT2   float64

	ZDB float64 // effective database size for e-value conversion
}

// Run executes one (query, target) pair: cloud search, bounded
// Forward/Backward, posterior decoding, domain detection, null2 bias and
// final score assembly. ctx is checked for cancellation at each stage
// boundary; Run never blocks on I/O, so there is nothing to select on.
func Run(ctx context.Context, w Work) (scoring.Result, error) {
	p, q := w.Profile, w.Query
	if p.Length <= 0 {
		return scoring.Result{}, errors.Errorf("pipeline: profile %q has non-positive length %d", p.Name, p.Length)
	}
	if q.Length <= 0 {
		return scoring.Result{}, errors.Errorf("pipeline: query %q has non-positive length %d", q.Name, q.Length)
	}

	qBeg, tBeg, qEnd, tEnd, ok := w.Seed.Endpoints()
	if !ok {
		return scoring.Result{}, errors.Errorf("pipeline: seed trace for query %q / profile %q has no usable begin/end", q.Name, p.Name)
	}
	qBeg, tBeg = seed.Clamp(qBeg, tBeg, q.Length, p.Length, "begin")
	qEnd, tEnd = seed.Clamp(qEnd, tEnd, q.Length, p.Length, "end")

	if err := ctx.Err(); err != nil {
		return scoring.Result{}, err
	}

	cellsFullMatrix := (q.Length + 1) * (p.Length + 1)

	in := cloudsearch.Input{
		Query: q, Profile: p,
		Q: q.Length, T: p.Length,
		QBeg: qBeg, TBeg: tBeg, QEnd: qEnd, TEnd: tEnd,
		Params: w.Cloud,
	}
	fwdCloud := cloudsearch.Sweep(cloudsearch.Forward, in)
	bckCloud := cloudsearch.Sweep(cloudsearch.Backward, in)

	if err := ctx.Err(); err != nil {
		return scoring.Result{}, err
	}

	union := edgebound.Union(fwdCloud, bckCloud)
	if union.Len() == 0 {
		return scoring.Rejected(q.Name, p.Name, cellsFullMatrix), nil
	}
	outer := union.Pad()

	inner := union.ReorientDiagToRow()
	outerByRow := outer.ReorientDiagToRow()

	m, err := spmatrix.Shape(inner, outerByRow)
	if err != nil {
		return scoring.Result{}, errors.Wrapf(err, "pipeline: shaping matrix for query %q / profile %q", q.Name, p.Name)
	}
	mBck, err := spmatrix.Shape(inner, outerByRow)
	if err != nil {
		return scoring.Result{}, errors.Wrapf(err, "pipeline: shaping backward matrix for query %q / profile %q", q.Name, p.Name)
	}

	fwd := boundfwdbck.Forward(boundfwdbck.Input{Query: q, Profile: p, Matrix: m})
	if math.IsNaN(fwd.Score) || math.IsInf(fwd.Score, 0) {
		return scoring.Numeric(q.Name, p.Name, cellsFullMatrix), nil
	}

	if err := ctx.Err(); err != nil {
		return scoring.Result{}, err
	}

	bck := boundfwdbck.Backward(boundfwdbck.Input{Query: q, Profile: p, Matrix: mBck})
	if math.IsNaN(bck.Score) || math.IsInf(bck.Score, 0) {
		return scoring.Numeric(q.Name, p.Name, cellsFullMatrix), nil
	}

	if err := ctx.Err(); err != nil {
		return scoring.Result{}, err
	}

	cells, specials, err := posterior.Decode(p, m, mBck, fwd, bck)
	if err != nil {
		return scoring.Result{}, errors.Wrapf(err, "pipeline: posterior decode for query %q / profile %q", q.Name, p.Name)
	}

	domains := posterior.DetectDomains(p, fwd, bck, w.RT1, w.RT2)
	best := posterior.Domain{Beg: qBeg, End: qEnd}
	bestBias := 0.0
	if len(domains) > 0 {
		best = domains[0]
		bestScore := math.Inf(-1)
		for _, d := range domains {
			bias := posterior.DomainBias(p, q, cells, specials, d)
			if err := ctx.Err(); err != nil {
				return scoring.Result{}, err
			}
			candidate := scoring.SeqScore(fwd.Score, p.NullScore(q.Length), bias)
			if candidate > bestScore {
				bestScore, best, bestBias = candidate, d, bias
			}
		}
	}

	nullSc := p.NullScore(q.Length)
	res := scoring.Assemble(q.Name, p.Name, p, fwd.Score, nullSc, bestBias, best, inner.CountCells(), cellsFullMatrix, w.ZDB)
	res.BoundFwdScore = fwd.Score
	res.BoundBckScore = bck.Score
	return res, nil
}

// RunBatch fans work out across grailbio/base/traverse, the bounded-
// parallelism idiom this codebase already uses for per-shard batch work.
// Run allocates its cloud buffers and sparse matrix fresh on every call, so
// concurrent tasks never alias each other's working state.
func RunBatch(ctx context.Context, work []Work) ([]scoring.Result, error) {
	results := make([]scoring.Result, len(work))
	err := traverse.Each(len(work), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := Run(ctx, work[i])
		if err != nil {
			return errors.Wrapf(err, "pipeline: task %d", i)
		}
		results[i] = res
		return nil
	})
	return results, err
}
