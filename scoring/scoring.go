// Package scoring turns a completed Forward score and null2 bias into the
// bit scores, p-value and e-value a caller actually wants, and assembles
// the per-pair Result record the rest of this module's output boils down
// to.
package scoring

import (
	"math"

	"github.com/grailbio/bio/hmmprofile"
	"github.com/grailbio/bio/posterior"
)

// log2 converts a natural-log score to bits.
const log2 = 0.6931471805599453

// PreScore converts a Forward nat-score and the null-model nat-score into a
// bit score, before any null2 composition-bias correction is applied.
func PreScore(fwdNatSc, nullSc float64) float64 {
	return (fwdNatSc - nullSc) / log2
}

// SeqScore converts a Forward nat-score, the null-model nat-score and a
// null2 bias (also in nats) into the final reported bit score.
func SeqScore(fwdNatSc, nullSc, bias float64) float64 {
	return (fwdNatSc - (nullSc + bias)) / log2
}

// smallX1 is the threshold below which 1-e^x is approximated by -x to avoid
// catastrophic cancellation near the tails, matching the source's
// survivor-function guard.
const smallX1 = 0.001

// GumbelSurvival returns P(X > x) for a Gumbel(mu, lambda) distribution,
// the tail used for Viterbi/MSV-style scores.
func GumbelSurvival(x, mu, lambda float64) float64 {
	y := lambda * (x - mu)
	ey := -math.Exp(-y)
	if math.Abs(ey) < smallX1 {
		return -ey
	}
	return 1 - math.Exp(ey)
}

// GumbelLogSurvival returns ln P(X > x) for a Gumbel(mu, lambda)
// distribution, computed so the far right tail (where P(X>x) underflows to
// 0 in linear space) still returns a finite, accurate value.
func GumbelLogSurvival(x, mu, lambda float64) float64 {
	y := lambda * (x - mu)
	ey := -math.Exp(-y)
	switch {
	case math.Abs(ey) < smallX1:
		return -y
	case math.Abs(math.Exp(ey)) < smallX1:
		return -math.Exp(ey)
	default:
		return math.Log(1 - math.Exp(ey))
	}
}

// ExponentialSurvival returns P(X > x) for an Exponential(mu, lambda) tail
// (mu is the offset below which the fit does not apply), the distribution
// used for Forward-style scores.
func ExponentialSurvival(x, mu, lambda float64) float64 {
	if x < mu {
		return 1.0
	}
	return math.Exp(-lambda * (x - mu))
}

// ExponentialLogSurvival returns ln P(X > x) for the same distribution,
// exact rather than log(ExponentialSurvival(...)) so it never takes log(0)
// for x far below mu.
func ExponentialLogSurvival(x, mu, lambda float64) float64 {
	if x < mu {
		return 0
	}
	return -lambda * (x - mu)
}

// Status classifies how a pair's scoring attempt concluded.
type Status int

const (
	// StatusOK means Result holds a normally computed score.
	StatusOK Status = iota
	// StatusRejected means the cloud search produced no surviving cells;
	// Result.SeqScore is -Inf and no p/e-value is meaningful.
	StatusRejected
	// StatusNumeric means a stage's score was non-finite (NaN or Inf
	// where a finite value was expected); the pair was aborted rather
	// than reported with a garbage score.
	StatusNumeric
)

// Result is the per-(query,target) pair record the core produces: a
// finished search's scores, calibration outputs, and enough bookkeeping
// (cell counts, per-stage nat-scores) to judge how much pruning happened
// and where pair-specific failures should be attributed.
type Result struct {
	QueryName, TargetName string

	PreScore float64 // bits, before null2 bias
	SeqScore float64 // bits, after null2 bias
	Bias     float64 // nats, null2 correction subtracted from the Forward score

	LnPValue float64
	PValue   float64
	EValue   float64

	BestDomain posterior.Domain // best-scoring domain's query range

	CellsComputed   int // cells actually scored (inner set size)
	CellsFullMatrix int // (Q+1)*(T+1), for pruning-ratio reporting

	BoundFwdScore, BoundBckScore float64 // nats, bounded Forward/Backward totals

	Status Status
}

// Rejected builds a Result for a pair whose cloud search produced no
// surviving cells: not an error, just nothing worth scoring.
func Rejected(queryName, targetName string, cellsFullMatrix int) Result {
	return Result{
		QueryName:       queryName,
		TargetName:      targetName,
		SeqScore:        math.Inf(-1),
		CellsFullMatrix: cellsFullMatrix,
		Status:          StatusRejected,
	}
}

// Numeric builds a Result for a pair aborted because a stage produced a
// non-finite score.
func Numeric(queryName, targetName string, cellsFullMatrix int) Result {
	return Result{
		QueryName:       queryName,
		TargetName:      targetName,
		SeqScore:        math.Inf(-1),
		CellsFullMatrix: cellsFullMatrix,
		Status:          StatusNumeric,
	}
}

// Assemble converts a completed Forward nat-score, a null2 bias, and a
// profile's calibrated distribution parameters into a full Result. zDB is
// the effective database size (number of targets) the caller is searching
// against, used to turn a p-value into an e-value.
func Assemble(queryName, targetName string, p *hmmprofile.Profile, fwdNatSc, nullSc, bias float64, domain posterior.Domain, cellsComputed, cellsFullMatrix int, zDB float64) Result {
	pre := PreScore(fwdNatSc, nullSc)
	seq := SeqScore(fwdNatSc, nullSc, bias)

	lnPVal := ExponentialLogSurvival(seq, p.ForwardDist.Param1, p.ForwardDist.Param2)
	pVal := math.Exp(lnPVal)

	return Result{
		QueryName:       queryName,
		TargetName:      targetName,
		PreScore:        pre,
		SeqScore:        seq,
		Bias:            bias,
		LnPValue:        lnPVal,
		PValue:          pVal,
		EValue:          pVal * zDB,
		BestDomain:      domain,
		CellsComputed:   cellsComputed,
		CellsFullMatrix: cellsFullMatrix,
		Status:          StatusOK,
	}
}
