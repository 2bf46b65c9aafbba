// Package hmmprofile defines the read-only profile-HMM and query-sequence
// types consumed by the cloud search and bounded Forward/Backward
// recurrences: per-position emission and transition log-odds scores, the
// background composition, and the score-distribution parameters used by
// the scoring package to turn a bit score into a p-value.
package hmmprofile

import "math"

// Transitions holds the seven core-model transition log-probabilities
// addressed by source and destination state: Match, Insert, Delete.
type Transitions struct {
	MM, MI, MD float64
	IM, II     float64
	DM, DD     float64
}

// SpecialState names one of the five special states outside the core
// M/I/D model.
type SpecialState int

const (
	StateN SpecialState = iota
	StateC
	StateJ
	StateE
	StateB

	numSpecialStates = int(StateB) + 1
)

// SpecialTransitions holds a special state's self-loop and move-on
// log-probabilities.
type SpecialTransitions struct {
	Loop, Move float64
}

// Node holds the per-position (column) scores for one profile position:
// match and insert emission log-odds per residue, and the transitions out
// of that position.
type Node struct {
	Match  []float64 // log-odds emission score per residue, len == alphabet size
	Insert []float64 // log-odds emission score per residue, len == alphabet size
	Trans  Transitions
}

// Background holds the profile-independent composition used to compute
// null-model and null2 bias scores.
type Background struct {
	Freq    []float64 // hard-coded background residue frequencies
	Compo   []float64 // mean composition of the model that produced this profile
	Insert  []float64 // uniform-across-positions insert emission frequencies
	Trans   Transitions
	Special [numSpecialStates]SpecialTransitions
}

// DistParams holds the two parameters of a score distribution: (mu,
// lambda) for the Gumbel distributions fit to MSV/Viterbi scores, or
// (tau, lambda) for the exponential tail fit to Forward scores. See
// scoring.GumbelSurvival and scoring.ExponentialSurvival.
type DistParams struct {
	Param1, Param2 float64
}

// Profile is a read-only profile-HMM: a linear chain of Nodes plus
// metadata used for identification, search-mode configuration, and score
// calibration.
type Profile struct {
	Name, Accession, Description string
	Alphabet                     string // symbol order; Residue(x) indexes into this

	// Length is the number of match positions (T in the matrix; Nodes has
	// Length+1 entries, Nodes[0] unused as a sentinel begin column).
	Length int
	Nodes  []Node

	Background Background
	Consensus  string

	IsLocal     bool
	IsMultihit  bool
	NumJumps    float64 // number of loop-back jumps the special states allow

	MSVDist, ViterbiDist, ForwardDist DistParams
}

// Residue returns the alphabet index of byte b, or -1 if b is not a
// recognized symbol. Used to convert a raw query byte sequence into the
// integer-coded residues Sequence stores.
func (p *Profile) Residue(b byte) int {
	for i := 0; i < len(p.Alphabet); i++ {
		if p.Alphabet[i] == b {
			return i
		}
	}
	return -1
}

// MatchScore returns the match emission log-odds score at profile
// position t (1-indexed, t in [1, Length]) for residue index a.
func (p *Profile) MatchScore(t, a int) float64 {
	return p.Nodes[t].Match[a]
}

// InsertScore returns the insert emission log-odds score at profile
// position t for residue index a.
func (p *Profile) InsertScore(t, a int) float64 {
	return p.Nodes[t].Insert[a]
}

// NullScore returns the nat-score of the background (null) model over a
// sequence of the given length: the null model is the one-state iid chain
// whose self-loop and move log-probabilities this profile already carries
// as Background.Special[StateN] (Plan7's own N-state doubles as the null
// model rather than this type carrying a second, separate p1 field).
func (p *Profile) NullScore(length int) float64 {
	n := p.Background.Special[StateN]
	return float64(length)*n.Loop + n.Move
}

// EntryScore returns the Begin->Match log-odds score, the same at every
// profile position: Plan7 local/unihit alignment makes entry uniform
// across positions rather than storing it per node, so it is derived from
// Length (log(2/(Length*(Length+1))), the standard Plan7 fragment-entry
// formula) rather than looked up.
func (p *Profile) EntryScore() float64 {
	return math.Log(2.0 / float64(p.Length*(p.Length+1)))
}
