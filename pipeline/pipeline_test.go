package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/bio/cloudsearch"
	"github.com/grailbio/bio/hmmprofile"
	"github.com/grailbio/bio/logspace"
	"github.com/grailbio/bio/scoring"
	"github.com/grailbio/bio/seed"
)

func toyProfile() *hmmprofile.Profile {
	trans := hmmprofile.Transitions{MM: 0, MI: -50, MD: -50, IM: -50, II: -50, DM: -50, DD: -50}
	node := func() hmmprofile.Node {
		return hmmprofile.Node{Match: []float64{0, 0}, Insert: []float64{-50, -50}, Trans: trans}
	}
	bg := hmmprofile.Background{
		Special: [5]hmmprofile.SpecialTransitions{
			hmmprofile.StateN: {Loop: -1, Move: 0},
			hmmprofile.StateC: {Loop: -1, Move: 0},
			hmmprofile.StateJ: {Loop: -1, Move: -1},
			hmmprofile.StateE: {Loop: logspace.NegInf, Move: 0},
			hmmprofile.StateB: {},
		},
	}
	return &hmmprofile.Profile{
		Name:        "toy",
		Alphabet:    "AC",
		Length:      4,
		Nodes:       []hmmprofile.Node{{}, node(), node(), node(), node()},
		Background:  bg,
		IsLocal:     true,
		ForwardDist: hmmprofile.DistParams{Param1: 0, Param2: 0.7},
	}
}

func toySequence() *hmmprofile.Sequence {
	return &hmmprofile.Sequence{Name: "q", Length: 4, Residues: []int{0, 0, 0, 0, 0}}
}

func toySeed() *seed.Trace {
	return &seed.Trace{Points: []seed.Point{
		{State: seed.StateB, Q: 0, T: 0},
		{State: seed.StateM, Q: 1, T: 1},
		{State: seed.StateM, Q: 2, T: 2},
		{State: seed.StateM, Q: 3, T: 3},
		{State: seed.StateM, Q: 4, T: 4},
		{State: seed.StateE, Q: 4, T: 4},
	}}
}

func TestRunProducesOKResult(t *testing.T) {
	w := Work{
		Profile: toyProfile(),
		Query:   toySequence(),
		Seed:    toySeed(),
		Cloud:   cloudsearch.Params{Alpha: 1000, Beta: 1000, Gamma: 10},
		RT1:     0.25,
		RT2:     0.1,
		ZDB:     1000,
	}
	res, err := Run(context.Background(), w)
	assert.NoError(t, err)
	assert.Equal(t, scoring.StatusOK, res.Status)
	assert.False(t, math.IsNaN(res.SeqScore))
	assert.True(t, res.CellsComputed > 0)
	assert.True(t, res.CellsComputed <= res.CellsFullMatrix)
}

func TestRunRejectsEmptySeed(t *testing.T) {
	w := Work{
		Profile: toyProfile(),
		Query:   toySequence(),
		Seed:    &seed.Trace{},
		Cloud:   cloudsearch.Params{Alpha: 1000, Beta: 1000, Gamma: 10},
	}
	_, err := Run(context.Background(), w)
	assert.Error(t, err)
}

func TestRunRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := Work{
		Profile: toyProfile(),
		Query:   toySequence(),
		Seed:    toySeed(),
		Cloud:   cloudsearch.Params{Alpha: 1000, Beta: 1000, Gamma: 10},
	}
	_, err := Run(ctx, w)
	assert.Error(t, err)
}

func TestRunBatchRunsAllTasks(t *testing.T) {
	work := make([]Work, 4)
	for i := range work {
		work[i] = Work{
			Profile: toyProfile(),
			Query:   toySequence(),
			Seed:    toySeed(),
			Cloud:   cloudsearch.Params{Alpha: 1000, Beta: 1000, Gamma: 10},
			RT1:     0.25,
			RT2:     0.1,
			ZDB:     1000,
		}
	}
	results, err := RunBatch(context.Background(), work)
	assert.NoError(t, err)
	assert.Len(t, results, 4)
	for _, res := range results {
		assert.Equal(t, scoring.StatusOK, res.Status)
	}
}
