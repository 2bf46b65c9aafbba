package main

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"

	"github.com/grailbio/bio/cloudsearch"
	"github.com/grailbio/bio/edgebound"
	"github.com/grailbio/bio/internal/debugviz"
	"github.com/grailbio/bio/seed"
	"github.com/grailbio/bio/spmatrix"
)

func newCmdDumpCloud() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "dump-cloud",
		Short:    "Run only the cloud search and print an ASCII heatmap of the surviving cells (requires -tags debug for real rendering)",
		ArgsName: "profile.gob sequence.gob seed.gob",
	}
	alpha := cmd.Flags.Float64("alpha", 12.0, "Per-antidiagonal x-drop, nats")
	beta := cmd.Flags.Float64("beta", 16.0, "Global x-drop, nats")
	gamma := cmd.Flags.Int("gamma", 5, "Antidiagonals swept before pruning starts")

	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("dump-cloud takes profile.gob sequence.gob seed.gob, but found %v", argv)
		}
		ctx := vcontext.Background()
		profile, err := loadProfile(ctx, argv[0])
		if err != nil {
			return err
		}
		query, err := loadSequence(ctx, argv[1])
		if err != nil {
			return err
		}
		trace, err := loadSeed(ctx, argv[2])
		if err != nil {
			return err
		}

		qBeg, tBeg, qEnd, tEnd, ok := trace.Endpoints()
		if !ok {
			return fmt.Errorf("dump-cloud: seed trace has no usable begin/end")
		}
		qBeg, tBeg = seed.Clamp(qBeg, tBeg, query.Length, profile.Length, "begin")
		qEnd, tEnd = seed.Clamp(qEnd, tEnd, query.Length, profile.Length, "end")

		in := cloudsearch.Input{
			Query: query, Profile: profile,
			Q: query.Length, T: profile.Length,
			QBeg: qBeg, TBeg: tBeg, QEnd: qEnd, TEnd: tEnd,
			Params: cloudsearch.Params{Alpha: *alpha, Beta: *beta, Gamma: *gamma},
		}
		fwd := cloudsearch.Sweep(cloudsearch.Forward, in)
		bck := cloudsearch.Sweep(cloudsearch.Backward, in)
		union := edgebound.Union(fwd, bck)
		outer := union.Pad()

		m, err := spmatrix.Shape(union.ReorientDiagToRow(), outer.ReorientDiagToRow())
		if err != nil {
			return err
		}

		fmt.Fprintf(env.Stdout, "cells: %d of %d (%.1f%% pruned)\n",
			union.CountCells(), (query.Length+1)*(profile.Length+1),
			100*(1-float64(union.CountCells())/float64((query.Length+1)*(profile.Length+1))))
		fmt.Fprint(env.Stdout, debugviz.RenderHeatmap(m, spmatrix.Match))
		return nil
	})
	return cmd
}
