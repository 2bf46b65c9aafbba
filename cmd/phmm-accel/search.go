package main

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"

	"github.com/grailbio/bio/cloudsearch"
	"github.com/grailbio/bio/pipeline"
)

func newCmdSearch() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "search",
		Short:    "Run the accelerator on one profile/sequence/seed triple and print the result as TSV",
		ArgsName: "profile.gob sequence.gob seed.gob",
	}
	alpha := cmd.Flags.Float64("alpha", 12.0, "Per-antidiagonal x-drop, nats")
	beta := cmd.Flags.Float64("beta", 16.0, "Global x-drop, nats")
	gamma := cmd.Flags.Int("gamma", 5, "Antidiagonals swept before pruning starts")
	rt1 := cmd.Flags.Float64("rt1", 0.25, "Domain-detection inside-domain occupancy threshold")
	rt2 := cmd.Flags.Float64("rt2", 0.1, "Domain-detection boundary occupancy threshold")
	zdb := cmd.Flags.Float64("zdb", 1.0, "Effective database size for e-value conversion")

	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("search takes profile.gob sequence.gob seed.gob, but found %v", argv)
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

		res, err := pipeline.Run(ctx, pipeline.Work{
			Profile: profile,
			Query:   query,
			Seed:    trace,
			Cloud:   cloudsearch.Params{Alpha: *alpha, Beta: *beta, Gamma: *gamma},
			RT1:     *rt1,
			RT2:     *rt2,
			ZDB:     *zdb,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(env.Stdout, "query\ttarget\tstatus\tpre_sc\tseq_sc\tbias\tpval\teval\tdom_beg\tdom_end\tcells\tcells_full\n")
		fmt.Fprintf(env.Stdout, "%s\t%s\t%d\t%.3f\t%.3f\t%.3f\t%.3e\t%.3e\t%d\t%d\t%d\t%d\n",
			res.QueryName, res.TargetName, res.Status,
			res.PreScore, res.SeqScore, res.Bias, res.PValue, res.EValue,
			res.BestDomain.Beg, res.BestDomain.End, res.CellsComputed, res.CellsFullMatrix)
		return nil
	})
	return cmd
}
