package main

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"

	"github.com/grailbio/bio/hmmprofile"
)

func newCmdExplain() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "explain",
		Short:    "Resolve a profile name against a database, tolerating a small typo",
		ArgsName: "database.gob name",
	}
	maxDist := cmd.Flags.Int("max-distance", 3, "Largest edit distance explain is willing to guess across")

	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("explain takes database.gob name, but found %v", argv)
		}
		ctx := vcontext.Background()
		var candidates []*hmmprofile.Profile
		if err := readGob(ctx, argv[0], &candidates); err != nil {
			return err
		}

		p, err := hmmprofile.ResolveName(candidates, argv[1], *maxDist)
		if err != nil {
			return err
		}
		if p.Name != argv[1] {
			fmt.Fprintf(env.Stdout, "did you mean %q (accession %s)? %q did not match exactly\n", p.Name, p.Accession, argv[1])
		}
		fmt.Fprintf(env.Stdout, "%s\t%s\t%s\n", p.Name, p.Accession, p.Description)
		return nil
	})
	return cmd
}
