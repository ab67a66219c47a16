package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/programme-lv/coderun/api"
	"github.com/programme-lv/coderun/internal/behave"
	"github.com/programme-lv/coderun/internal/termgath"
)

func behaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "behave",
		Usage:     "run the scenarios of a behaviour file and compare the results",
		ArgsUsage: "FILE.toml",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("expected exactly one behaviour file", 2)
			}
			cases, err := behave.Parse(cmd.Args().First())
			if err != nil {
				return err
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}

			results := make([]api.ExecRes, len(cases))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(a.cfg.MaxParallel)
			for i, c := range cases {
				g.Go(func() error {
					results[i] = a.exec.Execute(gctx, c.Request)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := termgath.New()
			failed := 0
			for i, c := range cases {
				err := c.Check(results[i])
				if err != nil {
					failed++
				}
				out.Verdict(c.Name, results[i], err)
			}
			out.Summary(len(cases)-failed, len(cases))
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d scenarios failed", failed), 1)
			}
			return nil
		},
	}
}
