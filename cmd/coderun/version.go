package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/programme-lv/coderun/internal/lang"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "list the supported languages and their toolchains",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := setup(cmd)
			if err != nil {
				return err
			}
			langs := lang.Supported().ToSlice()
			slices.Sort(langs)
			for _, l := range langs {
				v, err := a.runner.Version(l)
				if err != nil {
					return err
				}
				fmt.Printf("%-8s %s\n", l, v)
			}
			return nil
		},
	}
}
