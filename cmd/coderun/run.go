package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/programme-lv/coderun/api"
	"github.com/programme-lv/coderun/internal/lang"
	"github.com/programme-lv/coderun/internal/termgath"
)

var langByExt = map[string]lang.Language{
	".m":    lang.Matlab,
	".py":   lang.Python3,
	".java": lang.Java,
	".c":    lang.C,
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "execute a single source file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Usage: "matlab, python2, python3, java or c (guessed from the extension if omitted)"},
			&cli.IntFlag{Name: "cpu", Usage: "CPU time limit in seconds"},
			&cli.IntFlag{Name: "mem", Usage: "memory limit in megabytes"},
			&cli.IntFlag{Name: "disk", Usage: "output size limit in megabytes"},
			&cli.IntFlag{Name: "nproc", Usage: "process limit"},
			&cli.StringFlag{Name: "stdin", Usage: "file fed to the program's standard input"},
			&cli.BoolFlag{Name: "json", Usage: "print the full result as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("expected exactly one source file", 2)
			}
			path := cmd.Args().First()

			code, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read source: %w", err)
			}
			var stdin []byte
			if p := cmd.String("stdin"); p != "" {
				stdin, err = os.ReadFile(p)
				if err != nil {
					return fmt.Errorf("failed to read stdin file: %w", err)
				}
			}

			l := cmd.String("lang")
			if l == "" {
				guess, ok := langByExt[filepath.Ext(path)]
				if !ok {
					return cli.Exit("cannot guess language; pass --lang", 2)
				}
				l = string(guess)
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}
			res := a.exec.Execute(ctx, api.ExecReq{
				Lang:  l,
				Code:  string(code),
				Stdin: string(stdin),
				Limits: api.Limits{
					CpuSec: cmd.Int("cpu"),
					MemMB:  cmd.Int("mem"),
					DiskMB: cmd.Int("disk"),
					Nproc:  cmd.Int("nproc"),
				},
			})

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				termgath.New().Result(res)
			}

			switch res.Status {
			case api.InternalError, api.InvalidRequest:
				return cli.Exit("", 2)
			case api.Success:
				return nil
			}
			return cli.Exit("", 1)
		},
	}
}
