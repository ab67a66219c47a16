package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/programme-lv/coderun/internal/environment"
	"github.com/programme-lv/coderun/internal/runner"
	"github.com/programme-lv/coderun/internal/sandbox"
	"github.com/programme-lv/coderun/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "coderun",
		Usage: "compile and run untrusted programs under runguard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a TOML config file (default $CODERUN_CONFIG)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log at debug level",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := slog.LevelInfo
			if cmd.Bool("debug") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.TimeOnly,
			})))
			return ctx, nil
		},
		Commands: []*cli.Command{
			runCommand(),
			behaveCommand(),
			serveCommand(),
			versionCommand(),
		},
	}
}

// app holds what every subcommand builds from the configuration.
type app struct {
	cfg    *environment.Config
	runner *runner.Runner
	exec   *service.Executor
}

func setup(cmd *cli.Command) (*app, error) {
	cfg, err := environment.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureWorkRoot(); err != nil {
		return nil, fmt.Errorf("failed to create work root: %w", err)
	}
	slog.Debug("configuration loaded",
		"work_root", cfg.WorkRoot,
		"enforcer", cfg.Paths.Enforcer,
		"run_as", cfg.RunAs,
		"max_parallel", cfg.MaxParallel)

	r := runner.New(cfg.RunnerConfig(), slog.Default())
	return &app{
		cfg:    cfg,
		runner: r,
		exec:   service.NewExecutor(r, cfg.MaxParallel, sandbox.DefaultLimits(), slog.Default()),
	}, nil
}
