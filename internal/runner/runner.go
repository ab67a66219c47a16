package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/programme-lv/coderun/internal/lang"
	"github.com/programme-lv/coderun/internal/sandbox"
	"github.com/programme-lv/coderun/internal/workspace"
)

const (
	DefaultRunAs          = "coderunner"
	DefaultGraceMargin    = 2 * time.Second
	DefaultCompileTimeout = 30 * time.Second
)

type Config struct {
	Toolchain lang.Toolchain
	// WorkRoot holds one directory per execution.
	WorkRoot string
	RunAs    string
	// GraceMargin is added to the CPU time limit to get the wall-clock deadline.
	GraceMargin    time.Duration
	CompileTimeout time.Duration
}

// Runner takes one submission at a time through compile and run. It keeps no
// state between calls, so one Runner may serve any number of goroutines.
type Runner struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Toolchain.Paths.Enforcer == "" {
		cfg.Toolchain.Paths = lang.DefaultPaths()
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = filepath.Join(os.TempDir(), "coderun")
	}
	if cfg.RunAs == "" {
		cfg.RunAs = DefaultRunAs
	}
	if cfg.GraceMargin <= 0 {
		cfg.GraceMargin = DefaultGraceMargin
	}
	if cfg.CompileTimeout <= 0 {
		cfg.CompileTimeout = DefaultCompileTimeout
	}
	return &Runner{cfg: cfg, log: log}
}

// Version returns the toolchain identifier of l.
func (r *Runner) Version(l lang.Language) (string, error) {
	task, err := lang.New(l, sandbox.NewContext(r.cfg.RunAs, sandbox.DefaultLimits()), r.cfg.Toolchain)
	if err != nil {
		return "", err
	}
	return task.Version(), nil
}

// Execute compiles and runs one submission.
//
// Problems caused by the submission (compile errors, crashes, time-outs) are
// reported in the Result. A returned error means the execution could not be
// carried out; *sandbox.EnvError marks a broken environment.
func (r *Runner) Execute(ctx context.Context, req Request) (*Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	log := r.log.With("id", req.ID, "lang", string(req.Language))
	start := time.Now()

	sb := sandbox.NewContext(r.cfg.RunAs, req.Limits)
	task, err := lang.New(req.Language, sb, r.cfg.Toolchain)
	if err != nil {
		return nil, err
	}

	box, err := workspace.New(r.cfg.WorkRoot, req.ID)
	if err != nil {
		log.Error("failed to create workspace", "err", err)
		return nil, sandbox.NewEnvError("create workspace", err)
	}
	defer func(box *workspace.Box) {
		if err := box.Close(); err != nil {
			log.Warn("failed to remove workspace", "path", box.Path(), "err", err)
		}
	}(box)

	srcPath, err := box.AddFile(req.Language.SourceFilename(), []byte(req.Source))
	if err != nil {
		return nil, sandbox.NewEnvError("write source", err)
	}

	res := &Result{
		Language:   req.Language,
		Version:    task.Version(),
		ExitStatus: NotRun,
	}

	log.Debug("compiling", "src", srcPath)
	compileCtx, cancel := context.WithTimeout(ctx, r.cfg.CompileTimeout)
	build, err := task.Compile(compileCtx, srcPath)
	cancel()
	if err != nil {
		log.Error("compilation could not be carried out", "err", err)
		return nil, err
	}
	if !build.Runnable() {
		log.Info("compilation failed")
		res.CompileInfo = build.Info
		res.Duration = time.Since(start)
		return res, nil
	}

	argv := task.RunCommand(build)
	limit := time.Duration(req.Limits.CPUTimeSec)*time.Second + r.cfg.GraceMargin
	log.Debug("running", "argv", argv, "deadline", limit)

	out, err := runProcess(ctx, box.Path(), argv, req.Stdin, limit)
	if err != nil {
		var startErr *errStart
		if errors.As(err, &startErr) {
			log.Error("failed to start enforcer", "path", argv[0], "err", err)
			return nil, sandbox.NewEnvError("start "+argv[0], startErr.err)
		}
		return nil, fmt.Errorf("failed to run submission: %w", err)
	}

	res.Stdout = task.FilterOutput(out.stdout)
	res.Stderr = out.stderr
	res.ExitStatus = out.exitCode
	res.TimedOut = out.timedOut
	res.Duration = time.Since(start)

	if res.TimedOut {
		log.Info("execution timed out", "deadline", limit)
	} else {
		log.Debug("execution finished", "exit", res.ExitStatus, "duration", res.Duration)
	}
	return res, nil
}
