package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/programme-lv/coderun/api"
	"github.com/programme-lv/coderun/internal/lang"
	"github.com/programme-lv/coderun/internal/runner"
	"github.com/programme-lv/coderun/internal/sandbox"
)

type Runner interface {
	Execute(ctx context.Context, req runner.Request) (*runner.Result, error)
}

// Executor turns wire requests into runner calls. It bounds how many executions
// run at once and keeps track of the ones in progress.
type Executor struct {
	runner   Runner
	defaults sandbox.Limits
	sem      chan struct{}
	inFlight *xsync.MapOf[string, time.Time]
	log      *slog.Logger
}

func NewExecutor(r Runner, maxParallel int, defaults sandbox.Limits, log *slog.Logger) *Executor {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		runner:   r,
		defaults: defaults,
		sem:      make(chan struct{}, maxParallel),
		inFlight: xsync.NewMapOf[string, time.Time](),
		log:      log,
	}
}

// InFlight is the number of executions currently waiting or running.
func (e *Executor) InFlight() int {
	return e.inFlight.Size()
}

func (e *Executor) Execute(ctx context.Context, req api.ExecReq) (res api.ExecRes) {
	if req.Uuid == "" {
		req.Uuid = uuid.NewString()
	}
	start := time.Now()
	res = api.ExecRes{
		Uuid:       req.Uuid,
		Lang:       req.Lang,
		ExitStatus: runner.NotRun,
		StartTime:  start.Format(time.RFC3339),
	}
	defer func() {
		finish := time.Now()
		res.FinishTime = finish.Format(time.RFC3339)
		res.TotalTimeMs = finish.Sub(start).Milliseconds()
	}()

	id, err := uuid.Parse(req.Uuid)
	if err != nil {
		return fail(res, api.InvalidRequest, fmt.Errorf("invalid uuid %q: %w", req.Uuid, err))
	}

	l, err := lang.Parse(req.Lang)
	if err != nil {
		return fail(res, api.InvalidRequest, err)
	}
	limits := e.limits(req.Limits)
	if err := limits.Validate(); err != nil {
		return fail(res, api.InvalidRequest, err)
	}

	if _, loaded := e.inFlight.LoadOrStore(id.String(), start); loaded {
		return fail(res, api.InvalidRequest, errDuplicateUuid)
	}
	defer e.inFlight.Delete(id.String())
	e.log.Debug("execution accepted", "uuid", req.Uuid, "lang", l, "in_flight", e.InFlight())

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return fail(res, api.InternalError, ctx.Err())
	}
	defer func() { <-e.sem }()

	out, err := e.runner.Execute(ctx, runner.Request{
		ID:       id.String(),
		Language: l,
		Source:   req.Code,
		Stdin:    req.Stdin,
		Limits:   limits,
	})
	if err != nil {
		if sandbox.IsEnvError(err) {
			e.log.Error("execution environment is broken", "uuid", req.Uuid, "err", err)
		} else {
			e.log.Warn("execution failed", "uuid", req.Uuid, "err", err)
		}
		return fail(res, api.InternalError, err)
	}

	res.Status = statusOf(out)
	res.Version = out.Version
	res.CompileInfo = out.CompileInfo
	res.Stdout = out.Stdout
	res.Stderr = out.Stderr
	res.ExitStatus = out.ExitStatus
	res.TimedOut = out.TimedOut
	return res
}

func (e *Executor) limits(l api.Limits) sandbox.Limits {
	res := e.defaults
	if l.CpuSec != 0 {
		res.CPUTimeSec = l.CpuSec
	}
	if l.MemMB != 0 {
		res.MemoryMB = l.MemMB
	}
	if l.DiskMB != 0 {
		res.DiskMB = l.DiskMB
	}
	if l.Nproc != 0 {
		res.MaxProcs = l.Nproc
	}
	return res
}

func statusOf(r *runner.Result) api.ExecStatus {
	switch {
	case !r.Compiled():
		return api.CompileError
	case r.TimedOut:
		return api.TimedOut
	case r.ExitStatus != 0:
		return api.RuntimeError
	}
	return api.Success
}

func fail(res api.ExecRes, status api.ExecStatus, err error) api.ExecRes {
	msg := err.Error()
	res.Status = status
	res.ErrorMessage = &msg
	return res
}
