package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait keeps reading output after the enforcer exits
// while some descendant still holds the pipes open.
const waitDelay = time.Second

type processOutput struct {
	stdout   string
	stderr   string
	exitCode int
	timedOut bool
}

// errStart wraps failures to start the enforcer process at all.
type errStart struct {
	err error
}

func (e *errStart) Error() string {
	return "failed to start process: " + e.err.Error()
}

func (e *errStart) Unwrap() error {
	return e.err
}

// runProcess runs argv in dir and kills its whole process group once limit elapses.
func runProcess(ctx context.Context, dir string, argv []string, stdin string, limit time.Duration) (processOutput, error) {
	runCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return processOutput{}, &errStart{err: err}
	}
	waitErr := cmd.Wait()

	out := processOutput{
		stdout: stdout.String(),
		stderr: stderr.String(),
	}

	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		out.timedOut = true
		out.exitCode = NotRun
		return out, nil
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
			return out, waitErr
		}
	}
	out.exitCode = exitStatus(cmd.ProcessState)
	return out, nil
}
