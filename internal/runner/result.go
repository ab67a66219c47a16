package runner

import (
	"time"

	"github.com/programme-lv/coderun/internal/lang"
	"github.com/programme-lv/coderun/internal/sandbox"
)

// NotRun is the exit status of a program that never ran to completion:
// it failed to compile or was killed at the deadline.
const NotRun = -1

type Request struct {
	// ID names the execution in logs and its workspace directory.
	// A random one is assigned when empty.
	ID       string
	Language lang.Language
	Source   string
	Stdin    string
	Limits   sandbox.Limits
}

type Result struct {
	Language lang.Language
	Version  string

	// CompileInfo is empty when the source compiled cleanly or needed no compiling.
	CompileInfo string
	Stdout      string
	Stderr      string
	ExitStatus  int
	TimedOut    bool

	Duration time.Duration
}

func (r *Result) Compiled() bool {
	return r.CompileInfo == ""
}
