package lang

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Paths locates the enforcer and every interpreter or compiler a task may invoke.
type Paths struct {
	Enforcer string
	Matlab   string
	Python2  string
	Python3  string
	Java     string
	Javac    string
	Gcc      string
}

func DefaultPaths() Paths {
	return Paths{
		Enforcer: "/usr/local/bin/runguard",
		Matlab:   "/usr/local/bin/matlab",
		Python2:  "/usr/bin/python2",
		Python3:  "/usr/bin/python3",
		Java:     "/usr/bin/java",
		Javac:    "/usr/bin/javac",
		Gcc:      "/usr/bin/gcc",
	}
}

// Compiler runs a build tool in dir and reports its exit code and diagnostics.
// err is set only when the tool could not be run at all.
type Compiler interface {
	Compile(ctx context.Context, dir string, argv []string) (exitCode int, diag string, err error)
}

type Toolchain struct {
	Paths    Paths
	Compiler Compiler
	// CFlags are appended to the gcc command line before the output flag.
	CFlags []string
}

// ExecCompiler runs build tools as plain subprocesses with stdout and stderr
// captured together in memory.
type ExecCompiler struct{}

func (ExecCompiler) Compile(ctx context.Context, dir string, argv []string) (int, string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 0, "", err
		}
		return exitErr.ExitCode(), out.String(), nil
	}
	return 0, out.String(), nil
}
