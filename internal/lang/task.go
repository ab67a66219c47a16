package lang

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/programme-lv/coderun/internal/runguard"
	"github.com/programme-lv/coderun/internal/sandbox"
)

// Task knows how to build and run programs written in one language.
//
// Compile must be called first. RunCommand may then be called any number of times,
// but only with a Build for which Runnable reports true.
type Task interface {
	Language() Language
	Version() string
	// Compile turns the source at srcPath into something the enforcer can start.
	// A bad submission is reported through Build.Info; a non-nil error always
	// means the environment is broken.
	Compile(ctx context.Context, srcPath string) (Build, error)
	RunCommand(b Build) []string
	FilterOutput(raw string) string
}

// Build is the outcome of compiling. Exactly one of ExecutablePath and Info is set.
type Build struct {
	// SourcePath may differ from the path given to Compile if the source was renamed.
	SourcePath     string
	ExecutablePath string
	// Info holds compiler diagnostics. Empty means the source compiled cleanly.
	Info string
}

func (b Build) Runnable() bool {
	return b.ExecutablePath != ""
}

func New(l Language, sb *sandbox.Context, tc Toolchain) (Task, error) {
	if sb == nil {
		return nil, errors.New("sandbox context is required")
	}
	if tc.Compiler == nil {
		tc.Compiler = ExecCompiler{}
	}
	base := baseTask{sb: sb, tc: tc}

	switch l {
	case Matlab:
		return &matlabTask{baseTask: base}, nil
	case Python2:
		return &pythonTask{baseTask: base, lang: Python2, interpreter: tc.Paths.Python2, version: "Python 2.7"}, nil
	case Python3:
		return &pythonTask{baseTask: base, lang: Python3, interpreter: tc.Paths.Python3, version: "Python 3.2"}, nil
	case Java:
		return &javaTask{baseTask: base}, nil
	case C:
		return &cTask{baseTask: base}, nil
	}
	return nil, fmt.Errorf("unsupported language %q", l)
}

type baseTask struct {
	sb *sandbox.Context
	tc Toolchain
}

func (b *baseTask) FilterOutput(raw string) string {
	return raw
}

func (b *baseTask) flags() runguard.Flags {
	return runguard.FlagsFor(b.sb)
}

func (b *baseTask) command(f runguard.Flags, target ...string) []string {
	return runguard.Command(b.tc.Paths.Enforcer, f, target...)
}

// interpreted is the Build of a language that needs no build step.
func interpreted(srcPath string) Build {
	return Build{
		SourcePath:     srcPath,
		ExecutablePath: srcPath,
	}
}

// build runs a compiler in the directory of srcPath and sets exePath on success.
func (b *baseTask) build(ctx context.Context, srcPath, exePath string, argv []string) (Build, error) {
	exitCode, diag, err := b.tc.Compiler.Compile(ctx, filepath.Dir(srcPath), argv)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Build{SourcePath: srcPath, Info: "compilation timed out"}, nil
	}
	if err != nil {
		return Build{}, sandbox.NewEnvError("run "+argv[0], err)
	}
	if exitCode != 0 {
		if strings.TrimSpace(diag) == "" {
			diag = fmt.Sprintf("compilation failed with exit code %d", exitCode)
		}
		return Build{SourcePath: srcPath, Info: diag}, nil
	}
	return Build{SourcePath: srcPath, ExecutablePath: exePath}, nil
}
