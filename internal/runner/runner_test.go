package runner_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/coderun/internal/lang"
	"github.com/programme-lv/coderun/internal/runner"
	"github.com/programme-lv/coderun/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEnforcer drops every leading --flag and executes the rest of the command line.
const stubEnforcer = `#!/bin/sh
while [ $# -gt 0 ]; do
	case "$1" in
		--*) shift ;;
		*) break ;;
	esac
done
exec "$@"
`

var e2eLimits = sandbox.Limits{CPUTimeSec: 5, MemoryMB: 100000, DiskMB: 10, MaxProcs: 10}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

type fixture struct {
	bin      string
	workRoot string
	paths    lang.Paths
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bin := t.TempDir()
	paths := lang.DefaultPaths()
	paths.Enforcer = writeScript(t, bin, "runguard", stubEnforcer)
	return &fixture{bin: bin, workRoot: t.TempDir(), paths: paths}
}

func (f *fixture) runner(comp lang.Compiler, grace time.Duration) *runner.Runner {
	return runner.New(runner.Config{
		Toolchain:   lang.Toolchain{Paths: f.paths, Compiler: comp},
		WorkRoot:    f.workRoot,
		GraceMargin: grace,
	}, nil)
}

type countingCompiler struct {
	calls    int
	exitCode int
	diag     string
}

func (c *countingCompiler) Compile(ctx context.Context, dir string, argv []string) (int, string, error) {
	c.calls++
	return c.exitCode, c.diag, nil
}

func TestPython3EndToEnd(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not available")
	}
	f := newFixture(t)
	f.paths.Python3 = python

	res, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		Language: lang.Python3,
		Source:   "print(2+2)\n",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)
	assert.Equal(t, "", res.CompileInfo)
	assert.Equal(t, "4\n", res.Stdout)
	assert.Equal(t, 0, res.ExitStatus)
	assert.False(t, res.TimedOut)
}

func TestInterpreterReceivesArgsAndStdin(t *testing.T) {
	f := newFixture(t)
	f.paths.Python3 = writeScript(t, f.bin, "python3", "#!/bin/sh\necho \"args:$*\"\ncat\necho oops >&2\n")

	res, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		ID:       "stdin-test",
		Language: lang.Python3,
		Source:   "ignored",
		Stdin:    "hello\n",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)
	assert.Equal(t, "args:-BESs prog.py\nhello\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, 0, res.ExitStatus)
	assert.Equal(t, "Python 3.2", res.Version)
}

func TestNonZeroExitStatusIsReported(t *testing.T) {
	f := newFixture(t)
	f.paths.Python2 = writeScript(t, f.bin, "python2", "#!/bin/sh\necho partial\nexit 3\n")

	res, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		Language: lang.Python2,
		Source:   "print 1",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitStatus)
	assert.Equal(t, "partial\n", res.Stdout)
	assert.False(t, res.TimedOut)
}

func TestInfiniteLoopTimesOut(t *testing.T) {
	f := newFixture(t)
	f.paths.Python3 = writeScript(t, f.bin, "python3", "#!/bin/sh\necho started\nexec sleep 30\n")

	start := time.Now()
	res, err := f.runner(nil, 200*time.Millisecond).Execute(context.Background(), runner.Request{
		Language: lang.Python3,
		Source:   "while True: pass\n",
		Limits:   sandbox.Limits{CPUTimeSec: 1, MemoryMB: 100, DiskMB: 10, MaxProcs: 10},
	})
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Equal(t, runner.NotRun, res.ExitStatus)
	assert.Equal(t, "started\n", res.Stdout)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestCompileFailureNeverRuns(t *testing.T) {
	f := newFixture(t)
	marker := filepath.Join(f.bin, "ran")
	f.paths.Enforcer = writeScript(t, f.bin, "runguard-marker", fmt.Sprintf("#!/bin/sh\ntouch %s\n", marker))
	comp := &countingCompiler{exitCode: 1, diag: "prog.c:2:10: error: expected ';' before '}' token"}

	res, err := f.runner(comp, 0).Execute(context.Background(), runner.Request{
		Language: lang.C,
		Source:   "int main(void) {\n\treturn 0\n}\n",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, comp.calls)
	assert.Contains(t, res.CompileInfo, "expected ';'")
	assert.False(t, res.Compiled())
	assert.Empty(t, res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.Equal(t, runner.NotRun, res.ExitStatus)
	assert.NoFileExists(t, marker)
}

func TestJavaWithoutPublicClassNeverCompiles(t *testing.T) {
	f := newFixture(t)
	comp := &countingCompiler{}

	res, err := f.runner(comp, 0).Execute(context.Background(), runner.Request{
		Language: lang.Java,
		Source:   "class Main {}",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)
	assert.Equal(t, lang.NoEntryPointMsg, res.CompileInfo)
	assert.Equal(t, 0, comp.calls)
}

func TestMissingEnforcerIsEnvError(t *testing.T) {
	f := newFixture(t)
	f.paths.Enforcer = filepath.Join(f.bin, "does-not-exist")

	_, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		Language: lang.Python3,
		Source:   "print(1)",
		Limits:   e2eLimits,
	})
	require.Error(t, err)
	assert.True(t, sandbox.IsEnvError(err))
}

func TestMatlabOutputIsFiltered(t *testing.T) {
	f := newFixture(t)
	f.paths.Matlab = writeScript(t, f.bin, "matlab", `#!/bin/sh
echo "                            < M A T L A B (R) >"
echo "  For product information, visit www.mathworks.com."
echo ""
echo "     4"
echo ""
`)

	res, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		Language: lang.Matlab,
		Source:   "disp(4)",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)
	assert.Equal(t, "     4\n", res.Stdout)
}

func TestWorkspaceIsRemoved(t *testing.T) {
	f := newFixture(t)
	f.paths.Python3 = writeScript(t, f.bin, "python3", "#!/bin/sh\nexit 0\n")

	_, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		Language: lang.Python3,
		Source:   "pass",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(f.workRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnsupportedLanguage(t *testing.T) {
	f := newFixture(t)
	_, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		Language: lang.Language("cobol"),
		Limits:   e2eLimits,
	})
	require.Error(t, err)
	assert.False(t, sandbox.IsEnvError(err))
}

func TestConcurrentExecutionsAreIsolated(t *testing.T) {
	f := newFixture(t)
	f.paths.Python3 = writeScript(t, f.bin, "python3", "#!/bin/sh\ncat \"$2\"\n")
	r := f.runner(nil, 0)

	var wg sync.WaitGroup
	results := make([]*runner.Result, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Execute(context.Background(), runner.Request{
				Language: lang.Python3,
				Source:   fmt.Sprintf("source-%d", i),
				Limits:   e2eLimits,
			})
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, fmt.Sprintf("source-%d", i), results[i].Stdout)
	}
}

func TestRealGccMissingSemicolon(t *testing.T) {
	gcc, err := exec.LookPath("gcc")
	if err != nil {
		t.Skip("gcc not available")
	}
	f := newFixture(t)
	f.paths.Gcc = gcc

	res, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		Language: lang.C,
		Source:   "#include <stdio.h>\nint main(void) {\n\tprintf(\"hi\\n\")\n\treturn 0;\n}\n",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.CompileInfo)
	assert.Equal(t, runner.NotRun, res.ExitStatus)
	assert.Empty(t, res.Stdout)
}

func TestRealGccRuns(t *testing.T) {
	gcc, err := exec.LookPath("gcc")
	if err != nil {
		t.Skip("gcc not available")
	}
	f := newFixture(t)
	f.paths.Gcc = gcc

	res, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		Language: lang.C,
		Source:   "#include <stdio.h>\nint main(void) {\n\tprintf(\"%d\\n\", 2 + 2);\n\treturn 0;\n}\n",
		Limits:   e2eLimits,
	})
	require.NoError(t, err)
	require.Equal(t, "", res.CompileInfo)
	assert.Equal(t, "4\n", res.Stdout)
	assert.Equal(t, 0, res.ExitStatus)
}

func TestVersion(t *testing.T) {
	r := runner.New(runner.Config{}, nil)
	v, err := r.Version(lang.C)
	require.NoError(t, err)
	assert.Equal(t, "gcc-4.6.3", v)
}

func TestIdCannotLeaveWorkRoot(t *testing.T) {
	f := newFixture(t)
	f.workRoot = filepath.Join(t.TempDir(), "work")
	ran := filepath.Join(t.TempDir(), "ran")
	f.paths.Python3 = writeScript(t, f.bin, "python3", "#!/bin/sh\ntouch "+ran+"\n")

	_, err := f.runner(nil, 0).Execute(context.Background(), runner.Request{
		ID:       "../escaped",
		Language: lang.Python3,
		Source:   "print(1)",
		Limits:   e2eLimits,
	})
	require.Error(t, err)
	assert.True(t, sandbox.IsEnvError(err))
	assert.NoDirExists(t, filepath.Join(filepath.Dir(f.workRoot), "escaped"))
	assert.NoFileExists(t, ran)
}
