package lang

import (
	"context"
	"path/filepath"
)

// pythonFlags keep the interpreter away from site packages, environment variables
// and bytecode caches.
const pythonFlags = "-BESs"

type pythonTask struct {
	baseTask
	lang        Language
	interpreter string
	version     string
}

func (p *pythonTask) Language() Language {
	return p.lang
}

func (p *pythonTask) Version() string {
	return p.version
}

func (p *pythonTask) Compile(_ context.Context, srcPath string) (Build, error) {
	return interpreted(srcPath), nil
}

func (p *pythonTask) RunCommand(b Build) []string {
	return p.command(p.flags(), p.interpreter, pythonFlags, filepath.Base(b.ExecutablePath))
}
