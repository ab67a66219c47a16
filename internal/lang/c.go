package lang

import (
	"context"
	"path/filepath"
)

const cBinaryFilename = "prog"

type cTask struct {
	baseTask
}

func (c *cTask) Language() Language {
	return C
}

func (c *cTask) Version() string {
	return "gcc-4.6.3"
}

func (c *cTask) Compile(ctx context.Context, srcPath string) (Build, error) {
	exePath := filepath.Join(filepath.Dir(srcPath), cBinaryFilename)

	argv := []string{c.tc.Paths.Gcc, "-std=c99", "-Wall", "-Werror"}
	argv = append(argv, c.tc.CFlags...)
	argv = append(argv, "-o", cBinaryFilename, filepath.Base(srcPath), "-lm")

	return c.build(ctx, srcPath, exePath, argv)
}

func (c *cTask) RunCommand(b Build) []string {
	return c.command(c.flags(), b.ExecutablePath)
}
