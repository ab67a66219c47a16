package lang

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/programme-lv/coderun/internal/sandbox"
)

const NoEntryPointMsg = "no public class found, or multiple candidates"

// publicClassRe matches a public class declared at the top level. Nested classes
// are expected to be static and therefore do not match.
var publicClassRe = regexp.MustCompile(`(?m)^[ \t]*public\s+(?:(?:final|abstract)\s+)*class\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

type javaTask struct {
	baseTask
}

func (j *javaTask) Language() Language {
	return Java
}

func (j *javaTask) Version() string {
	return "Java 1.6"
}

// PublicClass returns the name of the single public top-level class in src.
// ok is false if there is none or more than one.
func PublicClass(src string) (name string, ok bool) {
	matches := publicClassRe.FindAllStringSubmatch(src, -1)
	if len(matches) != 1 {
		return "", false
	}
	return matches[0][1], true
}

func (j *javaTask) Compile(ctx context.Context, srcPath string) (Build, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return Build{}, sandbox.NewEnvError("read java source", err)
	}

	class, ok := PublicClass(string(src))
	if !ok {
		return Build{SourcePath: srcPath, Info: NoEntryPointMsg}, nil
	}

	dir := filepath.Dir(srcPath)
	renamed := filepath.Join(dir, class+".java")
	if renamed != srcPath {
		if err := os.Rename(srcPath, renamed); err != nil {
			return Build{}, sandbox.NewEnvError("rename java source", err)
		}
	}

	argv := []string{j.tc.Paths.Javac, filepath.Base(renamed)}
	return j.build(ctx, renamed, filepath.Join(dir, class+".class"), argv)
}

func (j *javaTask) RunCommand(b Build) []string {
	class := strings.TrimSuffix(filepath.Base(b.ExecutablePath), ".class")
	return j.command(j.flags(), j.tc.Paths.Java, "-Xrs", "-Xss8m", j.heapArg(), class)
}

func (j *javaTask) heapArg() string {
	mb := j.sb.Limits().MemoryMB
	if mb == 0 {
		return ""
	}
	if mb < 16 {
		mb = 16
	}
	return fmt.Sprintf("-Xmx%dm", mb)
}
