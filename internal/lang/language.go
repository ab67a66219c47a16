package lang

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

type Language string

const (
	Matlab  Language = "matlab"
	Python2 Language = "python2"
	Python3 Language = "python3"
	Java    Language = "java"
	C       Language = "c"
)

var supported = mapset.NewSet(Matlab, Python2, Python3, Java, C)

// Supported returns the set of languages New can build a task for.
func Supported() mapset.Set[Language] {
	return supported.Clone()
}

func Parse(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !supported.Contains(l) {
		return "", fmt.Errorf("unsupported language %q", s)
	}
	return l, nil
}

// SourceFilename is the name the submitted code is written under before compiling.
// Java renames it again once the public class is known.
func (l Language) SourceFilename() string {
	switch l {
	case Matlab:
		return "prog.m"
	case Python2, Python3:
		return "prog.py"
	case Java:
		return "prog.java"
	case C:
		return "prog.c"
	}
	return "prog"
}
