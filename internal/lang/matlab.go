package lang

import (
	"context"
	"path/filepath"
	"strings"
)

// matlabBannerEnd is the last line of the banner Matlab prints on every start.
const matlabBannerEnd = "For product information, visit www.mathworks.com"

type matlabTask struct {
	baseTask
}

func (m *matlabTask) Language() Language {
	return Matlab
}

func (m *matlabTask) Version() string {
	return "Matlab R2012a"
}

func (m *matlabTask) Compile(_ context.Context, srcPath string) (Build, error) {
	return interpreted(srcPath), nil
}

func (m *matlabTask) RunCommand(b Build) []string {
	f := m.flags()
	// Matlab refuses to start under any memsize limit. The cause is unknown.
	f.MemoryKB = 0

	script := strings.TrimSuffix(filepath.Base(b.ExecutablePath), ".m")
	return m.command(f, m.tc.Paths.Matlab, "-nojvm", "-nodesktop", "-nosplash", "-r", script)
}

// FilterOutput drops the startup banner and surrounding blank lines.
func (m *matlabTask) FilterOutput(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if strings.Contains(line, matlabBannerEnd) {
			lines = lines[i+1:]
			break
		}
	}

	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start == end {
		return "\n"
	}
	return strings.Join(lines[start:end], "\n") + "\n"
}
