package api

import (
	"strings"
)

// Output size constraints for previews sent over message queues
const (
	MaxPreviewHeight = 40
	MaxPreviewWidth  = 80
)

// TrimStrToRect keeps at most maxHeight lines of at most maxWidth bytes each.
func TrimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	var res strings.Builder
	for i, line := range lines {
		if i > 0 {
			res.WriteString("\n")
		}
		if len(line) > maxWidth {
			res.WriteString(line[:maxWidth] + "[...]")
		} else {
			res.WriteString(line)
		}
	}
	return res.String()
}

// Trimmed returns a copy of r with its output fields cut down to a preview.
func (r ExecRes) Trimmed(maxHeight int, maxWidth int) ExecRes {
	r.CompileInfo = TrimStrToRect(r.CompileInfo, maxHeight, maxWidth)
	r.Stdout = TrimStrToRect(r.Stdout, maxHeight, maxWidth)
	r.Stderr = TrimStrToRect(r.Stderr, maxHeight, maxWidth)
	return r
}
