//go:build !unix

package runner

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {}

func exitStatus(state *os.ProcessState) int {
	if state == nil {
		return NotRun
	}
	return state.ExitCode()
}
