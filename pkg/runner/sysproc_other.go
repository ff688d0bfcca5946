// pkg/runner/sysproc_other.go - process control stubs for non-Windows builds.

//go:build !windows

package runner

import "os/exec"

func hideWindow(cmd *exec.Cmd) {}

func terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
