// pkg/runner/sysproc_windows.go - Windows process attributes and termination.

//go:build windows

package runner

import (
	"os/exec"
	"strconv"
	"syscall"

	"github.com/windowsadmins/hush/pkg/logging"
)

// hideWindow keeps the uninstaller off the desktop and detaches it into its
// own process group so console control events do not leak between us and it.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// terminate force-kills the uninstaller and everything it spawned. msiexec
// and vendor bootstrappers routinely hand off to child processes, so the
// whole tree goes first; killing the direct child is the fallback.
func terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid

	kill := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid))
	kill.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	if err := kill.Run(); err != nil {
		logging.Debug("taskkill failed, killing process directly", "pid", pid, "error", err)
		_ = cmd.Process.Kill()
	}
}
