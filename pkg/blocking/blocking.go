// pkg/blocking/blocking.go - running-process checks that veto an uninstall.

package blocking

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/windowsadmins/hush/pkg/inventory"
	"github.com/windowsadmins/hush/pkg/logging"
)

// IsAppRunning reports whether an application is currently running. Names
// are matched the way Munki matches blocking applications: an absolute path
// is compared against each process's executable path, a name ending in .exe
// against the process name, and a bare name against the process name with
// and without the .exe suffix.
func IsAppRunning(appName string) bool {
	logging.Debug("Checking if application is running", "app", appName)

	procs, err := process.Processes()
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return false
	}

	want := strings.ToLower(appName)

	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil {
			continue
		}
		have := strings.ToLower(name)

		switch {
		case filepath.IsAbs(appName):
			exe, err := proc.Exe()
			if err != nil {
				continue
			}
			if strings.EqualFold(exe, appName) {
				logging.Debug("Found running app by path", "app", appName, "pid", proc.Pid)
				return true
			}
		case strings.HasSuffix(want, ".exe"):
			if have == want {
				logging.Debug("Found running app by exe name", "app", appName, "pid", proc.Pid)
				return true
			}
		default:
			if have == want || have == want+".exe" {
				logging.Debug("Found running app by name", "app", appName, "pid", proc.Pid)
				return true
			}
		}
	}

	logging.Debug("Application not found running", "app", appName)
	return false
}

// RunningUnder returns the names of processes whose executable lives under
// dir, deduplicated and sorted. An empty dir matches nothing.
func RunningUnder(dir string) []string {
	if dir == "" {
		return nil
	}

	procs, err := process.Processes()
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return nil
	}

	prefix := strings.ToLower(filepath.Clean(dir)) + string(filepath.Separator)
	seen := make(map[string]bool)

	for _, proc := range procs {
		exe, err := proc.Exe()
		if err != nil || exe == "" {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(filepath.Clean(exe)), prefix) {
			continue
		}
		name, err := proc.Name()
		if err != nil || name == "" {
			name = filepath.Base(exe)
		}
		seen[name] = true
	}

	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunningBlockers returns the processes that should stop ent from being
// uninstalled right now: anything still running out of its install location.
// Files held open by a live process make uninstallers fail or, worse, leave
// half-removed installs behind.
func RunningBlockers(ent inventory.Entry) []string {
	blockers := RunningUnder(ent.InstallLocation)
	if len(blockers) > 0 {
		logging.Info("Blocking processes are running", "name", ent.Name, "processes", strings.Join(blockers, ", "))
	}
	return blockers
}
