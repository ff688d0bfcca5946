// pkg/inventory/registry_windows.go - walks the registry Uninstall hives.

//go:build windows

package inventory

import (
	"golang.org/x/sys/windows/registry"

	"github.com/windowsadmins/hush/pkg/logging"
)

// uninstallRoots covers 64-bit and 32-bit machine installs plus per-user
// installs. A hive that does not exist on this machine is skipped.
var uninstallRoots = []struct {
	hive   registry.Key
	prefix string
	path   string
}{
	{registry.LOCAL_MACHINE, "HKLM", `Software\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.LOCAL_MACHINE, "HKLM", `Software\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.CURRENT_USER, "HKCU", `Software\Microsoft\Windows\CurrentVersion\Uninstall`},
}

// Collect reads every install record from the Uninstall hives. Entries hidden
// behind SystemComponent, and entries with nothing hush could act on, are
// dropped.
func Collect() ([]Entry, error) {
	var entries []Entry

	for _, root := range uninstallRoots {
		key, err := registry.OpenKey(root.hive, root.path, registry.READ)
		if err != nil {
			continue
		}

		names, err := key.ReadSubKeyNames(-1)
		if err != nil {
			logging.Warn("Failed to enumerate uninstall keys", "path", root.path, "error", err)
			key.Close()
			continue
		}

		for _, name := range names {
			sub, err := registry.OpenKey(root.hive, root.path+`\`+name, registry.QUERY_VALUE)
			if err != nil {
				continue
			}
			ent := readEntry(sub, root.prefix+`\`+root.path+`\`+name)
			sub.Close()

			if ent != nil && ent.Removable() {
				entries = append(entries, *ent)
			}
		}
		key.Close()
	}

	return entries, nil
}

// readEntry loads one Uninstall subkey. Returns nil for keys that do not
// describe a user-visible application.
func readEntry(key registry.Key, keyPath string) *Entry {
	name, _, err := key.GetStringValue("DisplayName")
	if err != nil || name == "" {
		return nil
	}
	if sys, _, err := key.GetIntegerValue("SystemComponent"); err == nil && sys == 1 {
		return nil
	}

	ent := Entry{Key: keyPath, Name: name}
	ent.Version, _, _ = key.GetStringValue("DisplayVersion")
	ent.Publisher, _, _ = key.GetStringValue("Publisher")
	ent.InstallLocation, _, _ = key.GetStringValue("InstallLocation")
	ent.UninstallString, _, _ = key.GetStringValue("UninstallString")
	ent.QuietUninstallString, _, _ = key.GetStringValue("QuietUninstallString")
	if wi, _, err := key.GetIntegerValue("WindowsInstaller"); err == nil && wi == 1 {
		ent.WindowsInstaller = true
	}
	if !ent.WindowsInstaller && ent.ProductCode() != "" {
		ent.WindowsInstaller = true
	}
	return &ent
}
