// pkg/inventory/inventory.go - installed-software records and matching.
//
// An Entry mirrors one key under the registry Uninstall hives: the
// DisplayName/DisplayVersion pair plus the recorded uninstall command lines.
// Collection itself is Windows-only (registry_windows.go); everything here is
// shared logic over collected entries.

package inventory

import (
	"errors"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/windowsadmins/hush/pkg/logging"
	"github.com/windowsadmins/hush/pkg/version"
)

// ErrUnsupportedPlatform is returned by collection calls on non-Windows builds.
var ErrUnsupportedPlatform = errors.New("installed-software inventory requires Windows")

// Entry is one installed-software record from the Uninstall registry hives.
type Entry struct {
	Key                  string `yaml:"key,omitempty"`
	Name                 string `yaml:"name"`
	Version              string `yaml:"version,omitempty"`
	Publisher            string `yaml:"publisher,omitempty"`
	InstallLocation      string `yaml:"install_location,omitempty"`
	UninstallString      string `yaml:"uninstall_string,omitempty"`
	QuietUninstallString string `yaml:"quiet_uninstall_string,omitempty"`
	WindowsInstaller     bool   `yaml:"windows_installer,omitempty"`
}

var productCodeRe = regexp.MustCompile(`^\{[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}\}$`)

var embeddedCodeRe = regexp.MustCompile(`\{[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}\}`)

// IsProductCode reports whether s is a braced MSI product GUID.
func IsProductCode(s string) bool {
	return productCodeRe.MatchString(s)
}

// ProductCode returns the MSI product code for the entry, from its key name
// when the key is a GUID, otherwise from the first braced GUID inside the
// recorded uninstall string. Empty for non-MSI entries.
func (e Entry) ProductCode() string {
	if i := strings.LastIndexAny(e.Key, `\/`); i >= 0 {
		if tail := e.Key[i+1:]; IsProductCode(tail) {
			return tail
		}
	} else if IsProductCode(e.Key) {
		return e.Key
	}
	for _, s := range []string{e.QuietUninstallString, e.UninstallString} {
		if code := embeddedCodeRe.FindString(s); code != "" {
			return code
		}
	}
	return ""
}

// Removable reports whether the entry carries anything hush can act on.
func (e Entry) Removable() bool {
	return e.UninstallString != "" || e.QuietUninstallString != "" || e.ProductCode() != ""
}

// Filter returns the entries whose DisplayName matches pattern,
// case-insensitively. Exact matches win; only when there is no exact match
// does Filter fall back to substring matching, so "Git" selects "Git" and not
// also "Git LFS".
func Filter(entries []Entry, pattern string) []Entry {
	if pattern == "" {
		return nil
	}

	var exact, partial []Entry
	for _, e := range entries {
		switch {
		case strings.EqualFold(e.Name, pattern):
			exact = append(exact, e)
		case strings.Contains(strings.ToLower(e.Name), strings.ToLower(pattern)):
			partial = append(partial, e)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// OlderThan returns the entries whose DisplayVersion parses and sorts below
// bound. Entries with missing or unparsable versions are skipped.
func OlderThan(entries []Entry, bound string) ([]Entry, error) {
	limit, err := goversion.NewVersion(version.Normalize(bound))
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, e := range entries {
		if e.Version == "" {
			continue
		}
		v, err := goversion.NewVersion(version.Normalize(e.Version))
		if err != nil {
			logging.Debug("Skipping entry with unparsable version", "name", e.Name, "version", e.Version)
			continue
		}
		if v.LessThan(limit) {
			out = append(out, e)
		}
	}
	return out, nil
}
