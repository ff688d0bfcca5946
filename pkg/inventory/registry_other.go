// pkg/inventory/registry_other.go - collection stubs for non-Windows builds.

//go:build !windows

package inventory

// Collect is unavailable off Windows; there is no Uninstall hive to walk.
func Collect() ([]Entry, error) {
	return nil, ErrUnsupportedPlatform
}
