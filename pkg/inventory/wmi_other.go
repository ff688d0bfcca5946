// pkg/inventory/wmi_other.go - stubs for platforms without WMI.

//go:build !windows

package inventory

// ProductsByName is Windows-only.
func ProductsByName(name string) ([]Entry, error) {
	return nil, ErrUnsupportedPlatform
}
