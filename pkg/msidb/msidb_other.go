// pkg/msidb/msidb_other.go - stubs for platforms without Windows Installer.

//go:build !windows

package msidb

// ReadProperties is Windows-only.
func ReadProperties(path string) (map[string]string, error) {
	return nil, ErrUnsupportedPlatform
}

// ProductCode is Windows-only.
func ProductCode(path string) (string, error) {
	return "", ErrUnsupportedPlatform
}
