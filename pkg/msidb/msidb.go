// pkg/msidb/msidb.go - direct reads from Windows Installer package databases.
//
// Properties come straight out of a .msi file's Property table through
// msi.dll, without installing or advertising anything.

package msidb

import "errors"

// ErrUnsupportedPlatform reports that MSI database reads require Windows.
var ErrUnsupportedPlatform = errors.New("MSI database reads require Windows")
