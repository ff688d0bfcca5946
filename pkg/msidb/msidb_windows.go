// pkg/msidb/msidb_windows.go - msi.dll bindings for the Property table.

//go:build windows

package msidb

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/windowsadmins/hush/pkg/logging"
)

const (
	// szPersist value for MsiOpenDatabaseW; a null pointer means read-only.
	msidbOpenReadOnly = 0

	errnoSuccess     = 0
	errnoMoreData    = 234
	errnoNoMoreItems = 259
)

var (
	msiDLL = windows.NewLazySystemDLL("msi.dll")

	procMsiOpenDatabase     = msiDLL.NewProc("MsiOpenDatabaseW")
	procMsiDatabaseOpenView = msiDLL.NewProc("MsiDatabaseOpenViewW")
	procMsiViewExecute      = msiDLL.NewProc("MsiViewExecute")
	procMsiViewFetch        = msiDLL.NewProc("MsiViewFetch")
	procMsiRecordGetString  = msiDLL.NewProc("MsiRecordGetStringW")
	procMsiViewClose        = msiDLL.NewProc("MsiViewClose")
	procMsiCloseHandle      = msiDLL.NewProc("MsiCloseHandle")
)

// MSIHANDLE is an unsigned 32-bit value; widened here for syscall plumbing.
type msiHandle uintptr

func closeHandle(h msiHandle) {
	_, _, _ = procMsiCloseHandle.Call(uintptr(h))
}

// ReadProperties opens the MSI database at path read-only and returns its
// Property table as a map.
func ReadProperties(path string) (map[string]string, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	var db msiHandle
	ret, _, _ := procMsiOpenDatabase.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(msidbOpenReadOnly),
		uintptr(unsafe.Pointer(&db)),
	)
	if ret != errnoSuccess {
		return nil, fmt.Errorf("opening MSI database %s: %w", path, windows.Errno(ret))
	}
	defer closeHandle(db)

	queryPtr, err := windows.UTF16PtrFromString("SELECT `Property`, `Value` FROM `Property`")
	if err != nil {
		return nil, err
	}

	var view msiHandle
	ret, _, _ = procMsiDatabaseOpenView.Call(
		uintptr(db),
		uintptr(unsafe.Pointer(queryPtr)),
		uintptr(unsafe.Pointer(&view)),
	)
	if ret != errnoSuccess {
		return nil, fmt.Errorf("opening Property table view: %w", windows.Errno(ret))
	}
	defer closeHandle(view)

	ret, _, _ = procMsiViewExecute.Call(uintptr(view), 0)
	if ret != errnoSuccess {
		return nil, fmt.Errorf("executing Property table view: %w", windows.Errno(ret))
	}
	defer func() { _, _, _ = procMsiViewClose.Call(uintptr(view)) }()

	props := make(map[string]string)
	for {
		var record msiHandle
		ret, _, _ = procMsiViewFetch.Call(uintptr(view), uintptr(unsafe.Pointer(&record)))
		if ret == errnoNoMoreItems {
			break
		}
		if ret != errnoSuccess {
			return nil, fmt.Errorf("fetching Property table row: %w", windows.Errno(ret))
		}

		name, nameErr := recordString(record, 1)
		value, valueErr := recordString(record, 2)
		closeHandle(record)
		if nameErr != nil {
			return nil, nameErr
		}
		if valueErr != nil {
			return nil, valueErr
		}
		props[name] = value
	}

	logging.Debug("Read MSI Property table", "path", path, "properties", len(props))
	return props, nil
}

// ProductCode returns the ProductCode property of the MSI at path.
func ProductCode(path string) (string, error) {
	props, err := ReadProperties(path)
	if err != nil {
		return "", err
	}
	code, ok := props["ProductCode"]
	if !ok || code == "" {
		return "", fmt.Errorf("MSI %s has no ProductCode property", path)
	}
	return code, nil
}

// recordString reads string field i of an open record, growing the buffer
// when the first call reports truncation.
func recordString(record msiHandle, field int) (string, error) {
	buf := make([]uint16, 256)
	size := uint32(len(buf))

	ret, _, _ := procMsiRecordGetString.Call(
		uintptr(record),
		uintptr(field),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
	)
	if ret == errnoMoreData {
		// size now holds the required length without the terminator.
		buf = make([]uint16, size+1)
		size = uint32(len(buf))
		ret, _, _ = procMsiRecordGetString.Call(
			uintptr(record),
			uintptr(field),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&size)),
		)
	}
	if ret != errnoSuccess {
		return "", fmt.Errorf("reading record field %d: %w", field, windows.Errno(ret))
	}
	return windows.UTF16ToString(buf[:size]), nil
}
