// pkg/inventory/wmi_windows.go - Win32_Product fallback lookup.

//go:build windows

package inventory

import (
	"fmt"
	"strings"

	"github.com/yusufpapurcu/wmi"
)

// Win32_Product mirrors the WMI class fields we query.
type Win32_Product struct {
	Name              string `wmi:"Name"`
	IdentifyingNumber string `wmi:"IdentifyingNumber"`
	Version           string `wmi:"Version"`
	Vendor            string `wmi:"Vendor"`
}

// ProductsByName queries the MSI database through WMI for products matching
// name exactly. Win32_Product enumeration is slow, so this runs only when the
// registry walk found nothing for an MSI-installed product.
func ProductsByName(name string) ([]Entry, error) {
	query := fmt.Sprintf(
		"SELECT Name, IdentifyingNumber, Version, Vendor FROM Win32_Product WHERE Name = '%s'",
		strings.ReplaceAll(name, "'", "''"))

	var products []Win32_Product
	if err := wmi.Query(query, &products); err != nil {
		return nil, fmt.Errorf("querying Win32_Product: %w", err)
	}

	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		entries = append(entries, Entry{
			Key:              "WMI:Win32_Product",
			Name:             p.Name,
			Version:          p.Version,
			Publisher:        p.Vendor,
			UninstallString:  "MsiExec.exe /X" + p.IdentifyingNumber,
			WindowsInstaller: true,
		})
	}
	return entries, nil
}
