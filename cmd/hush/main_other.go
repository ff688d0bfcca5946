// cmd/hush/main_other.go - no-op stubs so development builds run anywhere.

//go:build !windows

package main

func enableANSIConsole() {}

func patchArgs() {}

func adminCheck() (bool, error) { return true, nil }
