// pkg/config/policy_other.go - no registry policy source off Windows.

//go:build !windows

package config

// applyPolicy is a no-op on platforms without a registry.
func applyPolicy(cfg *Configuration) {}
