package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.UninstallTimeoutSeconds)
	assert.True(t, cfg.BlockingProcessCheck)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.SilentArgs)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Config.yaml")
	data := `
LogLevel: debug
UninstallTimeoutSeconds: 120
BlockingProcessCheck: false
SilentArgs:
  - /S
  - /v/qn
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg := GetDefaultConfig()
	require.NoError(t, loadFile(path, cfg))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 120, cfg.UninstallTimeoutSeconds)
	assert.False(t, cfg.BlockingProcessCheck)
	assert.Equal(t, []string{"/S", "/v/qn"}, cfg.SilentArgs)
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LogLevel: [unclosed"), 0644))

	cfg := GetDefaultConfig()
	assert.Error(t, loadFile(path, cfg))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		in          Configuration
		wantLevel   string
		wantTimeout int
	}{
		{"empty level defaults to info", Configuration{}, "INFO", DefaultTimeoutSeconds},
		{"lowercase level upcased", Configuration{LogLevel: "debug", UninstallTimeoutSeconds: 30}, "DEBUG", 30},
		{"unknown level falls back", Configuration{LogLevel: "chatty"}, "INFO", DefaultTimeoutSeconds},
		{"negative timeout clamped", Configuration{LogLevel: "WARN", UninstallTimeoutSeconds: -5}, "WARN", DefaultTimeoutSeconds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			normalize(&cfg)
			assert.Equal(t, tt.wantLevel, cfg.LogLevel)
			assert.Equal(t, tt.wantTimeout, cfg.UninstallTimeoutSeconds)
			assert.NotEmpty(t, cfg.LogDirPath)
		})
	}
}

func TestUninstallTimeout(t *testing.T) {
	cfg := Configuration{UninstallTimeoutSeconds: 60}
	assert.Equal(t, time.Minute, cfg.UninstallTimeout())

	cfg.UninstallTimeoutSeconds = 0
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, cfg.UninstallTimeout())
}
