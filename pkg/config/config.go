// pkg/config/config.go - configuration settings for hush.

package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const ConfigPath = `C:\ProgramData\Hush\Config.yaml`

// Policy registry path used by MDM/CSP deployments to push settings when no
// Config.yaml is managed on disk.
const PolicyRegistryPath = `SOFTWARE\Hush\Config`

// DefaultTimeoutSeconds bounds a single uninstall process unless overridden.
const DefaultTimeoutSeconds = 900

// Configuration holds the configurable options for hush in YAML format.
type Configuration struct {
	Debug                   bool     `yaml:"Debug"`
	Verbose                 bool     `yaml:"Verbose"`
	LogLevel                string   `yaml:"LogLevel"`
	LogDirPath              string   `yaml:"LogDirPath"`
	UninstallTimeoutSeconds int      `yaml:"UninstallTimeoutSeconds"`
	BlockingProcessCheck    bool     `yaml:"BlockingProcessCheck"`
	SilentArgs              []string `yaml:"SilentArgs"`
}

// GetDefaultConfig returns the built-in defaults. hush is fully functional
// without any configuration on disk.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Debug:                   false,
		Verbose:                 false,
		LogLevel:                "INFO",
		LogDirPath:              `C:\ProgramData\Hush\Logs`,
		UninstallTimeoutSeconds: DefaultTimeoutSeconds,
		BlockingProcessCheck:    true,
	}
}

// LoadConfig loads the configuration from the YAML file if present, then
// overlays any policy values pushed through the registry. A missing file is
// not an error; defaults apply.
func LoadConfig() (*Configuration, error) {
	cfg := GetDefaultConfig()

	if _, err := os.Stat(ConfigPath); err == nil {
		if err := loadFile(ConfigPath, cfg); err != nil {
			return nil, err
		}
	} else {
		log.Printf("Configuration file does not exist: %s, using defaults", ConfigPath)
	}

	// Registry policy wins over the file so MDM-pushed settings stick.
	applyPolicy(cfg)

	normalize(cfg)
	return cfg, nil
}

// loadFile reads and parses one YAML configuration file into cfg.
func loadFile(path string, cfg *Configuration) error {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Failed to read configuration file: %v", err)
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("Failed to parse configuration file: %v", err)
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// normalize fills empty fields and clamps invalid values back to defaults.
func normalize(cfg *Configuration) {
	if cfg.LogDirPath == "" {
		cfg.LogDirPath = `C:\ProgramData\Hush\Logs`
	}
	if cfg.UninstallTimeoutSeconds <= 0 {
		cfg.UninstallTimeoutSeconds = DefaultTimeoutSeconds
	}
	switch strings.ToUpper(cfg.LogLevel) {
	case "ERROR", "WARN", "INFO", "DEBUG":
		cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	default:
		cfg.LogLevel = "INFO"
	}
}

// UninstallTimeout returns the configured per-process bound as a duration.
func (c *Configuration) UninstallTimeout() time.Duration {
	secs := c.UninstallTimeoutSeconds
	if secs <= 0 {
		secs = DefaultTimeoutSeconds
	}
	return time.Duration(secs) * time.Second
}
