package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvStorage overrides the configured storage DSN.
const EnvStorage = "SHELF_STORAGE"

// Config holds application configuration.
type Config struct {
	Storage            string       `yaml:"storage"`
	WriteRetries       int          `yaml:"writeRetries"`
	CullExcludeDomains []string     `yaml:"cullExcludeDomains"`
	Backup             BackupConfig `yaml:"backup"`
}

// BackupConfig configures the remote backup transport.
type BackupConfig struct {
	Endpoint string `yaml:"endpoint"`
	TokenEnv string `yaml:"tokenEnv"`
	FileName string `yaml:"fileName"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	statePath, err := DefaultStatePath()
	if err != nil {
		statePath = "state.json"
	}
	return Config{
		Storage:            statePath,
		WriteRetries:       3,
		CullExcludeDomains: []string{"github.com", "gitlab.com"},
		Backup: BackupConfig{
			TokenEnv: "SHELF_BACKUP_TOKEN",
			FileName: "shelf-backup.json",
		},
	}
}

// LoadConfig reads config from the YAML file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			config.applyEnv()
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.Storage == "" {
		config.Storage = defaults.Storage
	}
	if config.WriteRetries <= 0 {
		config.WriteRetries = defaults.WriteRetries
	}
	if config.CullExcludeDomains == nil {
		config.CullExcludeDomains = defaults.CullExcludeDomains
	}
	if config.Backup.TokenEnv == "" {
		config.Backup.TokenEnv = defaults.Backup.TokenEnv
	}
	if config.Backup.FileName == "" {
		config.Backup.FileName = defaults.Backup.FileName
	}

	config.applyEnv()
	return &config, nil
}

func (c *Config) applyEnv() {
	if dsn := strings.TrimSpace(os.Getenv(EnvStorage)); dsn != "" {
		c.Storage = dsn
	}
}

// SaveConfig writes config to the YAML file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/shelf/config.yaml
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "shelf", "config.yaml"), nil
}
