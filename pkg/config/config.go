/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/dnastore/pkg/constraint"
	"github.com/ssargent/dnastore/pkg/ecc"
	"github.com/ssargent/dnastore/pkg/store"
)

// Config represents the dnastore configuration
type Config struct {
	Codec   Codec   `yaml:"codec"`
	Server  Server  `yaml:"server"`
	Ledger  Ledger  `yaml:"ledger"`
	Logging Logging `yaml:"logging"`
}

// Codec contains the encoder settings written into every container
type Codec struct {
	ECC         string                 `yaml:"ecc"`
	NSym        int                    `yaml:"nsym"`
	ChunkSize   int                    `yaml:"chunk_size"`
	Strategy    string                 `yaml:"strategy"`
	Backend     string                 `yaml:"backend"`
	Workers     int                    `yaml:"workers"`
	Constraints *constraint.Thresholds `yaml:"constraints,omitempty"`
}

// Server contains HTTP server configuration
type Server struct {
	Port         int    `yaml:"port"`
	Bind         string `yaml:"bind"`
	APIKey       string `yaml:"api_key"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Ledger contains run ledger configuration
type Ledger struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Codec: Codec{
			ECC:       string(ecc.MethodReedSolomon),
			NSym:      ecc.DefaultNSym,
			ChunkSize: store.DefaultChunkSize,
			Strategy:  "baseline",
			Backend:   string(store.BackendReference),
			Workers:   1,
		},
		Server: Server{
			Port:         8080,
			Bind:         "127.0.0.1",
			APIKey:       "",
			MaxBodyBytes: 32 << 20,
		},
		Ledger: Ledger{
			Enabled: true,
			Path:    "./data/ledger",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// StoreOptions converts the codec section into store options
func (c *Config) StoreOptions(logger *slog.Logger, observer store.Observer) store.Options {
	return store.Options{
		ECC:         ecc.Method(c.Codec.ECC),
		NSym:        c.Codec.NSym,
		ChunkSize:   c.Codec.ChunkSize,
		Strategy:    c.Codec.Strategy,
		Constraints: c.Codec.Constraints,
		Backend:     store.Backend(c.Codec.Backend),
		Workers:     c.Codec.Workers,
		Logger:      logger,
		Metrics:     observer,
	}
}

// Validate checks the codec section by building a Storage from it
func (c *Config) Validate() error {
	if _, err := store.New(c.StoreOptions(nil, nil)); err != nil {
		return fmt.Errorf("invalid codec configuration: %w", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// start from defaults so omitted sections keep working values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration with a generated API key
// and the ledger under dataDir
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.Ledger.Path = filepath.Join(dataDir, "ledger")
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./dnastore.yaml"
	}

	// For Linux/macOS, use ~/.config/dnastore/config.yaml
	configDir := filepath.Join(homeDir, ".config", "dnastore")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
