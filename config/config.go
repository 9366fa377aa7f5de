// Package config provides configuration management for upv-cli.
// It handles loading, saving, and validating the institutional defaults
// that the adapters build their commands from.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/upv-tools/upv-cli/common"
)

// Config represents the tool configuration. All settings are persisted to
// a YAML file in the user's config directory and default to the UPV
// institutional values; most users never need to touch them.
type Config struct {
	// ServerAddress is the VPN server dial-up entries point at. It is
	// also how the tool recognizes its own entries among the ones
	// registered in the OS.
	ServerAddress string `yaml:"server_address"`
	// NASHost is the file server hosting the personal network shares.
	NASHost string `yaml:"nas_host"`
	// AlumnoShareRoot is the share root for student (ALUMNO) accounts.
	AlumnoShareRoot string `yaml:"alumno_share_root"`
	// UPVNetShareRoot is the share root for staff (UPVNET) accounts.
	UPVNetShareRoot string `yaml:"upvnet_share_root"`
	// DefaultDriveLetter is the drive letter used when none is given.
	DefaultDriveLetter string `yaml:"default_drive_letter"`
}

// Default returns the institutional default configuration.
func Default() *Config {
	return &Config{
		ServerAddress:      "vpn.upv.es",
		NASHost:            "nasupv.upv.es",
		AlumnoShareRoot:    "alumnos",
		UPVNetShareRoot:    "discos",
		DefaultDriveLetter: "W",
	}
}

// Load loads the configuration from the config file in the user's config
// directory. If the file doesn't exist, it creates one with the defaults.
func Load() (*Config, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(configDir, common.ConfigFileName))
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.SaveTo(path); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening configuration: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	config.validate()
	return &config, nil
}

// validate fills missing fields with defaults and repairs invalid values.
func (c *Config) validate() {
	defaults := Default()

	if c.ServerAddress == "" {
		c.ServerAddress = defaults.ServerAddress
	}
	if c.NASHost == "" {
		c.NASHost = defaults.NASHost
	}
	if c.AlumnoShareRoot == "" {
		c.AlumnoShareRoot = defaults.AlumnoShareRoot
	}
	if c.UPVNetShareRoot == "" {
		c.UPVNetShareRoot = defaults.UPVNetShareRoot
	}
	if !validDriveLetter(c.DefaultDriveLetter) {
		c.DefaultDriveLetter = defaults.DefaultDriveLetter
	}
}

func validDriveLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}

// Save saves the configuration to the config file in the user's config
// directory.
func (c *Config) Save() error {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return err
	}
	return c.SaveTo(filepath.Join(configDir, common.ConfigFileName))
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}
