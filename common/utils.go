// Package common provides shared constants, types, and utilities
// used across upv-cli.
package common

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the path to the application configuration directory
// (%AppData%\upv-cli on Windows). It creates the directory if it doesn't
// exist.
func GetConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", Wrap(ExitToolError, err, "failed to locate user config directory")
	}

	configDir := filepath.Join(base, ConfigDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", Wrap(ExitToolError, err, "failed to create config directory")
	}

	return configDir, nil
}

// FileExists checks if a file or directory exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// StringInSlice checks if a string is in a slice.
func StringInSlice(s string, slice []string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}
