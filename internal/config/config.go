// Package config provides functions for loading and saving release-tools configuration files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"

	"github.com/alan/release-tools/cmd"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads the configuration from the specified file and validates it.
// A missing file is not an error: the defaults are returned instead.
func LoadConfig(filename string) (*cmd.Config, error) {
	config, err := ReadConfig(filename)
	if err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ReadConfig loads the configuration like LoadConfig but leaves validation to the
// caller, so the config command can repair a file that does not validate yet
func ReadConfig(filename string) (*cmd.Config, error) {
	data, err := os.ReadFile(filename) //nolint:gosec // Config filename is from command-line flag
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Config file not found, using defaults", "file", filename)
			return cmd.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config cmd.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.ApplyDefaults()

	return &config, nil
}

// SaveConfig saves the configuration to the specified file
func SaveConfig(filename string, config *cmd.Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks fields that cannot be defaulted
func Validate(config *cmd.Config) error {
	if (config.Owner == "") != (config.Repo == "") {
		return &cmd.ConfigurationError{
			Message: "owner and repo must be set together",
			Hint:    "Set both owner and repo in the config file, or neither to detect them from the git remote",
		}
	}

	for _, file := range config.VersionFiles {
		if file.Path == "" {
			return &cmd.ConfigurationError{Message: fmt.Sprintf("version file %q has no path", file.Name)}
		}
		re, err := regexp.Compile(file.Pattern)
		if err != nil {
			return &cmd.ConfigurationError{Message: fmt.Sprintf("version file %q has an invalid pattern: %v", file.Name, err)}
		}
		if re.SubexpIndex("version") < 0 {
			return &cmd.ConfigurationError{
				Message: fmt.Sprintf("version file %q pattern has no (?P<version>...) group", file.Name),
			}
		}
	}

	return nil
}
