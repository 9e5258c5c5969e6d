// Package manifest reads the project version from a package manifest.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ParseError reports a manifest that is missing, malformed, or has no usable version
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to read version from %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errNoVersion    = errors.New(`no "version" field`)
	errEmptyVersion = errors.New(`"version" is empty`)
)

// ReadVersion returns the "version" field of the manifest at path, exactly as written.
// The file is decoded as JSON unless its extension says YAML or TOML.
func ReadVersion(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Manifest path is from config or command-line flag
	if err != nil {
		return "", &ParseError{Path: path, Err: err}
	}

	fields, err := decode(path, data)
	if err != nil {
		return "", &ParseError{Path: path, Err: err}
	}

	raw, ok := lookupVersion(path, fields)
	if !ok {
		return "", &ParseError{Path: path, Err: errNoVersion}
	}

	version, ok := raw.(string)
	if !ok {
		return "", &ParseError{Path: path, Err: fmt.Errorf(`"version" is a %T, not a string`, raw)}
	}

	if strings.TrimSpace(version) == "" {
		return "", &ParseError{Path: path, Err: errEmptyVersion}
	}

	if _, err := semver.StrictNewVersion(version); err != nil {
		slog.Warn("Version is not strict semantic versioning, using it as written", "file", path, "version", version, "error", err)
	}

	return version, nil
}

// decode parses data into a generic map based on the file extension
func decode(path string, data []byte) (map[string]any, error) {
	fields := map[string]any{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	return fields, nil
}

// lookupVersion finds the version field. TOML manifests may keep it under
// [package] (Cargo.toml) or [project] (pyproject.toml).
func lookupVersion(path string, fields map[string]any) (any, bool) {
	if v, ok := fields["version"]; ok {
		return v, true
	}

	if strings.ToLower(filepath.Ext(path)) != ".toml" {
		return nil, false
	}

	for _, table := range []string{"package", "project"} {
		section, ok := fields[table].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := section["version"]; ok {
			return v, true
		}
	}

	return nil, false
}
