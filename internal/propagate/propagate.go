// Package propagate keeps version strings embedded in project files in sync with the manifest.
package propagate

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/alan/release-tools/cmd"
	"github.com/natefinch/atomic"
)

// versionGroup is the capture group whose text is replaced
const versionGroup = "version"

// Rule locates one embedded version in one file
type Rule struct {
	Name    string
	Path    string
	Pattern *regexp.Regexp
}

// Result is the outcome of applying a rule
type Result struct {
	Rule    Rule
	Updated bool  // The file was rewritten
	Err     error // Reading or writing the file failed
}

// NewRule compiles pattern, which must contain a (?P<version>...) group
func NewRule(name, path, pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid pattern for %s: %w", name, err)
	}
	if re.SubexpIndex(versionGroup) < 0 {
		return Rule{}, fmt.Errorf("pattern for %s has no %q group", name, versionGroup)
	}
	return Rule{Name: name, Path: path, Pattern: re}, nil
}

// RulesFromConfig compiles the configured version files
func RulesFromConfig(files []cmd.VersionFile) ([]Rule, error) {
	rules := make([]Rule, 0, len(files))
	for _, file := range files {
		rule, err := NewRule(file.Name, file.Path, file.Pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Apply replaces the version token of the first match in content.
// It reports false when the pattern does not match or the token already equals version.
func (r Rule) Apply(content, version string) (string, bool) {
	loc := r.Pattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return content, false
	}

	group := r.Pattern.SubexpIndex(versionGroup)
	start, end := loc[2*group], loc[2*group+1]
	if start < 0 || content[start:end] == version {
		return content, false
	}

	return content[:start] + version + content[end:], true
}

// Propagate applies every rule to its file. A failing file does not stop the others.
func Propagate(rules []Rule, version string) []Result {
	results := make([]Result, 0, len(rules))
	for _, rule := range rules {
		updated, err := propagateFile(rule, version)
		results = append(results, Result{Rule: rule, Updated: updated, Err: err})
	}
	return results
}

func propagateFile(rule Rule, version string) (bool, error) {
	data, err := os.ReadFile(rule.Path) //nolint:gosec // Paths come from the config file
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", rule.Path, err)
	}

	updated, changed := rule.Apply(string(data), version)
	if !changed {
		slog.Debug("No version update needed", "rule", rule.Name, "file", rule.Path)
		return false, nil
	}

	if err := atomic.WriteFile(rule.Path, bytes.NewReader([]byte(updated))); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", rule.Path, err)
	}

	slog.Debug("Updated version", "rule", rule.Name, "file", rule.Path, "version", version)
	return true, nil
}
