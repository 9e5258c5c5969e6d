// Package changelog regenerates the changelog with an external conventional-commits tool.
package changelog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/alan/release-tools/cmd"
)

// Header is written to a changelog that does not exist yet
const Header = "# Changelog\n\nAll notable changes to this project will be documented in this file.\n\n"

// Runner executes an external command to completion
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands as subprocesses attached to the given streams
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner that inherits the process's standard streams
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	slog.Debug("Running command", "command", name, "args", args)

	c := exec.CommandContext(ctx, name, args...) //nolint:gosec // Command comes from the config file
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	if err := c.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// EnsureFile creates the changelog with the standard header if it is absent.
// It reports whether the file was created.
func EnsureFile(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(Header), 0644); err != nil { //nolint:gosec // Changelog is a public document
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}

	slog.Debug("Created changelog", "file", path)
	return true, nil
}

// Generator updates a changelog file in place
type Generator struct {
	Runner  Runner
	File    string
	Preset  string
	Command []string
}

// NewGenerator builds a generator from the changelog section of the config
func NewGenerator(runner Runner, config cmd.ChangelogConfig) *Generator {
	return &Generator{
		Runner:  runner,
		File:    config.File,
		Preset:  config.Preset,
		Command: config.Command,
	}
}

// Args returns the full command line, e.g. npx conventional-changelog -p angular -i CHANGELOG.md -s
func (g *Generator) Args() []string {
	command := g.Command
	if len(command) == 0 {
		command = cmd.DefaultChangelogCommand
	}

	args := append([]string(nil), command...)
	if g.Preset != "" {
		args = append(args, "-p", g.Preset)
	}
	return append(args, "-i", g.File, "-s")
}

// Generate ensures the changelog exists and runs the tool against it
func (g *Generator) Generate(ctx context.Context) error {
	if _, err := EnsureFile(g.File); err != nil {
		return err
	}

	args := g.Args()
	if err := g.Runner.Run(ctx, args[0], args[1:]...); err != nil {
		return fmt.Errorf("error generating changelog: %w", err)
	}

	return nil
}
