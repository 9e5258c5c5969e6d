// Package updateversion implements the update-version command for syncing embedded version strings.
package updateversion

import (
	"errors"
	"fmt"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/commands"
	"github.com/alan/release-tools/internal/propagate"
	"github.com/spf13/cobra"
)

// NewUpdateVersionCmd creates and returns the update-version command
func NewUpdateVersionCmd(globalConfigFile, manifestPath *string, loadConfig func(string) (*cmd.Config, error)) *cobra.Command {
	bc := &commands.BaseCommand{
		ConfigFile:       globalConfigFile,
		ManifestOverride: manifestPath,
		LoadConfig:       loadConfig,
	}

	builder := &commands.CommandBuilder{
		Use:   "update-version",
		Short: "Write the manifest version into the configured version files",
		Long: `Update-version reads the version from the manifest and replaces the version
embedded in each configured file (by default the menu label in main.gs and its
description in CLAUDE.md).

A file whose pattern does not match is left untouched and reported as not
needing an update. A file that cannot be read is an error, but the remaining
files are still updated.`,
		MinArgs: 0,
		MaxArgs: 0,
	}

	return builder.BuildCommand(func(cobraCmd *cobra.Command, _ []string) error {
		if err := bc.Init(cobraCmd); err != nil {
			return err
		}
		return runUpdateVersion(bc)
	})
}

func runUpdateVersion(bc *commands.BaseCommand) error {
	version, err := bc.ReadVersion()
	if err != nil {
		return err
	}

	rules, err := propagate.RulesFromConfig(bc.Config.VersionFiles)
	if err != nil {
		return &cmd.ConfigurationError{Message: err.Error()}
	}

	var errs []error
	for _, result := range propagate.Propagate(rules, version) {
		switch {
		case result.Err != nil:
			bc.Printer.Error("%v", result.Err)
			errs = append(errs, result.Err)
		case result.Updated:
			bc.Printer.Success("Updated %s version to %s", result.Rule.Path, bc.Config.TagName(version))
		default:
			bc.Printer.Warn("No version update needed in %s", result.Rule.Path)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to update %d of %d version files: %w", len(errs), len(rules), errors.Join(errs...))
	}
	return nil
}
