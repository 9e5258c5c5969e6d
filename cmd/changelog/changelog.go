// Package changelog implements the changelog command for regenerating CHANGELOG.md.
package changelog

import (
	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/changelog"
	"github.com/alan/release-tools/internal/commands"
	"github.com/spf13/cobra"
)

// NewChangelogCmd creates and returns the changelog command
func NewChangelogCmd(globalConfigFile, manifestPath *string, loadConfig func(string) (*cmd.Config, error)) *cobra.Command {
	return newCommand(&commands.BaseCommand{
		ConfigFile:       globalConfigFile,
		ManifestOverride: manifestPath,
		LoadConfig:       loadConfig,
	}, nil)
}

func newCommand(bc *commands.BaseCommand, runner changelog.Runner) *cobra.Command {
	builder := &commands.CommandBuilder{
		Use:   "changelog",
		Short: "Regenerate the changelog with conventional-changelog",
		Long: `Changelog creates the changelog file with a standard header if it does not
exist, then runs the configured conventional-changelog command to add the
entries for the current version in place.

The tool's output is shown as it runs. Any failure of the tool is an error.`,
		MinArgs: 0,
		MaxArgs: 0,
		ExampleUsage: []string{
			"release-tools changelog",
			"release-tools changelog --manifest Cargo.toml",
		},
	}

	return builder.BuildCommand(func(cobraCmd *cobra.Command, _ []string) error {
		if err := bc.Init(cobraCmd); err != nil {
			return err
		}

		version, err := bc.ReadVersion()
		if err != nil {
			return err
		}

		if runner == nil {
			runner = &changelog.ExecRunner{
				Stdin:  cobraCmd.InOrStdin(),
				Stdout: cobraCmd.OutOrStdout(),
				Stderr: cobraCmd.ErrOrStderr(),
			}
		}

		bc.Printer.Step("Generating changelog...")
		if err := changelog.NewGenerator(runner, bc.Config.Changelog).Generate(cobraCmd.Context()); err != nil {
			return err
		}

		bc.Printer.Success("Updated %s for version %s", bc.Config.Changelog.File, version)
		return nil
	})
}
