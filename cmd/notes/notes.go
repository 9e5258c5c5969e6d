// Package notes implements the notes command for previewing release notes.
package notes

import (
	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/commands"
	"github.com/alan/release-tools/internal/git"
	"github.com/alan/release-tools/internal/notes"
	"github.com/spf13/cobra"
)

// NewNotesCmd creates and returns the notes command
func NewNotesCmd(globalConfigFile, manifestPath *string, loadConfig func(string) (*cmd.Config, error)) *cobra.Command {
	return newCommand(&commands.BaseCommand{
		ConfigFile:       globalConfigFile,
		ManifestOverride: manifestPath,
		LoadConfig:       loadConfig,
	}, nil)
}

func newCommand(bc *commands.BaseCommand, vcs git.Client) *cobra.Command {
	builder := &commands.CommandBuilder{
		Use:   "notes",
		Short: "Print the release notes for the current version",
		Long: `Notes prints the body the release command would publish: the commits since
the last tag, newest first, or a pointer to the changelog when there are none.`,
		MinArgs: 0,
		MaxArgs: 0,
	}

	return builder.BuildCommand(func(cobraCmd *cobra.Command, _ []string) error {
		if err := bc.Init(cobraCmd); err != nil {
			return err
		}

		version, err := bc.ReadVersion()
		if err != nil {
			return err
		}

		if vcs == nil {
			vcs = bc.GitClient()
		}

		bc.Printer.Lines(notes.Build(cobraCmd.Context(), vcs, version, notes.WithChangelogName(bc.Config.Changelog.File)))
		return nil
	})
}
