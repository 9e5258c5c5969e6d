// Package currentversion implements the current-version command.
package currentversion

import (
	"fmt"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/commands"
	"github.com/spf13/cobra"
)

// NewCurrentVersionCmd creates and returns the current-version command
func NewCurrentVersionCmd(globalConfigFile, manifestPath *string, loadConfig func(string) (*cmd.Config, error)) *cobra.Command {
	var tag bool

	bc := &commands.BaseCommand{
		ConfigFile:       globalConfigFile,
		ManifestOverride: manifestPath,
		LoadConfig:       loadConfig,
	}

	builder := &commands.CommandBuilder{
		Use:     "current-version",
		Short:   "Print the version from the manifest",
		Long:    `Current-version prints the manifest version exactly as written, for use in scripts.`,
		MinArgs: 0,
		MaxArgs: 0,
		ExampleUsage: []string{
			"release-tools current-version",
			"git tag $(release-tools current-version --tag)",
		},
	}

	cobraCmd := builder.BuildCommand(func(cobraCmd *cobra.Command, _ []string) error {
		if err := bc.Init(cobraCmd); err != nil {
			return err
		}

		version, err := bc.ReadVersion()
		if err != nil {
			return err
		}

		if tag {
			version = bc.Config.TagName(version)
		}
		fmt.Fprintln(cobraCmd.OutOrStdout(), version)
		return nil
	})

	cobraCmd.Flags().BoolVar(&tag, "tag", false, "Print the release tag name instead of the bare version")

	return cobraCmd
}
