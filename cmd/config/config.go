// Package config implements the config command for initializing and updating release-tools configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/commands"
	configfile "github.com/alan/release-tools/internal/config"
	"github.com/alan/release-tools/internal/git"
	"github.com/alan/release-tools/internal/github"
	"github.com/spf13/cobra"
)

type configOptions struct {
	owner      string
	repo       string
	mainBranch string
	gitBackend string
}

// NewConfigCmd creates and returns the config command
func NewConfigCmd(globalConfigFile, manifestPath *string, loadConfig func(string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	bc := &commands.BaseCommand{
		ConfigFile:       globalConfigFile,
		ManifestOverride: manifestPath,
		LoadConfig:       loadConfig,
	}
	return newCommand(bc, saveConfig, nil)
}

func newCommand(bc *commands.BaseCommand, saveConfig func(string, *cmd.Config) error, vcs git.Client) *cobra.Command {
	var opts configOptions

	cobraCmd := &cobra.Command{
		Use:   "config",
		Short: "Initialize a new .release-tools.yaml configuration file",
		Long: `Config creates or updates the release-tools configuration file.

When run from a git repository, it will automatically detect the owner and
repository from the configured remote and the main branch from the current
branch. Values given as flags always win; values already in the file are kept.

The main branch defaults to 'main' if not specified and not detected from git.
The global --manifest flag is saved as the manifest path.`,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			if err := bc.Init(cobraCmd); err != nil {
				return err
			}
			if vcs == nil {
				vcs = git.New(cmd.ParseGitBackend(opts.gitBackend), ".")
			}
			return runConfigWithGitDetection(cobraCmd.Context(), bc, opts, vcs, saveConfig)
		},
	}

	addConfigFlags(cobraCmd, &opts)
	return cobraCmd
}

// addConfigFlags adds all flags to the config command
func addConfigFlags(cobraCmd *cobra.Command, opts *configOptions) {
	cobraCmd.Flags().StringVarP(&opts.owner, "owner", "o", "", "GitHub owner (auto-detected from git if available)")
	cobraCmd.Flags().StringVarP(&opts.repo, "repo", "r", "", "GitHub repository name (auto-detected from git if available)")
	cobraCmd.Flags().StringVarP(&opts.mainBranch, "main-branch", "b", "", "Branch releases target (auto-detected from git if available, defaults to 'main')")
	cobraCmd.Flags().StringVar(&opts.gitBackend, "git-backend", "", "How to read the repository: exec or go-git")
}

// runConfigWithGitDetection fills missing values from the repository, then saves
func runConfigWithGitDetection(ctx context.Context, bc *commands.BaseCommand, opts configOptions, vcs git.Client, saveConfig func(string, *cmd.Config) error) error {
	config := bc.Config
	isUpdate := configExists(*bc.ConfigFile)

	updateConfigWithProvidedValues(config, opts)

	if config.Owner == "" || config.Repo == "" || opts.mainBranch == "" {
		info, err := detectGitRepoInfo(ctx, vcs, config.Remote)
		if err != nil {
			slog.Debug("Git detection failed", "error", err)
		} else {
			if config.Owner == "" {
				config.Owner = info.Repository.Owner
				slog.Info("Auto-detected owner", "owner", config.Owner)
			}
			if config.Repo == "" {
				config.Repo = info.Repository.Name
				slog.Info("Auto-detected repository", "repo", config.Repo)
			}
			if opts.mainBranch == "" && !isUpdate && info.MainBranch != "" {
				config.MainBranch = info.MainBranch
				slog.Info("Auto-detected main branch", "branch", info.MainBranch)
			}
		}
	}

	if err := configfile.Validate(config); err != nil {
		return err
	}

	if err := saveConfig(*bc.ConfigFile, config); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	displayConfigSuccess(bc.Printer, *bc.ConfigFile, config, isUpdate)
	return nil
}

func configExists(configFile string) bool {
	_, err := os.Stat(configFile)
	return !errors.Is(err, fs.ErrNotExist)
}

// displayConfigSuccess shows the configuration success message
func displayConfigSuccess(printer *commands.Printer, configFile string, config *cmd.Config, isUpdate bool) {
	action := "initialized"
	if isUpdate {
		action = "updated"
	}

	repo := "(detected from remote " + config.Remote + ")"
	if config.Owner != "" {
		repo = config.Owner + "/" + config.Repo
	}

	printer.Success("Successfully %s %s with:", action, configFile)
	printer.Lines(fmt.Sprintf("  Repository: %s\n  Main Branch: %s\n  Manifest: %s\n  Git Backend: %s",
		repo, config.MainBranch, config.Manifest, config.GitBackend))
}

// updateConfigWithProvidedValues updates config with any non-empty provided values
func updateConfigWithProvidedValues(config *cmd.Config, opts configOptions) {
	if opts.owner != "" {
		config.Owner = opts.owner
	}
	if opts.repo != "" {
		config.Repo = opts.repo
	}
	if opts.mainBranch != "" {
		config.MainBranch = opts.mainBranch
	}
	if opts.gitBackend != "" {
		config.GitBackend = cmd.ParseGitBackend(opts.gitBackend)
	}
}

// GitRepoInfo holds detected git repository information
type GitRepoInfo struct {
	Repository github.Repository
	MainBranch string
}

// detectGitRepoInfo attempts to detect git repository information
func detectGitRepoInfo(ctx context.Context, vcs git.Client, remote string) (*GitRepoInfo, error) {
	remoteURL, err := vcs.RemoteURL(ctx, remote)
	if err != nil {
		return nil, fmt.Errorf("failed to read git remote: %w", err)
	}

	repo, err := github.ParseRepositoryURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse git remote: %w", err)
	}

	branch, err := vcs.CurrentBranch(ctx)
	if err != nil {
		slog.Debug("Unable to determine current branch", "error", err)
	}

	return &GitRepoInfo{Repository: repo, MainBranch: branch}, nil
}
