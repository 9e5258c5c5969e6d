package commands

import (
	"context"
	"fmt"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/git"
	"github.com/alan/release-tools/internal/github"
	"github.com/alan/release-tools/internal/manifest"
	"github.com/spf13/cobra"
)

// TokenHint tells the user where to obtain a GitHub token
const TokenHint = "Create a token at: https://github.com/settings/tokens"

// BaseCommand provides common fields and initialization for all commands
type BaseCommand struct {
	ConfigFile       *string
	ManifestOverride *string
	LoadConfig       func(string) (*cmd.Config, error)
	Config           *cmd.Config
	Printer          *Printer
}

// Init loads the configuration and binds the printer to the command's output streams
func (bc *BaseCommand) Init(cobraCmd *cobra.Command) error {
	bc.Printer = NewPrinter(cobraCmd.OutOrStdout(), cobraCmd.ErrOrStderr())

	config, err := bc.LoadConfig(*bc.ConfigFile)
	if err != nil {
		return err
	}
	if bc.ManifestOverride != nil && *bc.ManifestOverride != "" {
		config.Manifest = *bc.ManifestOverride
	}
	bc.Config = config

	return nil
}

// ReadVersion reads the version from the configured manifest
func (bc *BaseCommand) ReadVersion() (string, error) {
	return manifest.ReadVersion(bc.Config.Manifest)
}

// GitClient returns the configured version-control backend for the working directory
func (bc *BaseCommand) GitClient() git.Client {
	return git.New(bc.Config.GitBackend, ".")
}

// NewGitHubClient creates a GitHub client for repo, honoring api_url
func (bc *BaseCommand) NewGitHubClient(ctx context.Context, token string, repo github.Repository) (*github.Client, error) {
	client, err := github.NewClient(ctx, token).WithEnterpriseURL(bc.Config.APIURL)
	if err != nil {
		return nil, err
	}
	return client.WithRepository(repo), nil
}

// GitHubToken retrieves the token from the named environment variable
func GitHubToken(envName string, getenv func(string) string) (string, error) {
	token := getenv(envName)
	if token == "" {
		return "", &cmd.ConfigurationError{
			Message: fmt.Sprintf("%s environment variable is required", envName),
			Hint:    TokenHint,
		}
	}
	return token, nil
}

// ResolveRepository returns the repository configured explicitly, or the one the remote points at
func ResolveRepository(ctx context.Context, config *cmd.Config, vcs git.Client) (github.Repository, error) {
	if config.Owner != "" && config.Repo != "" {
		return github.Repository{Owner: config.Owner, Name: config.Repo}, nil
	}

	remoteURL, err := vcs.RemoteURL(ctx, config.Remote)
	if err != nil {
		return github.Repository{}, &cmd.ConfigurationError{
			Message: fmt.Sprintf("could not read the URL of remote %q: %v", config.Remote, err),
			Hint:    "Run inside a git repository with a GitHub remote, or set owner and repo in the config file",
		}
	}

	repo, err := github.ParseRepositoryURL(remoteURL)
	if err != nil {
		return github.Repository{}, &cmd.ConfigurationError{
			Message: err.Error(),
			Hint:    "Set owner and repo in the config file if the remote is not hosted on github.com",
		}
	}

	return repo, nil
}
