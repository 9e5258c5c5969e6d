// Package release implements the release command for publishing a GitHub release of the manifest version.
package release

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/commands"
	"github.com/alan/release-tools/internal/git"
	"github.com/alan/release-tools/internal/github"
	"github.com/alan/release-tools/internal/notes"
	"github.com/spf13/cobra"
)

// Outcome is the terminal state of a release run
type Outcome int

const (
	// OutcomeFailed means the release was not created
	OutcomeFailed Outcome = iota
	// OutcomePublished means a new release was created
	OutcomePublished
	// OutcomeAlreadyExists means the tag already had a release; nothing was changed
	OutcomeAlreadyExists
	// OutcomeDryRun means the request was printed but not sent
	OutcomeDryRun
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeAlreadyExists:
		return "already-exists"
	case OutcomeDryRun:
		return "dry-run"
	default:
		return "failed"
	}
}

// HostFactory creates the release host for an authenticated repository
type HostFactory func(ctx context.Context, token string, repo github.Repository) (github.ReleaseHost, error)

type releaser struct {
	commands.BaseCommand
	dryRun bool

	getenv  func(string) string
	vcs     git.Client
	newHost HostFactory
}

// NewReleaseCmd creates and returns the release command
func NewReleaseCmd(globalConfigFile, manifestPath *string, loadConfig func(string) (*cmd.Config, error)) *cobra.Command {
	r := &releaser{
		BaseCommand: commands.BaseCommand{
			ConfigFile:       globalConfigFile,
			ManifestOverride: manifestPath,
			LoadConfig:       loadConfig,
		},
		getenv: os.Getenv,
	}
	r.newHost = func(ctx context.Context, token string, repo github.Repository) (github.ReleaseHost, error) {
		client, err := r.NewGitHubClient(ctx, token, repo)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	return newCommand(r)
}

func newCommand(r *releaser) *cobra.Command {
	builder := &commands.CommandBuilder{
		Use:   "release",
		Short: "Create a GitHub release for the current manifest version",
		Long: `Release reads the version from the manifest and creates the GitHub release
v<version> targeting the main branch. The release notes list the commits since
the last tag, or point to the changelog when there are none.

The repository is detected from the git remote unless owner and repo are set
in the config file. A token must be available in GITHUB_TOKEN (or the variable
named by token_env).

A release that already exists is reported as a warning and is not an error.`,
		MinArgs: 0,
		MaxArgs: 0,
		ExampleUsage: []string{
			"release-tools release",
			"release-tools release --dry-run",
		},
	}

	cobraCmd := builder.BuildCommand(func(cobraCmd *cobra.Command, _ []string) error {
		if err := r.Init(cobraCmd); err != nil {
			return err
		}
		_, err := r.run(cobraCmd.Context())
		return err
	})

	cobraCmd.Flags().BoolVar(&r.dryRun, "dry-run", false, "Print the release that would be created without calling GitHub")

	return cobraCmd
}

func (r *releaser) run(ctx context.Context) (Outcome, error) {
	version, err := r.ReadVersion()
	if err != nil {
		return OutcomeFailed, err
	}

	return r.publish(ctx, version)
}

// publish walks the release states: credential check, identity resolution, then publishing
func (r *releaser) publish(ctx context.Context, version string) (Outcome, error) {
	var token string
	if !r.dryRun {
		var err error
		if token, err = commands.GitHubToken(r.Config.TokenEnv, r.getenv); err != nil {
			return OutcomeFailed, err
		}
	}

	vcs := r.vcs
	if vcs == nil {
		vcs = r.GitClient()
	}

	repo, err := commands.ResolveRepository(ctx, r.Config, vcs)
	if err != nil {
		return OutcomeFailed, err
	}

	tag := r.Config.TagName(version)
	r.Printer.Info("Creating release for %s %s", repo, tag)

	req := github.ReleaseRequest{
		TagName:         tag,
		TargetCommitish: r.Config.MainBranch,
		Name:            tag,
		Body:            notes.Build(ctx, vcs, version, notes.WithChangelogName(r.Config.Changelog.File)),
	}

	if r.dryRun {
		r.printDryRun(repo, req)
		return OutcomeDryRun, nil
	}

	host, err := r.newHost(ctx, token, repo)
	if err != nil {
		return OutcomeFailed, err
	}

	released, err := checkTagConflict(ctx, vcs, host, tag, r.Config.MainBranch)
	if err != nil {
		return OutcomeFailed, err
	}
	if released {
		r.Printer.Warn("Release %s already exists", tag)
		return OutcomeAlreadyExists, nil
	}

	release, err := host.CreateRelease(ctx, req)
	if err != nil {
		if github.IsAlreadyExists(err) {
			r.Printer.Warn("Release %s already exists", tag)
			return OutcomeAlreadyExists, nil
		}
		return OutcomeFailed, fmt.Errorf("error creating release: %w", err)
	}

	slog.Info("Release created", "repo", repo.String(), "tag", release.TagName, "id", release.ID)
	r.Printer.Success("Created release: %s", release.HTMLURL)
	r.Printer.Celebrate("Version %s has been released!", version)

	return OutcomePublished, nil
}

func (r *releaser) printDryRun(repo github.Repository, req github.ReleaseRequest) {
	r.Printer.Step("Dry run: would create release %s in %s targeting %s", req.Name, repo, req.TargetCommitish)
	r.Printer.Lines(req.Body)
}

// checkTagConflict guards against publishing a release for a tag that already points
// somewhere other than the main branch. It reports true when that tag already has a release.
func checkTagConflict(ctx context.Context, vcs git.Client, host github.ReleaseHost, tag, branch string) (bool, error) {
	tagCommit, err := vcs.ResolveCommit(ctx, tag)
	if err != nil {
		slog.Debug("Tag not present locally", "tag", tag, "error", err)
		return false, nil
	}

	branchCommit, err := vcs.ResolveCommit(ctx, branch)
	if err != nil {
		slog.Debug("Branch not present locally, skipping tag check", "branch", branch, "error", err)
		return false, nil
	}
	if branchCommit == tagCommit {
		return false, nil
	}

	if _, err := host.GetReleaseByTag(ctx, tag); err != nil {
		if github.IsNotFound(err) {
			return false, &cmd.ConflictError{Tag: tag, TagCommit: tagCommit, Branch: branch, BranchRef: branchCommit}
		}
		return false, fmt.Errorf("failed to look up release %s: %w", tag, err)
	}

	return true, nil
}
