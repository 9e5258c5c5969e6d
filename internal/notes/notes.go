// Package notes builds release notes from the commit history since the last tag.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/git"
)

// Option customizes Build
type Option func(*options)

type options struct {
	changelogName string
}

// WithChangelogName sets the document the fallback text points readers to
func WithChangelogName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.changelogName = name
		}
	}
}

// Build returns the release notes for version. It never fails: when the last tag or
// the commit log cannot be read, or there is nothing new, it returns the fallback text.
func Build(ctx context.Context, vcs git.Client, version string, opts ...Option) string {
	o := options{changelogName: cmd.DefaultChangelogFile}
	for _, opt := range opts {
		opt(&o)
	}

	commits, err := commitsSinceLastTag(ctx, vcs)
	if err != nil {
		slog.Debug("Falling back to static release notes", "error", err)
		return Fallback(version, o.changelogName)
	}
	if len(commits) == 0 {
		return Fallback(version, o.changelogName)
	}

	return FormatChanges(commits)
}

func commitsSinceLastTag(ctx context.Context, vcs git.Client) ([]git.Commit, error) {
	lastTag, err := vcs.LastTag(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find last tag: %w", err)
	}

	commits, err := vcs.CommitsSince(ctx, lastTag)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits since %q: %w", lastTag, err)
	}

	slog.Debug("Collected commits for release notes", "since", lastTag, "count", len(commits))
	return commits, nil
}

// FormatChanges renders one "- <subject> (<hash>)" line per commit under a Changes heading
func FormatChanges(commits []git.Commit) string {
	var sb strings.Builder
	sb.WriteString("## Changes\n\n")
	for i, commit := range commits {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("- %s (%s)", commit.Subject, commit.Hash))
	}
	return sb.String()
}

// Fallback is used when there are no commits to list
func Fallback(version, changelogName string) string {
	return fmt.Sprintf("## Version %s\n\nSee %s for details.", version, changelogName)
}
