// Package git answers the read-only version-control queries release-tools needs.
package git

import (
	"context"

	"github.com/alan/release-tools/cmd"
)

// Commit is one entry of the commit log
type Commit struct {
	Hash    string // Abbreviated hash
	Subject string // First line of the message
}

// Client queries a local repository
type Client interface {
	// RemoteURL returns the configured URL of the named remote
	RemoteURL(ctx context.Context, remote string) (string, error)

	// LastTag returns the most recent tag reachable from HEAD, or "" when there is none
	LastTag(ctx context.Context) (string, error)

	// CommitsSince lists commits reachable from HEAD but not from tag, newest first.
	// An empty tag lists the whole history.
	CommitsSince(ctx context.Context, tag string) ([]Commit, error)

	// ResolveCommit returns the full commit hash a revision (branch, tag, sha) points at
	ResolveCommit(ctx context.Context, rev string) (string, error)

	// CurrentBranch returns the checked-out branch name
	CurrentBranch(ctx context.Context) (string, error)
}

// New returns the client for the configured backend, operating on the repository containing dir
func New(backend cmd.GitBackend, dir string) Client {
	if backend == cmd.GitBackendGoGit {
		return NewGoGit(dir)
	}
	return NewExec(dir)
}
