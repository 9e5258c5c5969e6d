package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// fieldSeparator splits hash and subject in the log format; it cannot appear in a subject line
const fieldSeparator = "\x1f"

type execClient struct {
	dir string
}

// NewExec returns a Client that shells out to the git binary
func NewExec(dir string) Client {
	return &execClient{dir: dir}
}

// run executes git and returns its trimmed stdout
func (c *execClient) run(ctx context.Context, args ...string) (string, error) {
	slog.Debug("Running git", "args", args, "dir", c.dir)

	var stderr bytes.Buffer
	gitCmd := exec.CommandContext(ctx, "git", args...)
	gitCmd.Dir = c.dir
	gitCmd.Stderr = &stderr

	output, err := gitCmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w\noutput: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(string(output)), nil
}

func (c *execClient) RemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := c.run(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("failed to get URL of remote %s: %w", remote, err)
	}
	return url, nil
}

func (c *execClient) LastTag(ctx context.Context) (string, error) {
	tag, err := c.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		// git exits non-zero when no tag is reachable
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			slog.Debug("No reachable tag", "error", err)
			return "", nil
		}
		return "", fmt.Errorf("failed to find last tag: %w", err)
	}
	return tag, nil
}

func (c *execClient) CommitsSince(ctx context.Context, tag string) ([]Commit, error) {
	revRange := "HEAD"
	if tag != "" {
		revRange = tag + "..HEAD"
	}

	output, err := c.run(ctx, "log", revRange, "--pretty=format:%h"+fieldSeparator+"%s")
	if err != nil {
		return nil, fmt.Errorf("failed to list commits in %s: %w", revRange, err)
	}

	return parseLog(output), nil
}

func (c *execClient) ResolveCommit(ctx context.Context, rev string) (string, error) {
	sha, err := c.run(ctx, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return sha, nil
}

func (c *execClient) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := c.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	if branch == "" {
		return "", fmt.Errorf("unable to determine current branch")
	}
	return branch, nil
}

// parseLog converts "<hash>\x1f<subject>" lines into commits
func parseLog(output string) []Commit {
	if output == "" {
		return nil
	}

	var commits []Commit
	for _, line := range strings.Split(output, "\n") {
		hash, subject, found := strings.Cut(line, fieldSeparator)
		if !found || hash == "" {
			continue
		}
		commits = append(commits, Commit{Hash: hash, Subject: subject})
	}
	return commits
}
