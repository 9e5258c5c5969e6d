// Package github wraps the GitHub REST API calls release-tools makes.
package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client for a single repository
type Client struct {
	client *github.Client
	org    string
	repo   string
}

var _ ReleaseHost = (*Client)(nil)

// NewClient creates a new GitHub client with token authentication
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// WithRepository returns a copy of the client bound to owner/repo
func (c *Client) WithRepository(repo Repository) *Client {
	return &Client{
		client: c.client,
		org:    repo.Owner,
		repo:   repo.Name,
	}
}

// WithEnterpriseURL points the client at a GitHub Enterprise API base URL
func (c *Client) WithEnterpriseURL(apiURL string) (*Client, error) {
	if apiURL == "" {
		return c, nil
	}

	enterprise, err := c.client.WithEnterpriseURLs(apiURL, apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure GitHub API URL %s: %w", apiURL, err)
	}

	return &Client{
		client: enterprise,
		org:    c.org,
		repo:   c.repo,
	}, nil
}

// CreateRelease creates a release in the bound repository
func (c *Client) CreateRelease(ctx context.Context, req ReleaseRequest) (*Release, error) {
	slog.Debug("GitHub API: Creating release", "org", c.org, "repo", c.repo, "tag", req.TagName, "target", req.TargetCommitish)

	release, _, err := c.client.Repositories.CreateRelease(ctx, c.org, c.repo, &github.RepositoryRelease{
		TagName:         github.String(req.TagName),
		TargetCommitish: github.String(req.TargetCommitish),
		Name:            github.String(req.Name),
		Body:            github.String(req.Body),
		Draft:           github.Bool(req.Draft),
		Prerelease:      github.Bool(req.Prerelease),
	})
	if err != nil {
		return nil, err
	}

	return toRelease(release), nil
}

// GetReleaseByTag fetches the release for a tag in the bound repository
func (c *Client) GetReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	slog.Debug("GitHub API: Getting release by tag", "org", c.org, "repo", c.repo, "tag", tag)

	release, _, err := c.client.Repositories.GetReleaseByTag(ctx, c.org, c.repo, tag)
	if err != nil {
		return nil, err
	}

	return toRelease(release), nil
}

func toRelease(release *github.RepositoryRelease) *Release {
	return &Release{
		ID:      release.GetID(),
		TagName: release.GetTagName(),
		Name:    release.GetName(),
		HTMLURL: release.GetHTMLURL(),
	}
}
