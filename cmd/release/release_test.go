package release

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/commands"
	"github.com/alan/release-tools/internal/git"
	"github.com/alan/release-tools/internal/github"
	"github.com/alan/release-tools/internal/manifest"
	gogithub "github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVCS struct {
	remoteURL string
	remoteErr error
	lastTag   string
	commits   []git.Commit
	refs      map[string]string
}

func (f *fakeVCS) RemoteURL(_ context.Context, _ string) (string, error) {
	return f.remoteURL, f.remoteErr
}

func (f *fakeVCS) LastTag(_ context.Context) (string, error) {
	return f.lastTag, nil
}

func (f *fakeVCS) CommitsSince(_ context.Context, _ string) ([]git.Commit, error) {
	return f.commits, nil
}

func (f *fakeVCS) ResolveCommit(_ context.Context, rev string) (string, error) {
	if sha, ok := f.refs[rev]; ok {
		return sha, nil
	}
	return "", fmt.Errorf("unknown revision %s", rev)
}

func (f *fakeVCS) CurrentBranch(_ context.Context) (string, error) {
	return "main", nil
}

type fakeHost struct {
	created   []github.ReleaseRequest
	createErr error
	releases  map[string]*github.Release
	getErr    error
	lookups   []string
}

func (f *fakeHost) CreateRelease(_ context.Context, req github.ReleaseRequest) (*github.Release, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &github.Release{
		ID:      1,
		TagName: req.TagName,
		Name:    req.Name,
		HTMLURL: "https://github.com/acme/widget/releases/tag/" + req.TagName,
	}, nil
}

func (f *fakeHost) GetReleaseByTag(_ context.Context, tag string) (*github.Release, error) {
	f.lookups = append(f.lookups, tag)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if release, ok := f.releases[tag]; ok {
		return release, nil
	}
	return nil, apiError(http.StatusNotFound, "Not Found")
}

func apiError(status int, message string, codes ...string) error {
	var errs []gogithub.Error
	for _, code := range codes {
		errs = append(errs, gogithub.Error{Resource: "Release", Field: "tag_name", Code: code})
	}
	return &gogithub.ErrorResponse{
		Response: &http.Response{
			StatusCode: status,
			Request: &http.Request{
				Method: http.MethodPost,
				URL:    &url.URL{Scheme: "https", Host: "api.github.com", Path: "/repos/acme/widget/releases"},
			},
		},
		Message: message,
		Errors:  errs,
	}
}

type harness struct {
	releaser    *releaser
	host        *fakeHost
	vcs         *fakeVCS
	env         map[string]string
	hostCreated int
	out, errOut bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(manifestPath, []byte(`{"name": "widget", "version": "1.2.0"}`), 0644))

	configFile := filepath.Join(dir, ".release-tools.yaml")
	h := &harness{
		host: &fakeHost{},
		vcs: &fakeVCS{
			remoteURL: "git@github.com:acme/widget.git",
			lastTag:   "v1.1.0",
			commits: []git.Commit{
				{Hash: "abc1234", Subject: "feat: add export"},
				{Hash: "def5678", Subject: "fix: handle empty rows"},
			},
		},
		env: map[string]string{"GITHUB_TOKEN": "test-token"},
	}

	h.releaser = &releaser{
		BaseCommand: commands.BaseCommand{
			ConfigFile:       &configFile,
			ManifestOverride: &manifestPath,
			LoadConfig: func(_ string) (*cmd.Config, error) {
				return cmd.DefaultConfig(), nil
			},
		},
		getenv: func(key string) string { return h.env[key] },
		vcs:    h.vcs,
		newHost: func(_ context.Context, token string, repo github.Repository) (github.ReleaseHost, error) {
			require.Equal(t, "test-token", token)
			require.Equal(t, "acme/widget", repo.String())
			h.hostCreated++
			return h.host, nil
		},
	}

	return h
}

func (h *harness) execute(args ...string) error {
	cobraCmd := newCommand(h.releaser)
	cobraCmd.SetOut(&h.out)
	cobraCmd.SetErr(&h.errOut)
	cobraCmd.SetArgs(append([]string{}, args...))
	cobraCmd.SilenceErrors = true
	return cobraCmd.ExecuteContext(context.Background())
}

func TestNewReleaseCmd(t *testing.T) {
	configFile := ".release-tools.yaml"
	manifestPath := ""
	cobraCmd := NewReleaseCmd(&configFile, &manifestPath, func(string) (*cmd.Config, error) { return cmd.DefaultConfig(), nil })

	assert.Equal(t, "release", cobraCmd.Use)
	assert.NotEmpty(t, cobraCmd.Short)
	assert.True(t, cobraCmd.SilenceUsage)
	assert.NotNil(t, cobraCmd.Flags().Lookup("dry-run"))
	assert.Error(t, cobraCmd.Args(cobraCmd, []string{"extra"}))
}

func TestRelease_Published(t *testing.T) {
	h := newHarness(t)

	err := h.execute()

	require.NoError(t, err)
	require.Len(t, h.host.created, 1)
	assert.Equal(t, github.ReleaseRequest{
		TagName:         "v1.2.0",
		TargetCommitish: "main",
		Name:            "v1.2.0",
		Body:            "## Changes\n\n- feat: add export (abc1234)\n- fix: handle empty rows (def5678)",
		Draft:           false,
		Prerelease:      false,
	}, h.host.created[0])

	assert.Contains(t, h.out.String(), "📦 Creating release for acme/widget v1.2.0")
	assert.Contains(t, h.out.String(), "✅ Created release: https://github.com/acme/widget/releases/tag/v1.2.0")
	assert.Contains(t, h.out.String(), "🎉 Version 1.2.0 has been released!")
	assert.Empty(t, h.errOut.String())
}

func TestRelease_FallbackNotesWithoutCommits(t *testing.T) {
	h := newHarness(t)
	h.vcs.lastTag = ""
	h.vcs.commits = nil

	require.NoError(t, h.execute())

	require.Len(t, h.host.created, 1)
	assert.Equal(t, "## Version 1.2.0\n\nSee CHANGELOG.md for details.", h.host.created[0].Body)
}

func TestRelease_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(h *harness)
		wantOutcome Outcome
		wantErr     string
		wantErrType any
		wantWarn    bool
		wantCreated int
		wantHosts   int
	}{
		{
			name:        "published",
			setup:       func(_ *harness) {},
			wantOutcome: OutcomePublished,
			wantCreated: 1,
			wantHosts:   1,
		},
		{
			name:        "missing token",
			setup:       func(h *harness) { delete(h.env, "GITHUB_TOKEN") },
			wantOutcome: OutcomeFailed,
			wantErr:     "GITHUB_TOKEN environment variable is required",
			wantErrType: &cmd.ConfigurationError{},
		},
		{
			name: "custom token variable",
			setup: func(h *harness) {
				h.releaser.LoadConfig = func(string) (*cmd.Config, error) {
					config := cmd.DefaultConfig()
					config.TokenEnv = "RELEASE_TOKEN"
					return config, nil
				}
			},
			wantOutcome: OutcomeFailed,
			wantErr:     "RELEASE_TOKEN environment variable is required",
			wantErrType: &cmd.ConfigurationError{},
		},
		{
			name:        "non-GitHub remote",
			setup:       func(h *harness) { h.vcs.remoteURL = "git@gitlab.com:acme/widget.git" },
			wantOutcome: OutcomeFailed,
			wantErr:     "unable to parse GitHub remote URL",
			wantErrType: &cmd.ConfigurationError{},
		},
		{
			name:        "no remote",
			setup:       func(h *harness) { h.vcs.remoteErr = errors.New("No such remote 'origin'") },
			wantOutcome: OutcomeFailed,
			wantErrType: &cmd.ConfigurationError{},
			wantErr:     "could not read the URL of remote",
		},
		{
			name: "release already exists",
			setup: func(h *harness) {
				h.host.createErr = apiError(http.StatusUnprocessableEntity, "Validation Failed", "already_exists")
			},
			wantOutcome: OutcomeAlreadyExists,
			wantWarn:    true,
			wantCreated: 1,
			wantHosts:   1,
		},
		{
			name: "other validation failure",
			setup: func(h *harness) {
				h.host.createErr = apiError(http.StatusUnprocessableEntity, "Validation Failed", "invalid")
			},
			wantOutcome: OutcomeFailed,
			wantErr:     "error creating release",
			wantCreated: 1,
			wantHosts:   1,
		},
		{
			name: "server error",
			setup: func(h *harness) {
				h.host.createErr = apiError(http.StatusInternalServerError, "Server Error")
			},
			wantOutcome: OutcomeFailed,
			wantErr:     "Server Error",
			wantCreated: 1,
			wantHosts:   1,
		},
		{
			name: "host construction fails",
			setup: func(h *harness) {
				h.releaser.newHost = func(context.Context, string, github.Repository) (github.ReleaseHost, error) {
					return nil, errors.New("failed to configure GitHub API URL")
				}
			},
			wantOutcome: OutcomeFailed,
			wantErr:     "failed to configure GitHub API URL",
		},
		{
			name: "tag points elsewhere without a release",
			setup: func(h *harness) {
				h.vcs.refs = map[string]string{"v1.2.0": "1111111aaaa", "main": "2222222bbbb"}
			},
			wantOutcome: OutcomeFailed,
			wantErr:     "tag v1.2.0 already exists at 1111111 but main is at 2222222",
			wantErrType: &cmd.ConflictError{},
			wantHosts:   1,
		},
		{
			name: "tag points elsewhere with a release",
			setup: func(h *harness) {
				h.vcs.refs = map[string]string{"v1.2.0": "1111111aaaa", "main": "2222222bbbb"}
				h.host.releases = map[string]*github.Release{"v1.2.0": {ID: 9, TagName: "v1.2.0"}}
			},
			wantOutcome: OutcomeAlreadyExists,
			wantWarn:    true,
			wantHosts:   1,
		},
		{
			name: "tag lookup fails",
			setup: func(h *harness) {
				h.vcs.refs = map[string]string{"v1.2.0": "1111111aaaa", "main": "2222222bbbb"}
				h.host.getErr = apiError(http.StatusInternalServerError, "Server Error")
			},
			wantOutcome: OutcomeFailed,
			wantErr:     "failed to look up release v1.2.0",
			wantHosts:   1,
		},
		{
			name: "tag already at main",
			setup: func(h *harness) {
				h.vcs.refs = map[string]string{"v1.2.0": "2222222bbbb", "main": "2222222bbbb"}
			},
			wantOutcome: OutcomePublished,
			wantCreated: 1,
			wantHosts:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)
			require.NoError(t, h.releaser.Init(newCommand(h.releaser)))
			h.releaser.Printer = commands.NewPrinter(&h.out, &h.errOut)

			outcome, err := h.releaser.run(context.Background())

			assert.Equal(t, tt.wantOutcome, outcome)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			switch want := tt.wantErrType.(type) {
			case *cmd.ConfigurationError:
				assert.ErrorAs(t, err, &want)
			case *cmd.ConflictError:
				assert.ErrorAs(t, err, &want)
			}

			if tt.wantWarn {
				assert.Contains(t, h.out.String(), "⚠️  Release v1.2.0 already exists")
				assert.NotContains(t, h.out.String(), "🎉")
			}
			assert.Len(t, h.host.created, tt.wantCreated)
			assert.Equal(t, tt.wantHosts, h.hostCreated)
		})
	}
}

func TestRelease_AlreadyExistsExitsCleanly(t *testing.T) {
	h := newHarness(t)
	h.host.createErr = apiError(http.StatusUnprocessableEntity, "Validation Failed", "already_exists")

	err := h.execute()

	require.NoError(t, err)
	assert.Equal(t, 0, commands.ExitCode(err))
	assert.Contains(t, h.out.String(), "⚠️  Release v1.2.0 already exists")
}

func TestRelease_FailureExitsWithError(t *testing.T) {
	h := newHarness(t)
	h.host.createErr = apiError(http.StatusForbidden, "Resource not accessible by integration")

	err := h.execute()

	require.Error(t, err)
	assert.Equal(t, 1, commands.ExitCode(err))
	assert.Contains(t, err.Error(), "error creating release")
	assert.Contains(t, err.Error(), "Resource not accessible by integration")
}

func TestRelease_DryRun(t *testing.T) {
	h := newHarness(t)
	delete(h.env, "GITHUB_TOKEN")

	err := h.execute("--dry-run")

	require.NoError(t, err)
	assert.Zero(t, h.hostCreated)
	assert.Empty(t, h.host.created)
	assert.Contains(t, h.out.String(), "Dry run: would create release v1.2.0 in acme/widget targeting main")
	assert.Contains(t, h.out.String(), "- feat: add export (abc1234)")
}

func TestRelease_ManifestError(t *testing.T) {
	h := newHarness(t)
	missing := filepath.Join(t.TempDir(), "package.json")
	h.releaser.ManifestOverride = &missing

	err := h.execute()

	var parseErr *manifest.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Zero(t, h.hostCreated)
}

func TestRelease_ConfigOwnerRepoOverride(t *testing.T) {
	h := newHarness(t)
	h.vcs.remoteURL = "https://gitlab.example.com/mirror/widget.git"
	h.releaser.LoadConfig = func(string) (*cmd.Config, error) {
		config := cmd.DefaultConfig()
		config.Owner = "acme"
		config.Repo = "widget"
		return config, nil
	}

	require.NoError(t, h.execute())
	assert.Contains(t, h.out.String(), "Creating release for acme/widget v1.2.0")
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "published", OutcomePublished.String())
	assert.Equal(t, "already-exists", OutcomeAlreadyExists.String())
	assert.Equal(t, "dry-run", OutcomeDryRun.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}
