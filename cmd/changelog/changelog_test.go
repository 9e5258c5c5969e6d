package changelog

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/changelog"
	"github.com/alan/release-tools/internal/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	args [][]string
	err  error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.args = append(f.args, append([]string{name}, args...))
	return f.err
}

func newTestBase(t *testing.T, version string) (*commands.BaseCommand, string) {
	t.Helper()
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "package.json")
	if version != "" {
		require.NoError(t, os.WriteFile(manifestPath, []byte(`{"version": "`+version+`"}`), 0644))
	}
	changelogPath := filepath.Join(dir, "CHANGELOG.md")
	configFile := filepath.Join(dir, ".release-tools.yaml")

	return &commands.BaseCommand{
		ConfigFile:       &configFile,
		ManifestOverride: &manifestPath,
		LoadConfig: func(string) (*cmd.Config, error) {
			config := cmd.DefaultConfig()
			config.Changelog.File = changelogPath
			return config, nil
		},
	}, changelogPath
}

func TestChangelogCmd(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		runnerErr  error
		wantErr    string
		wantCalls  int
		wantOutput string
	}{
		{
			name:       "generates changelog",
			version:    "1.4.0",
			wantCalls:  1,
			wantOutput: "for version 1.4.0",
		},
		{
			name:      "tool fails",
			version:   "1.4.0",
			runnerErr: errors.New("npx conventional-changelog failed: exit status 1"),
			wantErr:   "error generating changelog",
			wantCalls: 1,
		},
		{
			name:      "missing manifest",
			wantErr:   "failed to read version",
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc, changelogPath := newTestBase(t, tt.version)
			runner := &fakeRunner{err: tt.runnerErr}

			var out bytes.Buffer
			cobraCmd := newCommand(bc, runner)
			cobraCmd.SetOut(&out)
			cobraCmd.SetErr(&out)
			cobraCmd.SilenceErrors = true
			cobraCmd.SetArgs([]string{})

			err := cobraCmd.Execute()

			assert.Len(t, runner.args, tt.wantCalls)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.NotContains(t, out.String(), "✅")
				return
			}

			require.NoError(t, err)
			assert.Contains(t, out.String(), "📝 Generating changelog...")
			assert.Contains(t, out.String(), tt.wantOutput)
			assert.Equal(t, []string{"npx", "conventional-changelog", "-p", "angular", "-i", changelogPath, "-s"}, runner.args[0])

			data, err := os.ReadFile(changelogPath)
			require.NoError(t, err)
			assert.Equal(t, changelog.Header, string(data))
		})
	}
}

func TestNewChangelogCmd(t *testing.T) {
	configFile := ".release-tools.yaml"
	manifestPath := ""
	cobraCmd := NewChangelogCmd(&configFile, &manifestPath, func(string) (*cmd.Config, error) { return cmd.DefaultConfig(), nil })

	assert.Equal(t, "changelog", cobraCmd.Use)
	assert.Contains(t, cobraCmd.Long, "Examples:")
	assert.True(t, cobraCmd.SilenceUsage)
}
