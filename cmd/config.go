// Package cmd defines core data structures for release-tools configuration.
package cmd

// GitBackend selects how version-control queries are answered
type GitBackend string

const (
	// GitBackendExec shells out to the git binary
	GitBackendExec GitBackend = "exec"
	// GitBackendGoGit reads the repository in-process
	GitBackendGoGit GitBackend = "go-git"
)

// ParseGitBackend converts a string to GitBackend
func ParseGitBackend(s string) GitBackend {
	switch s {
	case "go-git", "gogit":
		return GitBackendGoGit
	default:
		return GitBackendExec // Default to exec for unknown values
	}
}

// Defaults used when the config file leaves a field empty
const (
	DefaultConfigFile      = ".release-tools.yaml"
	DefaultManifest        = "package.json"
	DefaultRemote          = "origin"
	DefaultMainBranch      = "main"
	DefaultTagPrefix       = "v"
	DefaultTokenEnv        = "GITHUB_TOKEN"
	DefaultChangelogFile   = "CHANGELOG.md"
	DefaultChangelogPreset = "angular"
)

// DefaultChangelogCommand is the conventional-changelog invocation without its arguments
var DefaultChangelogCommand = []string{"npx", "conventional-changelog"}

// Config represents the structure of .release-tools.yaml
type Config struct {
	Owner        string          `yaml:"owner,omitempty"` // Overrides owner detected from the remote
	Repo         string          `yaml:"repo,omitempty"`  // Overrides repo detected from the remote
	Remote       string          `yaml:"remote"`
	MainBranch   string          `yaml:"main_branch"`
	TagPrefix    string          `yaml:"tag_prefix"`
	TokenEnv     string          `yaml:"token_env"`
	APIURL       string          `yaml:"api_url,omitempty"`
	Manifest     string          `yaml:"manifest"`
	GitBackend   GitBackend      `yaml:"git_backend"`
	Changelog    ChangelogConfig `yaml:"changelog"`
	VersionFiles []VersionFile   `yaml:"version_files,omitempty"`
}

// ChangelogConfig configures the external changelog tool
type ChangelogConfig struct {
	File    string   `yaml:"file"`
	Preset  string   `yaml:"preset"`
	Command []string `yaml:"command,omitempty"`
}

// VersionFile describes one file whose embedded version is kept in sync with the manifest.
// Pattern must contain a named capture group "version".
type VersionFile struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Pattern string `yaml:"pattern"`
}

// DefaultVersionFiles are the menu label in main.gs and the CLAUDE.md section documenting it
var DefaultVersionFiles = []VersionFile{
	{
		Name:    "menu-label",
		Path:    "main.gs",
		Pattern: `ui\.createMenu\('Status Tracker v(?P<version>[\d.]+(?:-[0-9A-Za-z.]+)?)'\)`,
	},
	{
		Name: "docs-format",
		Path: "CLAUDE.md",
		Pattern: "- Location: `main\\.gs:\\d+` in the `onOpen\\(\\)` function\\n" +
			"- Format: `ui\\.createMenu\\('Status Tracker v(?P<version>[\\d.]+(?:-[0-9A-Za-z.]+)?)'\\)`",
	},
}

// DefaultConfig returns a config with every field set to its default
func DefaultConfig() *Config {
	config := &Config{}
	config.ApplyDefaults()
	return config
}

// ApplyDefaults fills empty fields with their defaults
func (c *Config) ApplyDefaults() {
	if c.Remote == "" {
		c.Remote = DefaultRemote
	}
	if c.MainBranch == "" {
		c.MainBranch = DefaultMainBranch
	}
	if c.TagPrefix == "" {
		c.TagPrefix = DefaultTagPrefix
	}
	if c.TokenEnv == "" {
		c.TokenEnv = DefaultTokenEnv
	}
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	c.GitBackend = ParseGitBackend(string(c.GitBackend))
	if c.Changelog.File == "" {
		c.Changelog.File = DefaultChangelogFile
	}
	if c.Changelog.Preset == "" {
		c.Changelog.Preset = DefaultChangelogPreset
	}
	if len(c.Changelog.Command) == 0 {
		c.Changelog.Command = append([]string(nil), DefaultChangelogCommand...)
	}
	if len(c.VersionFiles) == 0 {
		c.VersionFiles = append([]VersionFile(nil), DefaultVersionFiles...)
	}
}

// TagName returns the release tag for a version, e.g. "v1.2.3"
func (c *Config) TagName(version string) string {
	return c.TagPrefix + version
}
