package cmd

import "fmt"

// ConfigurationError reports a problem the user must fix before the command can run,
// such as a missing credential or an unrecognized remote URL.
type ConfigurationError struct {
	Message string
	Hint    string // Optional remediation shown after the error
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// ConflictError reports that a release tag already exists but points at a different commit
type ConflictError struct {
	Tag       string
	TagCommit string
	Branch    string
	BranchRef string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("tag %s already exists at %s but %s is at %s; refusing to publish a release for it",
		e.Tag, shortSHA(e.TagCommit), e.Branch, shortSHA(e.BranchRef))
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
