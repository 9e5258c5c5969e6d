package github

import (
	"fmt"
	"regexp"
	"strings"
)

var remotePatterns = []*regexp.Regexp{
	// SSH format: git@github.com:org/repo.git
	regexp.MustCompile(`^git@github\.com:([^/]+)/([^/]+?)(?:\.git)?/?$`),
	// SSH URL format: ssh://git@github.com/org/repo.git
	regexp.MustCompile(`^ssh://(?:[^@/]+@)?github\.com(?::\d+)?/([^/]+)/([^/]+?)(?:\.git)?/?$`),
	// HTTPS format: https://github.com/org/repo.git, optionally with credentials
	regexp.MustCompile(`^(?:https?|git)://(?:[^@/]+@)?github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`),
}

// ParseRepositoryURL extracts owner and repository name from the GitHub remote URL shapes git accepts
func ParseRepositoryURL(remoteURL string) (Repository, error) {
	remoteURL = strings.TrimSpace(remoteURL)

	for _, pattern := range remotePatterns {
		if matches := pattern.FindStringSubmatch(remoteURL); len(matches) == 3 {
			return Repository{Owner: matches[1], Name: matches[2]}, nil
		}
	}

	return Repository{}, fmt.Errorf("unable to parse GitHub remote URL: %s", remoteURL)
}
