package model

import (
	"fmt"
	"regexp"
	"strings"
)

// matches .../github.com/<owner>/<repo> with optional .git suffix and trailing slash
var repoURLPattern = regexp.MustCompile(`github\.com/([^/\s]+)/([^/\s]+)`)

// ExtractRepoInfo parses a GitHub repository URL and returns its owner and
// repository name. The trailing ".git" suffix is stripped from the name.
func ExtractRepoInfo(repoURL string) (string, string, error) {
	match := repoURLPattern.FindStringSubmatch(repoURL)

	if match == nil {
		return "", "", fmt.Errorf("INVALID_REPOSITORY_URL")
	}

	owner := match[1]
	repo := strings.TrimSuffix(match[2], ".git")

	if repo == "" {
		return "", "", fmt.Errorf("INVALID_REPOSITORY_URL")
	}

	return owner, repo, nil
}
