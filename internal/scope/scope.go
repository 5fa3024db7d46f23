// Package scope auto-detects a default memory scope from the caller's
// git remote, so the CLI and MCP server can partition facts and
// memories by project without the caller naming one explicitly.
package scope

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Detect returns the scope string ("host/owner/repo") for the git
// repository containing path, derived from its "origin" remote.
func Detect(path string) (string, error) {
	gitDir, err := findGitDir(path)
	if err != nil {
		return "", err
	}

	cmd := exec.Command("git", "-C", gitDir, "remote", "get-url", "origin")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("scope: failed to get remote URL: %w", err)
	}

	return parseRemoteURL(strings.TrimSpace(string(output)))
}

// DetectCurrent detects the scope for the current working directory. It
// returns an empty string and a nil error when the cwd is not inside a
// git repository or carries no "origin" remote, since the caller's
// scope is then simply unset rather than an error condition.
func DetectCurrent() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("scope: failed to get current directory: %w", err)
	}

	s, err := Detect(cwd)
	if err != nil {
		return "", nil
	}
	return s, nil
}

func findGitDir(startPath string) (string, error) {
	path := startPath
	for {
		gitPath := filepath.Join(path, ".git")
		if info, err := os.Stat(gitPath); err == nil && info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", fmt.Errorf("scope: not a git repository")
		}
		path = parent
	}
}

// parseRemoteURL parses a git remote URL into a "host/owner/repo" scope
// string. Supports both HTTPS and SSH formats:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
func parseRemoteURL(url string) (string, error) {
	url = strings.TrimSpace(url)
	url = strings.TrimSuffix(url, ".git")

	if strings.HasPrefix(url, "git@") {
		rest := strings.TrimPrefix(url, "git@")
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("scope: invalid SSH URL format: %s", url)
		}
		host := parts[0]
		pathParts := strings.Split(parts[1], "/")
		if len(pathParts) != 2 {
			return "", fmt.Errorf("scope: invalid repository path: %s", parts[1])
		}
		return fmt.Sprintf("%s/%s/%s", host, pathParts[0], pathParts[1]), nil
	}

	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		url = strings.TrimPrefix(url, "https://")
		url = strings.TrimPrefix(url, "http://")

		parts := strings.Split(url, "/")
		if len(parts) < 3 {
			return "", fmt.Errorf("scope: invalid HTTPS URL format: %s", url)
		}
		return fmt.Sprintf("%s/%s/%s", parts[0], parts[1], parts[2]), nil
	}

	return "", fmt.Errorf("scope: unsupported URL format: %s", url)
}
