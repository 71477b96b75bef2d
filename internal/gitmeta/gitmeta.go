// Package gitmeta reads repository metadata for scan provenance.
package gitmeta

import (
	git "github.com/go-git/go-git/v5"
)

// HeadSHA returns the HEAD commit hash of the repository containing dir, or
// "" when dir is not inside a git repository. Scans record provenance on a
// best-effort basis; failures here are never surfaced to callers.
func HeadSHA(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
