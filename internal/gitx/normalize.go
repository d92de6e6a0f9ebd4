package gitx

import (
	"strings"
)

// DefaultBaseURL is the hosting prefix used when none is configured.
const DefaultBaseURL = "https://github.com"

// RemoteURL joins a hosting base URL and a repository name into a clone URL.
//
// Examples:
//
//	https://github.com, owner/project  → https://github.com/owner/project
//	https://github.com/, /owner/project/ → https://github.com/owner/project
//	"", owner/project                  → https://github.com/owner/project
func RemoteURL(baseURL, name string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/" + NormalizeName(name)
}

// NormalizeName trims whitespace, surrounding slashes, and a trailing ".git"
// from a repository name.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, "/")
	return strings.TrimSuffix(name, ".git")
}
