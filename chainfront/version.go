package chainfront

import (
	"strings"
)

const (
	DefaultFrontendRepo = "https://github.com/blockscout/frontend"
	DefaultBackendRepo  = "https://github.com/blockscout/blockscout"
)

// backendCommitSep separates the release tag from the commit hash in backend
// version strings, e.g. "v5.2.0-beta.+commit.1ce1a9a6".
const backendCommitSep = ".+commit."

// VersionLink is a labeled link to a source tree or commit.
type VersionLink struct {
	Text string
	URL  string
}

// FrontendVersionLink builds the link to the frontend sources. The version is
// preferred over the commit. It returns false if neither is known.
func FrontendVersionLink(repo, version, commit string) (VersionLink, bool) {
	repo = strings.TrimSuffix(repo, "/")

	switch {
	case version != "":
		return VersionLink{Text: version, URL: repo + "/tree/" + version}, true
	case commit != "":
		return VersionLink{Text: commit, URL: repo + "/commit/" + commit}, true
	default:
		return VersionLink{}, false
	}
}

// BackendVersionLink builds the link to the backend sources from the version
// string reported by the backend. Versions carrying a commit hash link to the
// commit, plain tags link to the tree.
func BackendVersionLink(repo, version string) (VersionLink, bool) {
	if version == "" {
		return VersionLink{}, false
	}

	repo = strings.TrimSuffix(repo, "/")

	parts := strings.SplitN(version, backendCommitSep, 2)
	if len(parts) == 2 && parts[1] != "" {
		return VersionLink{Text: version, URL: repo + "/commit/" + parts[1]}, true
	}

	if parts[0] == "" {
		return VersionLink{}, false
	}

	return VersionLink{Text: version, URL: repo + "/tree/" + parts[0]}, true
}
