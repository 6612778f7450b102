// Package gitrepo contains helpers for interrogating local Git repositories.
//
// It exposes RepositoryInspector for resolving commitishes, checking tag
// presence, and deriving the GitHub repository identity from the origin
// remote, all without shelling out to the git CLI.
package gitrepo
