// Package githubcli wraps the GitHub CLI for releasekit workflows.
//
// It layers typed request and response structures for gh release and repo
// subcommands, exposes interfaces consumed by other packages, and integrates
// with execshell so interactions with GitHub can be mocked during testing.
package githubcli
