// Package releases publishes GitHub releases and maintains the rolling
// nightly release by pruning its predecessor and mirroring builds into the
// archive repository.
package releases
