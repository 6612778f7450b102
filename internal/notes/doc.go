// Package notes renders release note documents from repository history.
//
// The service shells out to git through execshell to find the previous tag
// and the commits since it, then writes release, prerelease, and archive
// note variants consumed by the publishing workflow.
package notes
