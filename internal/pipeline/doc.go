// Package pipeline orders the release publishing steps: verifying the
// repository, collecting artifacts, generating notes, archiving nightly
// builds, pruning the previous nightly release, and publishing.
//
// The step order is data-driven so deployments can override it with a YAML
// manifest, while DefaultConfiguration reflects the standard publishing flow.
package pipeline
