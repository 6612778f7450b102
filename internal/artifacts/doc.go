// Package artifacts collects built release files and produces the
// SHA2-256SUMS and SHA2-512SUMS checksum manifests uploaded with them.
package artifacts
