package artifacts

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// SHA256ManifestFileName is the checksum manifest produced with SHA2-256.
	SHA256ManifestFileName = "SHA2-256SUMS"
	// SHA512ManifestFileName is the checksum manifest produced with SHA2-512.
	SHA512ManifestFileName = "SHA2-512SUMS"

	manifestFilePermissionsConstant      = 0o644
	manifestLineTemplateConstant         = "%s  %s\n"
	directoryRequiredMessageConstant     = "artifacts directory must be provided"
	noArtifactsMessageTemplateConstant   = "no artifacts found in %s"
	directoryReadErrorTemplateConstant   = "unable to read artifacts directory %s: %w"
	artifactOpenErrorTemplateConstant    = "unable to open artifact %s: %w"
	artifactHashErrorTemplateConstant    = "unable to hash artifact %s: %w"
	manifestWriteErrorTemplateConstant   = "unable to write manifest %s: %w"
	collectedArtifactsLogMessageConstant = "Collected release artifacts"
	artifactCountLogFieldConstant        = "artifact_count"
	artifactsDirectoryLogFieldConstant   = "artifacts_directory"
)

var (
	// ErrDirectoryRequired indicates the collection request omitted the artifacts directory.
	ErrDirectoryRequired = errors.New(directoryRequiredMessageConstant)
)

// EmptyDirectoryError indicates no release artifacts were present.
type EmptyDirectoryError struct {
	Directory string
}

// Error describes the empty artifacts directory.
func (emptyError EmptyDirectoryError) Error() string {
	return fmt.Sprintf(noArtifactsMessageTemplateConstant, emptyError.Directory)
}

// CollectionOptions configures artifact collection.
type CollectionOptions struct {
	Directory  string
	AllowEmpty bool
}

// Collection lists the artifact files and the checksum manifests covering them.
type Collection struct {
	ArtifactPaths []string
	ManifestPaths []string
}

// AllPaths returns artifacts followed by manifests, the upload order used for releases.
func (collection Collection) AllPaths() []string {
	combinedPaths := make([]string, 0, len(collection.ArtifactPaths)+len(collection.ManifestPaths))
	combinedPaths = append(combinedPaths, collection.ArtifactPaths...)
	combinedPaths = append(combinedPaths, collection.ManifestPaths...)
	return combinedPaths
}

// Service enumerates release artifacts and writes checksum manifests.
type Service struct {
	logger *zap.Logger
}

// NewService constructs an artifacts Service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Collect enumerates the regular files in the artifacts directory and writes
// SHA2-256 and SHA2-512 checksum manifests alongside them. Pre-existing
// manifests are replaced rather than hashed into themselves.
func (service *Service) Collect(options CollectionOptions) (Collection, error) {
	trimmedDirectory := strings.TrimSpace(options.Directory)
	if len(trimmedDirectory) == 0 {
		return Collection{}, ErrDirectoryRequired
	}

	directoryEntries, readError := os.ReadDir(trimmedDirectory)
	if readError != nil {
		if options.AllowEmpty && errors.Is(readError, fs.ErrNotExist) {
			return Collection{}, nil
		}
		return Collection{}, fmt.Errorf(directoryReadErrorTemplateConstant, trimmedDirectory, readError)
	}

	artifactNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.Type().IsRegular() {
			continue
		}
		entryName := directoryEntry.Name()
		if entryName == SHA256ManifestFileName || entryName == SHA512ManifestFileName {
			continue
		}
		artifactNames = append(artifactNames, entryName)
	}
	sort.Strings(artifactNames)

	if len(artifactNames) == 0 {
		if options.AllowEmpty {
			return Collection{}, nil
		}
		return Collection{}, EmptyDirectoryError{Directory: trimmedDirectory}
	}

	manifestDefinitions := []struct {
		fileName    string
		constructor func() hash.Hash
	}{
		{fileName: SHA256ManifestFileName, constructor: sha256.New},
		{fileName: SHA512ManifestFileName, constructor: sha512.New},
	}

	collection := Collection{ArtifactPaths: make([]string, 0, len(artifactNames))}
	for _, artifactName := range artifactNames {
		collection.ArtifactPaths = append(collection.ArtifactPaths, filepath.Join(trimmedDirectory, artifactName))
	}

	for _, manifestDefinition := range manifestDefinitions {
		manifestPath := filepath.Join(trimmedDirectory, manifestDefinition.fileName)
		writeError := service.writeManifest(trimmedDirectory, artifactNames, manifestPath, manifestDefinition.constructor)
		if writeError != nil {
			return Collection{}, writeError
		}
		collection.ManifestPaths = append(collection.ManifestPaths, manifestPath)
	}

	service.logger.Debug(collectedArtifactsLogMessageConstant,
		zap.Int(artifactCountLogFieldConstant, len(artifactNames)),
		zap.String(artifactsDirectoryLogFieldConstant, trimmedDirectory),
	)

	return collection, nil
}

func (service *Service) writeManifest(directory string, artifactNames []string, manifestPath string, hashConstructor func() hash.Hash) error {
	var manifestBuilder strings.Builder
	for _, artifactName := range artifactNames {
		artifactDigest, digestError := service.hashArtifact(filepath.Join(directory, artifactName), hashConstructor())
		if digestError != nil {
			return digestError
		}
		manifestBuilder.WriteString(fmt.Sprintf(manifestLineTemplateConstant, artifactDigest, artifactName))
	}

	writeError := os.WriteFile(manifestPath, []byte(manifestBuilder.String()), manifestFilePermissionsConstant)
	if writeError != nil {
		return fmt.Errorf(manifestWriteErrorTemplateConstant, manifestPath, writeError)
	}

	return nil
}

func (service *Service) hashArtifact(artifactPath string, digest hash.Hash) (string, error) {
	artifactFile, openError := os.Open(artifactPath)
	if openError != nil {
		return "", fmt.Errorf(artifactOpenErrorTemplateConstant, artifactPath, openError)
	}
	defer artifactFile.Close()

	_, copyError := io.Copy(digest, artifactFile)
	if copyError != nil {
		return "", fmt.Errorf(artifactHashErrorTemplateConstant, artifactPath, copyError)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}
