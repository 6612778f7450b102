package release

import "strings"

const (
	configurationRepositoryKeyConstant        = "repository"
	configurationRemoteKeyConstant            = "remote"
	configurationArtifactsDirectoryKey        = "artifacts_dir"
	configurationNotesDirectoryKeyConstant    = "notes_dir"
	configurationArchiveRepositoryKeyConstant = "archive_repository"
	configurationDryRunKeyConstant            = "dry_run"
	defaultRemoteNameConstant                 = "origin"
	defaultArtifactsDirectoryConstant         = "dist"
	defaultNotesDirectoryConstant             = "."
)

// CommandConfiguration captures persisted settings shared by the release subcommands.
type CommandConfiguration struct {
	Repository         string `mapstructure:"repository"`
	RemoteName         string `mapstructure:"remote"`
	ArtifactsDirectory string `mapstructure:"artifacts_dir"`
	NotesDirectory     string `mapstructure:"notes_dir"`
	ArchiveRepository  string `mapstructure:"archive_repository"`
	DryRun             bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration returns baseline values for the release subcommands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:         defaultRemoteNameConstant,
		ArtifactsDirectory: defaultArtifactsDirectoryConstant,
		NotesDirectory:     defaultNotesDirectoryConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the release subcommands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRepositoryKeyConstant:        defaults.Repository,
		rootKey + "." + configurationRemoteKeyConstant:            defaults.RemoteName,
		rootKey + "." + configurationArtifactsDirectoryKey:        defaults.ArtifactsDirectory,
		rootKey + "." + configurationNotesDirectoryKeyConstant:    defaults.NotesDirectory,
		rootKey + "." + configurationArchiveRepositoryKeyConstant: defaults.ArchiveRepository,
		rootKey + "." + configurationDryRunKeyConstant:            defaults.DryRun,
	}
}

// Sanitize normalizes configuration values and restores required defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	sanitized.ArtifactsDirectory = strings.TrimSpace(configuration.ArtifactsDirectory)
	if len(sanitized.ArtifactsDirectory) == 0 {
		sanitized.ArtifactsDirectory = defaultArtifactsDirectoryConstant
	}
	sanitized.NotesDirectory = strings.TrimSpace(configuration.NotesDirectory)
	if len(sanitized.NotesDirectory) == 0 {
		sanitized.NotesDirectory = defaultNotesDirectoryConstant
	}
	sanitized.ArchiveRepository = strings.TrimSpace(configuration.ArchiveRepository)
	return sanitized
}
