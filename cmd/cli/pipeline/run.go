package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/releasekit/internal/artifacts"
	"github.com/temirov/releasekit/internal/dependencies"
	"github.com/temirov/releasekit/internal/githubauth"
	"github.com/temirov/releasekit/internal/githubcli"
	notesservice "github.com/temirov/releasekit/internal/notes"
	"github.com/temirov/releasekit/internal/pipeline"
	"github.com/temirov/releasekit/internal/releases"
	"github.com/temirov/releasekit/internal/utils"
	flagutils "github.com/temirov/releasekit/internal/utils/flags"
)

const (
	commandUseConstant                 = "run [manifest]"
	commandShortDescription            = "Run the full release publishing pipeline"
	commandLongDescription             = "run executes the release pipeline end to end: it verifies the repository, collects artifacts with checksum manifests, generates notes, archives nightly builds, prunes the previous nightly release, and publishes. An optional manifest argument overrides the step order."
	commandExampleConstant             = "releasekit run --nightly --version 2024.08.24 --artifacts-dir dist"
	nightlyFlagNameConstant            = "nightly"
	nightlyFlagUsageConstant           = "Publish as the rolling nightly prerelease"
	versionFlagNameConstant            = "version"
	versionFlagUsageConstant           = "Release version used for the tag and title"
	targetFlagNameConstant             = "target"
	targetFlagUsageConstant            = "Commitish the release points at (defaults to HEAD)"
	repositoryFlagNameConstant         = "repository"
	repositoryFlagUsageConstant        = "Target repository in owner/name form (defaults to the origin remote)"
	repositoryPathFlagNameConstant     = "repository-path"
	repositoryPathFlagUsageConstant    = "Path to the local repository clone"
	artifactsDirFlagNameConstant       = "artifacts-dir"
	artifactsDirFlagUsageConstant      = "Directory containing the built release artifacts"
	notesDirFlagNameConstant           = "notes-dir"
	notesDirFlagUsageConstant          = "Directory receiving the generated note files"
	archiveRepoFlagNameConstant        = "archive-repo"
	archiveRepoFlagUsageConstant       = "Archive repository in owner/name form"
	allowEmptyFlagNameConstant         = "allow-empty-artifacts"
	allowEmptyFlagUsageConstant        = "Permit publishing without artifacts"
	missingVersionErrorMessage         = "release version is required"
	loadManifestErrorTemplateConstant  = "unable to load pipeline manifest: %w"
	buildOperationsErrorTemplate       = "unable to build pipeline operations: %w"
	pipelineSummaryTemplateConstant    = "RELEASED: %s -> %s (commit %s)\n"
	archiveTokenMissingWarningConstant = "Archive repository configured without archive token, archive step will be skipped"
	githubTokenMissingWarningConstant  = "No GitHub token detected, gh will rely on its stored credentials"
)

// LoggerProvider supplies the logger configured by the root command.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures persisted settings for the run command.
type CommandConfiguration struct {
	Repository         string `mapstructure:"repository"`
	RepositoryPath     string `mapstructure:"repository_path"`
	ArtifactsDirectory string `mapstructure:"artifacts_dir"`
	NotesDirectory     string `mapstructure:"notes_dir"`
	ArchiveRepository  string `mapstructure:"archive_repository"`
	DryRun             bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration returns baseline values for the run command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath:     ".",
		ArtifactsDirectory: "dist",
		NotesDirectory:     ".",
	}
}

// DefaultConfigurationValues produces Viper defaults for the run command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + ".repository":         defaults.Repository,
		rootKey + ".repository_path":    defaults.RepositoryPath,
		rootKey + ".artifacts_dir":      defaults.ArtifactsDirectory,
		rootKey + ".notes_dir":          defaults.NotesDirectory,
		rootKey + ".archive_repository": defaults.ArchiveRepository,
		rootKey + ".dry_run":            defaults.DryRun,
	}
}

// Sanitize normalizes configuration values and restores required defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = "."
	}
	sanitized.ArtifactsDirectory = strings.TrimSpace(configuration.ArtifactsDirectory)
	if len(sanitized.ArtifactsDirectory) == 0 {
		sanitized.ArtifactsDirectory = "dist"
	}
	sanitized.NotesDirectory = strings.TrimSpace(configuration.NotesDirectory)
	if len(sanitized.NotesDirectory) == 0 {
		sanitized.NotesDirectory = "."
	}
	sanitized.ArchiveRepository = strings.TrimSpace(configuration.ArchiveRepository)
	return sanitized
}

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	CommandExecutor              dependencies.CommandExecutor
	RepositoryInspector          dependencies.RepositoryInspector
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	EnvironmentLookup            map[string]string
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	command.Flags().Bool(nightlyFlagNameConstant, false, nightlyFlagUsageConstant)
	command.Flags().String(versionFlagNameConstant, "", versionFlagUsageConstant)
	command.Flags().String(targetFlagNameConstant, "", targetFlagUsageConstant)
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().String(repositoryPathFlagNameConstant, "", repositoryPathFlagUsageConstant)
	command.Flags().String(artifactsDirFlagNameConstant, "", artifactsDirFlagUsageConstant)
	command.Flags().String(notesDirFlagNameConstant, "", notesDirFlagUsageConstant)
	command.Flags().String(archiveRepoFlagNameConstant, "", archiveRepoFlagUsageConstant)
	command.Flags().Bool(allowEmptyFlagNameConstant, false, allowEmptyFlagUsageConstant)
	command.Flags().Bool(flagutils.DryRunFlagName, false, flagutils.DryRunFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	releaseVersion, _ := command.Flags().GetString(versionFlagNameConstant)
	releaseVersion = strings.TrimSpace(releaseVersion)
	if len(releaseVersion) == 0 {
		_ = command.Help()
		return errors.New(missingVersionErrorMessage)
	}

	pipelineConfiguration := pipeline.DefaultConfiguration()
	if len(arguments) > 0 {
		loadedConfiguration, loadError := pipeline.LoadConfiguration(arguments[0])
		if loadError != nil {
			return fmt.Errorf(loadManifestErrorTemplateConstant, loadError)
		}
		pipelineConfiguration = loadedConfiguration
	}

	operations, operationsError := pipelineConfiguration.BuildOperations()
	if operationsError != nil {
		return fmt.Errorf(buildOperationsErrorTemplate, operationsError)
	}

	humanReadable := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadable = builder.HumanReadableLoggingProvider()
	}

	commandExecutor, executorError := dependencies.ResolveCommandExecutor(builder.CommandExecutor, logger, humanReadable)
	if executorError != nil {
		return executorError
	}

	githubClient, clientError := githubcli.NewClient(commandExecutor)
	if clientError != nil {
		return clientError
	}

	notesService, notesServiceError := notesservice.NewService(logger, commandExecutor)
	if notesServiceError != nil {
		return notesServiceError
	}

	releaseService, releaseServiceError := releases.NewService(releases.ServiceDependencies{
		Logger:       logger,
		GitExecutor:  commandExecutor,
		GitHubClient: githubClient,
	})
	if releaseServiceError != nil {
		return releaseServiceError
	}

	inputs := builder.resolveInputs(command, configuration, releaseVersion, logger)
	dryRun := flagutils.ResolveBoolFlag(command, flagutils.DryRunFlagName, configuration.DryRun)

	executor := pipeline.NewExecutor(operations, pipeline.Dependencies{
		Logger:              logger,
		NotesService:        notesService,
		ArtifactsService:    artifacts.NewService(logger),
		ReleaseService:      releaseService,
		RepositoryInspector: dependencies.ResolveRepositoryInspector(builder.RepositoryInspector),
		Output:              utils.NewFlushingWriter(command.OutOrStdout()),
		Errors:              utils.NewFlushingWriter(command.ErrOrStderr()),
	})

	state, executionError := executor.Execute(command.Context(), inputs, pipeline.RuntimeOptions{DryRun: dryRun})
	if executionError != nil {
		return executionError
	}

	fmt.Fprintf(command.OutOrStdout(), pipelineSummaryTemplateConstant, state.Repository, state.ReleaseTag, state.ResolvedCommit)
	return nil
}

func (builder *CommandBuilder) resolveInputs(command *cobra.Command, configuration CommandConfiguration, releaseVersion string, logger *zap.Logger) pipeline.Inputs {
	if _, tokenFound := githubauth.ResolveToken(builder.EnvironmentLookup); !tokenFound {
		logger.Warn(githubTokenMissingWarningConstant)
	}

	nightly, _ := command.Flags().GetBool(nightlyFlagNameConstant)
	targetCommitish, _ := command.Flags().GetString(targetFlagNameConstant)
	allowEmptyArtifacts, _ := command.Flags().GetBool(allowEmptyFlagNameConstant)

	repository := configuration.Repository
	if flagValue, flagError := command.Flags().GetString(repositoryFlagNameConstant); flagError == nil && command.Flags().Changed(repositoryFlagNameConstant) {
		repository = strings.TrimSpace(flagValue)
	}

	repositoryPath := configuration.RepositoryPath
	if flagValue, flagError := command.Flags().GetString(repositoryPathFlagNameConstant); flagError == nil && command.Flags().Changed(repositoryPathFlagNameConstant) {
		repositoryPath = strings.TrimSpace(flagValue)
	}

	artifactsDirectory := configuration.ArtifactsDirectory
	if flagValue, flagError := command.Flags().GetString(artifactsDirFlagNameConstant); flagError == nil && command.Flags().Changed(artifactsDirFlagNameConstant) {
		artifactsDirectory = strings.TrimSpace(flagValue)
	}

	notesDirectory := configuration.NotesDirectory
	if flagValue, flagError := command.Flags().GetString(notesDirFlagNameConstant); flagError == nil && command.Flags().Changed(notesDirFlagNameConstant) {
		notesDirectory = strings.TrimSpace(flagValue)
	}

	archiveRepository := configuration.ArchiveRepository
	if flagValue, flagError := command.Flags().GetString(archiveRepoFlagNameConstant); flagError == nil && command.Flags().Changed(archiveRepoFlagNameConstant) {
		archiveRepository = strings.TrimSpace(flagValue)
	}

	archiveToken := ""
	if len(archiveRepository) > 0 {
		resolvedToken, tokenFound := githubauth.ResolveArchiveToken(builder.EnvironmentLookup)
		if tokenFound {
			archiveToken = resolvedToken
		} else {
			logger.Warn(archiveTokenMissingWarningConstant)
		}
	}

	return pipeline.Inputs{
		Nightly:             nightly,
		Version:             releaseVersion,
		TargetCommitish:     strings.TrimSpace(targetCommitish),
		Repository:          repository,
		RepositoryPath:      repositoryPath,
		ArtifactsDirectory:  artifactsDirectory,
		NotesDirectory:      notesDirectory,
		ArchiveRepository:   archiveRepository,
		ArchiveToken:        archiveToken,
		AllowEmptyArtifacts: allowEmptyArtifacts,
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if logger := builder.LoggerProvider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}
