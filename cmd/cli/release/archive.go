package release

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/releasekit/internal/artifacts"
	"github.com/temirov/releasekit/internal/dependencies"
	"github.com/temirov/releasekit/internal/githubauth"
	"github.com/temirov/releasekit/internal/githubcli"
	"github.com/temirov/releasekit/internal/releases"
	flagutils "github.com/temirov/releasekit/internal/utils/flags"
)

const (
	archiveUseConstant              = "archive"
	archiveShortDescription         = "Mirror a release into the archive repository"
	archiveLongDescription          = "archive republishes the built artifacts and notes into the archive repository using the dedicated archive token, preserving nightly builds that would otherwise be pruned."
	archiveExampleConstant          = "releasekit release archive --archive-repo owner/builds --version 2024.08.24 --notes-file archive_notes.md"
	archiveRepoFlagNameConstant     = "archive-repo"
	archiveRepoFlagUsageConstant    = "Archive repository in owner/name form"
	missingArchiveRepoErrorMessage  = "archive repository is required"
	missingArchiveTokenErrorMessage = "archive token is required; set " + githubauth.EnvArchiveToken
	archiveSuccessTemplateConstant  = "ARCHIVED: %s -> %s\n"
)

// ArchiveCommandBuilder assembles the release archive command.
type ArchiveCommandBuilder struct {
	LoggerProvider               LoggerProvider
	CommandExecutor              dependencies.CommandExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	EnvironmentLookup            map[string]string
}

// Build constructs the archive command.
func (builder *ArchiveCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     archiveUseConstant,
		Short:   archiveShortDescription,
		Long:    archiveLongDescription,
		Example: archiveExampleConstant,
		RunE:    builder.run,
	}

	command.Flags().String(archiveRepoFlagNameConstant, "", archiveRepoFlagUsageConstant)
	command.Flags().String(versionFlagNameConstant, "", versionFlagUsageConstant)
	command.Flags().String(notesFileFlagNameConstant, "", notesFileFlagUsageConstant)
	command.Flags().String(artifactsDirFlagNameConstant, "", artifactsDirFlagUsageConstant)

	return command, nil
}

func (builder *ArchiveCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := resolveLogger(builder.LoggerProvider)

	archiveRepository := configuration.ArchiveRepository
	if flagValue, flagError := command.Flags().GetString(archiveRepoFlagNameConstant); flagError == nil && command.Flags().Changed(archiveRepoFlagNameConstant) {
		archiveRepository = strings.TrimSpace(flagValue)
	}
	if len(archiveRepository) == 0 {
		_ = command.Help()
		return errors.New(missingArchiveRepoErrorMessage)
	}

	releaseVersion, _ := command.Flags().GetString(versionFlagNameConstant)
	releaseVersion = strings.TrimSpace(releaseVersion)
	if len(releaseVersion) == 0 {
		_ = command.Help()
		return errors.New(missingVersionErrorMessage)
	}

	notesFilePath, _ := command.Flags().GetString(notesFileFlagNameConstant)
	notesFilePath = strings.TrimSpace(notesFilePath)
	if len(notesFilePath) == 0 {
		_ = command.Help()
		return errors.New(missingNotesFileErrorMessage)
	}

	archiveToken, tokenFound := githubauth.ResolveArchiveToken(builder.EnvironmentLookup)
	if !tokenFound {
		return errors.New(missingArchiveTokenErrorMessage)
	}

	dryRun := flagutils.ResolveBoolFlag(command, flagutils.DryRunFlagName, configuration.DryRun)

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

	releaseService, serviceError := releases.NewService(releases.ServiceDependencies{
		Logger:       logger,
		GitExecutor:  commandExecutor,
		GitHubClient: githubClient,
	})
	if serviceError != nil {
		return serviceError
	}

	artifactsDirectory := configuration.ArtifactsDirectory
	if flagValue, flagError := command.Flags().GetString(artifactsDirFlagNameConstant); flagError == nil && command.Flags().Changed(artifactsDirFlagNameConstant) {
		artifactsDirectory = strings.TrimSpace(flagValue)
	}

	collection, collectionError := artifacts.NewService(logger).Collect(artifacts.CollectionOptions{
		Directory:  artifactsDirectory,
		AllowEmpty: true,
	})
	if collectionError != nil {
		return collectionError
	}

	archiveError := releaseService.Archive(command.Context(), releases.ArchiveOptions{
		ArchiveRepository: archiveRepository,
		Token:             archiveToken,
		TagName:           releaseVersion,
		Title:             releaseVersion,
		NotesFilePath:     notesFilePath,
		AssetPaths:        collection.AllPaths(),
		DryRun:            dryRun,
	})
	if archiveError != nil {
		return archiveError
	}

	fmt.Fprintf(command.OutOrStdout(), archiveSuccessTemplateConstant, archiveRepository, releaseVersion)
	return nil
}

func (builder *ArchiveCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
