package release

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/releasekit/internal/artifacts"
	"github.com/temirov/releasekit/internal/dependencies"
	"github.com/temirov/releasekit/internal/githubcli"
	"github.com/temirov/releasekit/internal/releases"
	flagutils "github.com/temirov/releasekit/internal/utils/flags"
)

const (
	publishUseConstant              = "publish"
	publishShortDescription         = "Publish a GitHub release with artifacts and notes"
	publishLongDescription          = "publish uploads the built artifacts, their checksum manifests, and the release notes to a new GitHub release. Nightly builds publish under the rolling nightly tag as prereleases."
	publishExampleConstant          = "releasekit release publish --version 2024.08.24 --notes-file release_notes.md"
	repositoryFlagNameConstant      = "repository"
	repositoryFlagUsageConstant     = "Target repository in owner/name form (defaults to the origin remote)"
	versionFlagNameConstant         = "version"
	versionFlagUsageConstant        = "Release version used for the tag and title"
	nightlyFlagNameConstant         = "nightly"
	nightlyFlagUsageConstant        = "Publish as the rolling nightly prerelease"
	targetFlagNameConstant          = "target"
	targetFlagUsageConstant         = "Commitish the release points at (defaults to HEAD)"
	notesFileFlagNameConstant       = "notes-file"
	notesFileFlagUsageConstant      = "Path to the release notes markdown file"
	artifactsDirFlagNameConstant    = "artifacts-dir"
	artifactsDirFlagUsageConstant   = "Directory containing the built release artifacts"
	repositoryPathFlagNameConstant  = "repository-path"
	repositoryPathFlagUsageConstant = "Path to the local repository clone"
	nightlyTagNameConstant          = "nightly"
	missingVersionErrorMessage      = "release version is required"
	missingNotesFileErrorMessage    = "release notes file is required"
	publishSuccessTemplateConstant  = "PUBLISHED: %s -> %s\n"
)

// PublishCommandBuilder assembles the release publish command.
type PublishCommandBuilder struct {
	LoggerProvider               LoggerProvider
	CommandExecutor              dependencies.CommandExecutor
	RepositoryInspector          dependencies.RepositoryInspector
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the publish command.
func (builder *PublishCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     publishUseConstant,
		Short:   publishShortDescription,
		Long:    publishLongDescription,
		Example: publishExampleConstant,
		RunE:    builder.run,
	}

	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().String(versionFlagNameConstant, "", versionFlagUsageConstant)
	command.Flags().Bool(nightlyFlagNameConstant, false, nightlyFlagUsageConstant)
	command.Flags().String(targetFlagNameConstant, "", targetFlagUsageConstant)
	command.Flags().String(notesFileFlagNameConstant, "", notesFileFlagUsageConstant)
	command.Flags().String(artifactsDirFlagNameConstant, "", artifactsDirFlagUsageConstant)
	command.Flags().String(repositoryPathFlagNameConstant, ".", repositoryPathFlagUsageConstant)

	return command, nil
}

func (builder *PublishCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := resolveLogger(builder.LoggerProvider)

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

	nightly, _ := command.Flags().GetBool(nightlyFlagNameConstant)
	targetCommitish, _ := command.Flags().GetString(targetFlagNameConstant)
	repositoryPath, _ := command.Flags().GetString(repositoryPathFlagNameConstant)
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

	repository := configuration.Repository
	if flagValue, flagError := command.Flags().GetString(repositoryFlagNameConstant); flagError == nil && command.Flags().Changed(repositoryFlagNameConstant) {
		repository = strings.TrimSpace(flagValue)
	}
	if len(repository) == 0 {
		inspector := dependencies.ResolveRepositoryInspector(builder.RepositoryInspector)
		originRemote, originError := inspector.OriginRepository(repositoryPath)
		if originError != nil {
			return originError
		}
		repository = originRemote.OwnerAndRepository()
	}

	// gh reports the canonical owner/name; offline runs keep the local identity.
	if !dryRun {
		if repositoryMetadata, metadataError := githubClient.ResolveRepoMetadata(command.Context(), repository); metadataError == nil && len(strings.TrimSpace(repositoryMetadata.NameWithOwner)) > 0 {
			repository = repositoryMetadata.NameWithOwner
		}
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

	releaseTag := releaseVersion
	if nightly {
		releaseTag = nightlyTagNameConstant
	}

	publishError := releaseService.Publish(command.Context(), releases.PublishOptions{
		Repository:      repository,
		TagName:         releaseTag,
		Title:           releaseVersion,
		NotesFilePath:   notesFilePath,
		TargetCommitish: strings.TrimSpace(targetCommitish),
		Prerelease:      nightly,
		AssetPaths:      collection.AllPaths(),
		DryRun:          dryRun,
	})
	if publishError != nil {
		return publishError
	}

	fmt.Fprintf(command.OutOrStdout(), publishSuccessTemplateConstant, repository, releaseTag)
	return nil
}

func (builder *PublishCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
