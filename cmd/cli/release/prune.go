package release

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/releasekit/internal/dependencies"
	"github.com/temirov/releasekit/internal/githubcli"
	"github.com/temirov/releasekit/internal/releases"
	flagutils "github.com/temirov/releasekit/internal/utils/flags"
)

const (
	pruneUseConstant             = "prune"
	pruneShortDescription        = "Delete a previous release and its tag"
	pruneLongDescription         = "prune removes the named release and deletes its remote tag so a replacement build can be published. Both deletions tolerate a missing release or tag."
	pruneExampleConstant         = "releasekit release prune --tag nightly"
	tagFlagNameConstant          = "tag"
	tagFlagUsageConstant         = "Tag of the release to delete"
	remoteFlagNameConstant       = "remote"
	remoteFlagUsageConstant      = "Remote holding the tag to delete"
	pruneSummaryTemplateConstant = "PRUNED: %s (release deleted: %t, tag deleted: %t)\n"
)

// PruneCommandBuilder assembles the release prune command.
type PruneCommandBuilder struct {
	LoggerProvider               LoggerProvider
	CommandExecutor              dependencies.CommandExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the prune command.
func (builder *PruneCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     pruneUseConstant,
		Short:   pruneShortDescription,
		Long:    pruneLongDescription,
		Example: pruneExampleConstant,
		RunE:    builder.run,
	}

	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().String(tagFlagNameConstant, nightlyTagNameConstant, tagFlagUsageConstant)
	command.Flags().String(remoteFlagNameConstant, "", remoteFlagUsageConstant)
	command.Flags().String(repositoryPathFlagNameConstant, ".", repositoryPathFlagUsageConstant)

	return command, nil
}

func (builder *PruneCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := resolveLogger(builder.LoggerProvider)

	tagName, _ := command.Flags().GetString(tagFlagNameConstant)
	repositoryPath, _ := command.Flags().GetString(repositoryPathFlagNameConstant)
	dryRun := flagutils.ResolveBoolFlag(command, flagutils.DryRunFlagName, configuration.DryRun)

	remoteName := configuration.RemoteName
	if flagValue, flagError := command.Flags().GetString(remoteFlagNameConstant); flagError == nil && command.Flags().Changed(remoteFlagNameConstant) {
		remoteName = strings.TrimSpace(flagValue)
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
		inspector := dependencies.ResolveRepositoryInspector(nil)
		originRemote, originError := inspector.OriginRepository(repositoryPath)
		if originError != nil {
			return originError
		}
		repository = originRemote.OwnerAndRepository()
	}

	pruneResult, pruneError := releaseService.Prune(command.Context(), releases.PruneOptions{
		Repository:     repository,
		RepositoryPath: repositoryPath,
		TagName:        tagName,
		RemoteName:     remoteName,
		DryRun:         dryRun,
	})
	if pruneError != nil {
		return pruneError
	}

	fmt.Fprintf(command.OutOrStdout(), pruneSummaryTemplateConstant, strings.TrimSpace(tagName), pruneResult.ReleaseDeleted, pruneResult.TagDeleted)
	return nil
}

func (builder *PruneCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
