package release

import (
	"github.com/spf13/cobra"

	flagutils "github.com/temirov/releasekit/internal/utils/flags"
)

const (
	groupUseConstant              = "release"
	groupShortDescriptionConstant = "Publish, prune, and archive GitHub releases"
	groupLongDescriptionConstant  = "release groups the publishing subcommands: publish uploads a release with its artifacts and notes, prune removes a previous nightly release and tag, and archive mirrors a build into the archive repository."
)

// GroupCommandBuilder assembles the release command group.
type GroupCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the release group with its subcommands.
func (builder *GroupCommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   groupUseConstant,
		Short: groupShortDescriptionConstant,
		Long:  groupLongDescriptionConstant,
	}

	flagutils.BindExecutionFlags(groupCommand, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		DryRun: flagutils.ExecutionFlagDefinition{Name: flagutils.DryRunFlagName, Usage: flagutils.DryRunFlagUsage, Enabled: true},
	})

	publishBuilder := PublishCommandBuilder{
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
	}
	publishCommand, publishBuildError := publishBuilder.Build()
	if publishBuildError != nil {
		return nil, publishBuildError
	}
	groupCommand.AddCommand(publishCommand)

	pruneBuilder := PruneCommandBuilder{
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
	}
	pruneCommand, pruneBuildError := pruneBuilder.Build()
	if pruneBuildError != nil {
		return nil, pruneBuildError
	}
	groupCommand.AddCommand(pruneCommand)

	archiveBuilder := ArchiveCommandBuilder{
		LoggerProvider:               builder.LoggerProvider,
		HumanReadableLoggingProvider: builder.HumanReadableLoggingProvider,
		ConfigurationProvider:        builder.ConfigurationProvider,
	}
	archiveCommand, archiveBuildError := archiveBuilder.Build()
	if archiveBuildError != nil {
		return nil, archiveBuildError
	}
	groupCommand.AddCommand(archiveCommand)

	return groupCommand, nil
}
