package notes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/releasekit/internal/dependencies"
	notesservice "github.com/temirov/releasekit/internal/notes"
)

const (
	commandUseConstant              = "notes"
	commandShortDescription         = "Generate release, prerelease, and archive notes"
	commandLongDescription          = "notes collects the commit history since the previous tag and writes the release, prerelease, and archive note variants into the output directory."
	commandExampleConstant          = "releasekit notes --version 2024.08.24 --output-dir ./notes"
	versionFlagNameConstant         = "version"
	versionFlagUsageConstant        = "Release version included in the note headers"
	targetFlagNameConstant          = "target"
	targetFlagUsageConstant         = "Commitish recorded in the notes (defaults to HEAD)"
	outputDirFlagNameConstant       = "output-dir"
	outputDirFlagUsageConstant      = "Directory receiving the generated note files"
	repositoryPathFlagNameConstant  = "repository-path"
	repositoryPathFlagUsageConstant = "Path to the local repository clone"
	missingVersionErrorMessage      = "release version is required"
	notesWrittenTemplateConstant    = "NOTES: %s\n"
)

// LoggerProvider supplies the logger configured by the root command.
type LoggerProvider func() *zap.Logger

// CommandConfiguration captures persisted settings for the notes command.
type CommandConfiguration struct {
	OutputDirectory string `mapstructure:"output_dir"`
	RepositoryPath  string `mapstructure:"repository_path"`
}

// DefaultCommandConfiguration returns baseline values for the notes command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{OutputDirectory: ".", RepositoryPath: "."}
}

// DefaultConfigurationValues produces Viper defaults for the notes command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + ".output_dir":      defaults.OutputDirectory,
		rootKey + ".repository_path": defaults.RepositoryPath,
	}
}

// Sanitize normalizes configuration values and restores required defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)
	if len(sanitized.OutputDirectory) == 0 {
		sanitized.OutputDirectory = "."
	}
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = "."
	}
	return sanitized
}

// CommandBuilder assembles the notes command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	CommandExecutor              dependencies.CommandExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the notes command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleConstant,
		RunE:    builder.run,
	}

	command.Flags().String(versionFlagNameConstant, "", versionFlagUsageConstant)
	command.Flags().String(targetFlagNameConstant, "", targetFlagUsageConstant)
	command.Flags().String(outputDirFlagNameConstant, "", outputDirFlagUsageConstant)
	command.Flags().String(repositoryPathFlagNameConstant, "", repositoryPathFlagUsageConstant)

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

	targetCommitish, _ := command.Flags().GetString(targetFlagNameConstant)

	outputDirectory := configuration.OutputDirectory
	if flagValue, flagError := command.Flags().GetString(outputDirFlagNameConstant); flagError == nil && command.Flags().Changed(outputDirFlagNameConstant) {
		outputDirectory = strings.TrimSpace(flagValue)
	}

	repositoryPath := configuration.RepositoryPath
	if flagValue, flagError := command.Flags().GetString(repositoryPathFlagNameConstant); flagError == nil && command.Flags().Changed(repositoryPathFlagNameConstant) {
		repositoryPath = strings.TrimSpace(flagValue)
	}

	humanReadable := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadable = builder.HumanReadableLoggingProvider()
	}

	commandExecutor, executorError := dependencies.ResolveCommandExecutor(builder.CommandExecutor, logger, humanReadable)
	if executorError != nil {
		return executorError
	}

	service, serviceError := notesservice.NewService(logger, commandExecutor)
	if serviceError != nil {
		return serviceError
	}

	generated, generationError := service.Generate(command.Context(), notesservice.GenerationRequest{
		RepositoryPath:  repositoryPath,
		Version:         releaseVersion,
		TargetCommitish: strings.TrimSpace(targetCommitish),
		OutputDirectory: outputDirectory,
	})
	if generationError != nil {
		return generationError
	}

	for _, notesPath := range []string{generated.ReleaseNotesPath, generated.PrereleaseNotesPath, generated.ArchiveNotesPath} {
		fmt.Fprintf(command.OutOrStdout(), notesWrittenTemplateConstant, notesPath)
	}

	return nil
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
