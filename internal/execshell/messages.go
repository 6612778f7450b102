package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitDescribeSubcommandNameConstant = "describe"
	gitLogSubcommandNameConstant      = "log"
	gitPushSubcommandNameConstant     = "push"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitTagDeletionRefPrefixConstant   = ":refs/tags/"
)

const (
	gitDescribeStartTemplateConstant            = "Locating the most recent tag in %s"
	gitDescribeSuccessTemplateConstant          = "Located the most recent tag in %s"
	gitDescribeFailureTemplateConstant          = "No tag reachable in %s (exit code %d%s)"
	gitDescribeExecutionFailureTemplateConstant = "Unable to locate tags in %s: %s"
	gitLogStartTemplateConstant                 = "Collecting commit history in %s"
	gitLogSuccessTemplateConstant               = "Collected commit history in %s"
	gitLogFailureTemplateConstant               = "Failed to collect commit history in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant      = "Unable to collect commit history in %s: %s"
	gitTagDeletionStartTemplateConstant         = "Deleting remote tag %s via %s from %s"
	gitTagDeletionSuccessTemplateConstant       = "Deleted remote tag %s via %s from %s"
	gitTagDeletionFailureTemplateConstant       = "Failed to delete remote tag %s via %s from %s (exit code %d%s)"
	gitTagDeletionExecutionFailureConstant      = "Unable to delete remote tag %s via %s from %s: %s"
	gitRevParseStartTemplateConstant            = "Resolving revision in %s"
	gitRevParseSuccessTemplateConstant          = "Resolved revision in %s"
	gitRevParseFailureTemplateConstant          = "Failed to resolve revision in %s (exit code %d%s)"
	gitRevParseExecutionFailureConstant         = "Unable to resolve revision in %s: %s"
)

const (
	githubReleaseSubcommandNameConstant       = "release"
	githubReleaseCreateSubcommandNameConstant = "create"
	githubReleaseDeleteSubcommandNameConstant = "delete"
	githubReleaseViewSubcommandNameConstant   = "view"
	githubRepoSubcommandNameConstant          = "repo"
	githubRepoViewSubcommandNameConstant      = "view"
	githubSubcommandArgumentCountConstant     = 2
	githubTagArgumentIndexConstant            = 2
)

const (
	githubReleaseCreateStartTemplateConstant       = "Creating release %s"
	githubReleaseCreateSuccessTemplateConstant     = "Created release %s"
	githubReleaseCreateFailureTemplateConstant     = "Failed to create release %s (exit code %d%s)"
	githubReleaseCreateExecutionFailureConstant    = "Unable to create release %s: %s"
	githubReleaseDeleteStartTemplateConstant       = "Deleting release %s"
	githubReleaseDeleteSuccessTemplateConstant     = "Deleted release %s"
	githubReleaseDeleteFailureTemplateConstant     = "Failed to delete release %s (exit code %d%s)"
	githubReleaseDeleteExecutionFailureConstant    = "Unable to delete release %s: %s"
	githubReleaseViewStartTemplateConstant         = "Retrieving release %s"
	githubReleaseViewSuccessTemplateConstant       = "Retrieved release %s"
	githubReleaseViewFailureTemplateConstant       = "Failed to retrieve release %s (exit code %d%s)"
	githubReleaseViewExecutionFailureConstant      = "Unable to retrieve release %s: %s"
	githubRepoViewStartTemplateConstant            = "Retrieving repository details"
	githubRepoViewSuccessTemplateConstant          = "Retrieved repository details"
	githubRepoViewFailureTemplateConstant          = "Failed to retrieve repository details (exit code %d%s)"
	githubRepoViewExecutionFailureConstant         = "Unable to retrieve repository details: %s"
	githubUnknownReleaseTagFallbackLabelConstant  = "unknown"
	githubReleaseArgumentInspectionWindowConstant = 3
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitDescribeSubcommandNameConstant:
		return formatter.describeWorkingDirectoryScopedMessage(command, result, failure, stage,
			gitDescribeStartTemplateConstant, gitDescribeSuccessTemplateConstant,
			gitDescribeFailureTemplateConstant, gitDescribeExecutionFailureTemplateConstant)
	case gitLogSubcommandNameConstant:
		return formatter.describeWorkingDirectoryScopedMessage(command, result, failure, stage,
			gitLogStartTemplateConstant, gitLogSuccessTemplateConstant,
			gitLogFailureTemplateConstant, gitLogExecutionFailureTemplateConstant)
	case gitRevParseSubcommandNameConstant:
		return formatter.describeWorkingDirectoryScopedMessage(command, result, failure, stage,
			gitRevParseStartTemplateConstant, gitRevParseSuccessTemplateConstant,
			gitRevParseFailureTemplateConstant, gitRevParseExecutionFailureConstant)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	tagName := emptyStringConstant
	remoteName := emptyStringConstant
	for argumentIndex := 1; argumentIndex < len(arguments); argumentIndex++ {
		argumentValue := strings.TrimSpace(arguments[argumentIndex])
		if strings.HasPrefix(argumentValue, gitTagDeletionRefPrefixConstant) {
			tagName = strings.TrimPrefix(argumentValue, gitTagDeletionRefPrefixConstant)
			continue
		}
		if len(remoteName) == 0 && !strings.HasPrefix(argumentValue, "-") {
			remoteName = argumentValue
		}
	}

	if len(tagName) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitTagDeletionStartTemplateConstant, tagName, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitTagDeletionSuccessTemplateConstant, tagName, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitTagDeletionFailureTemplateConstant, tagName, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitTagDeletionExecutionFailureConstant, tagName, remoteName, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectoryScopedMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < githubSubcommandArgumentCountConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	primaryArgument := strings.TrimSpace(arguments[0])
	secondaryArgument := strings.TrimSpace(arguments[1])

	if primaryArgument == githubRepoSubcommandNameConstant && secondaryArgument == githubRepoViewSubcommandNameConstant {
		switch stage {
		case messageStageStart:
			return githubRepoViewStartTemplateConstant
		case messageStageSuccess:
			return githubRepoViewSuccessTemplateConstant
		case messageStageFailure:
			return fmt.Sprintf(githubRepoViewFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(githubRepoViewExecutionFailureConstant, formatter.describeFailure(failure))
		}
	}

	if primaryArgument != githubReleaseSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	tagName := formatter.describeReleaseTag(arguments)

	switch secondaryArgument {
	case githubReleaseCreateSubcommandNameConstant:
		return formatter.describeReleaseMessage(result, failure, stage, tagName,
			githubReleaseCreateStartTemplateConstant, githubReleaseCreateSuccessTemplateConstant,
			githubReleaseCreateFailureTemplateConstant, githubReleaseCreateExecutionFailureConstant)
	case githubReleaseDeleteSubcommandNameConstant:
		return formatter.describeReleaseMessage(result, failure, stage, tagName,
			githubReleaseDeleteStartTemplateConstant, githubReleaseDeleteSuccessTemplateConstant,
			githubReleaseDeleteFailureTemplateConstant, githubReleaseDeleteExecutionFailureConstant)
	case githubReleaseViewSubcommandNameConstant:
		return formatter.describeReleaseMessage(result, failure, stage, tagName,
			githubReleaseViewStartTemplateConstant, githubReleaseViewSuccessTemplateConstant,
			githubReleaseViewFailureTemplateConstant, githubReleaseViewExecutionFailureConstant)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeReleaseMessage(result ExecutionResult, failure error, stage messageStage, tagName string, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startTemplate, tagName)
	case messageStageSuccess:
		return fmt.Sprintf(successTemplate, tagName)
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, tagName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureTemplate, tagName, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeReleaseTag(arguments []string) string {
	upperBound := len(arguments)
	if upperBound > githubTagArgumentIndexConstant+githubReleaseArgumentInspectionWindowConstant {
		upperBound = githubTagArgumentIndexConstant + githubReleaseArgumentInspectionWindowConstant
	}
	for argumentIndex := githubTagArgumentIndexConstant; argumentIndex < upperBound; argumentIndex++ {
		argumentValue := strings.TrimSpace(arguments[argumentIndex])
		if len(argumentValue) == 0 || strings.HasPrefix(argumentValue, "-") {
			continue
		}
		return argumentValue
	}
	return githubUnknownReleaseTagFallbackLabelConstant
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
