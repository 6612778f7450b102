package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/releasekit/internal/execshell"
)

const (
	testDescribeStartCaseNameConstant        = "describe_start"
	testLogFailureCaseNameConstant           = "log_failure"
	testTagDeletionSuccessCaseNameConstant   = "tag_deletion_success"
	testReleaseCreateStartCaseNameConstant   = "release_create_start"
	testReleaseDeleteFailureCaseNameConstant = "release_delete_failure"
	testRepoViewSuccessCaseNameConstant      = "repo_view_success"
	testGenericFallbackCaseNameConstant      = "generic_fallback"
)

func TestCommandMessageFormatterDescribesReleaseCommands(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name            string
		command         execshell.ShellCommand
		buildMessage    func(execshell.ShellCommand) string
		expectedMessage string
	}{
		{
			name: testDescribeStartCaseNameConstant,
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"describe", "--tags", "--abbrev=0"}, WorkingDirectory: "/tmp/repo"},
			},
			buildMessage:    formatter.BuildStartedMessage,
			expectedMessage: "Locating the most recent tag in /tmp/repo",
		},
		{
			name: testLogFailureCaseNameConstant,
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"log", "--no-merges"}, WorkingDirectory: "/tmp/repo"},
			},
			buildMessage: func(command execshell.ShellCommand) string {
				return formatter.BuildFailureMessage(command, execshell.ExecutionResult{ExitCode: 128, StandardError: "bad revision"})
			},
			expectedMessage: "Failed to collect commit history in /tmp/repo (exit code 128: bad revision)",
		},
		{
			name: testTagDeletionSuccessCaseNameConstant,
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"push", "origin", ":refs/tags/nightly"}, WorkingDirectory: "/tmp/repo"},
			},
			buildMessage:    formatter.BuildSuccessMessage,
			expectedMessage: "Deleted remote tag nightly via origin from /tmp/repo",
		},
		{
			name: testReleaseCreateStartCaseNameConstant,
			command: execshell.ShellCommand{
				Name:    execshell.CommandGitHub,
				Details: execshell.CommandDetails{Arguments: []string{"release", "create", "v2024.08.24"}},
			},
			buildMessage:    formatter.BuildStartedMessage,
			expectedMessage: "Creating release v2024.08.24",
		},
		{
			name: testReleaseDeleteFailureCaseNameConstant,
			command: execshell.ShellCommand{
				Name:    execshell.CommandGitHub,
				Details: execshell.CommandDetails{Arguments: []string{"release", "delete", "nightly", "--yes"}},
			},
			buildMessage: func(command execshell.ShellCommand) string {
				return formatter.BuildFailureMessage(command, execshell.ExecutionResult{ExitCode: 1, StandardError: "release not found"})
			},
			expectedMessage: "Failed to delete release nightly (exit code 1: release not found)",
		},
		{
			name: testRepoViewSuccessCaseNameConstant,
			command: execshell.ShellCommand{
				Name:    execshell.CommandGitHub,
				Details: execshell.CommandDetails{Arguments: []string{"repo", "view", "acme/widget"}},
			},
			buildMessage:    formatter.BuildSuccessMessage,
			expectedMessage: "Retrieved repository details",
		},
		{
			name: testGenericFallbackCaseNameConstant,
			command: execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: []string{"status"}},
			},
			buildMessage:    formatter.BuildStartedMessage,
			expectedMessage: "Running git status",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, testCase.buildMessage(testCase.command))
		})
	}
}
