package pipeline_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	pipelinecmd "github.com/temirov/releasekit/cmd/cli/pipeline"
	"github.com/temirov/releasekit/internal/execshell"
	"github.com/temirov/releasekit/internal/githubauth"
	"github.com/temirov/releasekit/internal/gitrepo"
)

const (
	testVersionConstant        = "2024.08.24"
	testRepositoryConstant     = "owner/example"
	testArchiveRepoConstant    = "owner/example-archive"
	testArchiveTokenConstant   = "ghp_archive"
	testResolvedCommitConstant = "abcdef1234567890abcdef1234567890abcdef12"
	testHistoryLineConstant    = "- Fix remote parsing (abc1234)"
	testArtifactNameConstant   = "example.tar.gz"
)

type recordedInvocation struct {
	commandName execshell.CommandName
	details     execshell.CommandDetails
}

type stubCommandExecutor struct {
	recorded []recordedInvocation
}

func (executor *stubCommandExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, recordedInvocation{commandName: execshell.CommandGit, details: details})
	if details.Arguments[0] == "log" {
		return execshell.ExecutionResult{StandardOutput: testHistoryLineConstant + "\n"}, nil
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *stubCommandExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, recordedInvocation{commandName: execshell.CommandGitHub, details: details})
	if details.Arguments[0] == "release" && details.Arguments[1] == "view" {
		return execshell.ExecutionResult{StandardOutput: `{"tagName":"nightly","name":"nightly","isPrerelease":true}`}, nil
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *stubCommandExecutor) githubInvocations() []execshell.CommandDetails {
	invocations := make([]execshell.CommandDetails, 0, len(executor.recorded))
	for _, invocation := range executor.recorded {
		if invocation.commandName == execshell.CommandGitHub {
			invocations = append(invocations, invocation.details)
		}
	}
	return invocations
}

type stubRepositoryInspector struct {
	tagExists bool
}

func (inspector *stubRepositoryInspector) ResolveCommit(string, string) (string, error) {
	return testResolvedCommitConstant, nil
}

func (inspector *stubRepositoryInspector) TagExists(string, string) (bool, error) {
	return inspector.tagExists, nil
}

func (inspector *stubRepositoryInspector) OriginRepository(string) (gitrepo.RemoteURL, error) {
	return gitrepo.RemoteURL{Host: "github.com", Owner: "owner", Repository: "example"}, nil
}

func prepareArtifactsDirectory(testInstance *testing.T) string {
	artifactsDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(artifactsDirectory, testArtifactNameConstant), []byte("build"), 0o600))
	return artifactsDirectory
}

func executeRunCommand(testInstance *testing.T, builder *pipelinecmd.CommandBuilder, arguments ...string) (string, error) {
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestRunCommandPublishesStableRelease(testInstance *testing.T) {
	executor := &stubCommandExecutor{}
	builder := &pipelinecmd.CommandBuilder{
		CommandExecutor:     executor,
		RepositoryInspector: &stubRepositoryInspector{},
	}

	notesDirectory := testInstance.TempDir()
	output, executionError := executeRunCommand(testInstance, builder,
		"--version", testVersionConstant,
		"--repository", testRepositoryConstant,
		"--artifacts-dir", prepareArtifactsDirectory(testInstance),
		"--notes-dir", notesDirectory,
	)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "RELEASED: "+testRepositoryConstant+" -> "+testVersionConstant)
	require.Contains(testInstance, output, testResolvedCommitConstant)

	githubInvocations := executor.githubInvocations()
	require.Len(testInstance, githubInvocations, 1)
	createArguments := githubInvocations[0].Arguments
	require.Equal(testInstance, []string{"release", "create", testVersionConstant}, createArguments[:3])
	require.NotContains(testInstance, createArguments, "--prerelease")

	notesBytes, readError := os.ReadFile(filepath.Join(notesDirectory, "release_notes.md"))
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(notesBytes), testHistoryLineConstant)
}

func TestRunCommandNightlyArchivesAndPrunes(testInstance *testing.T) {
	executor := &stubCommandExecutor{}
	builder := &pipelinecmd.CommandBuilder{
		CommandExecutor:     executor,
		RepositoryInspector: &stubRepositoryInspector{},
		EnvironmentLookup:   map[string]string{githubauth.EnvArchiveToken: testArchiveTokenConstant},
	}

	output, executionError := executeRunCommand(testInstance, builder,
		"--version", testVersionConstant,
		"--nightly",
		"--repository", testRepositoryConstant,
		"--archive-repo", testArchiveRepoConstant,
		"--artifacts-dir", prepareArtifactsDirectory(testInstance),
		"--notes-dir", testInstance.TempDir(),
	)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "RELEASED: "+testRepositoryConstant+" -> nightly")

	githubInvocations := executor.githubInvocations()
	require.Len(testInstance, githubInvocations, 4)

	archiveArguments := githubInvocations[0].Arguments
	require.Equal(testInstance, []string{"release", "create", testVersionConstant}, archiveArguments[:3])
	require.Contains(testInstance, archiveArguments, testArchiveRepoConstant)
	require.Equal(testInstance, testArchiveTokenConstant, githubInvocations[0].EnvironmentVariables["GH_TOKEN"])

	viewArguments := githubInvocations[1].Arguments
	require.Equal(testInstance, []string{"release", "view", "nightly"}, viewArguments[:3])

	deleteArguments := githubInvocations[2].Arguments
	require.Equal(testInstance, []string{"release", "delete", "nightly"}, deleteArguments[:3])

	publishArguments := githubInvocations[3].Arguments
	require.Equal(testInstance, []string{"release", "create", "nightly"}, publishArguments[:3])
	require.Contains(testInstance, publishArguments, "--prerelease")
	require.Contains(testInstance, publishArguments, "--latest=false")

	tagPushObserved := false
	for _, invocation := range executor.recorded {
		if invocation.commandName == execshell.CommandGit && len(invocation.details.Arguments) > 0 && invocation.details.Arguments[0] == "push" {
			require.Equal(testInstance, []string{"push", "origin", ":refs/tags/nightly"}, invocation.details.Arguments)
			tagPushObserved = true
		}
	}
	require.True(testInstance, tagPushObserved)
}

func TestRunCommandNightlySkipsArchiveWithoutToken(testInstance *testing.T) {
	for _, variableName := range []string{githubauth.EnvArchiveToken, githubauth.EnvGitHubCLIToken, githubauth.EnvGitHubToken, githubauth.EnvGitHubAPIToken} {
		testInstance.Setenv(variableName, "")
	}

	executor := &stubCommandExecutor{}
	builder := &pipelinecmd.CommandBuilder{
		CommandExecutor:     executor,
		RepositoryInspector: &stubRepositoryInspector{},
	}

	output, executionError := executeRunCommand(testInstance, builder,
		"--version", testVersionConstant,
		"--nightly",
		"--repository", testRepositoryConstant,
		"--archive-repo", testArchiveRepoConstant,
		"--artifacts-dir", prepareArtifactsDirectory(testInstance),
		"--notes-dir", testInstance.TempDir(),
	)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "RELEASED: "+testRepositoryConstant+" -> nightly")

	githubInvocations := executor.githubInvocations()
	require.Len(testInstance, githubInvocations, 3)
	require.Equal(testInstance, []string{"release", "view", "nightly"}, githubInvocations[0].Arguments[:3])
	require.Equal(testInstance, []string{"release", "delete", "nightly"}, githubInvocations[1].Arguments[:3])
	require.Equal(testInstance, []string{"release", "create", "nightly"}, githubInvocations[2].Arguments[:3])
	for _, invocation := range githubInvocations {
		require.NotContains(testInstance, invocation.Arguments, testArchiveRepoConstant)
	}
}

func TestRunCommandRejectsExistingStableTag(testInstance *testing.T) {
	executor := &stubCommandExecutor{}
	builder := &pipelinecmd.CommandBuilder{
		CommandExecutor:     executor,
		RepositoryInspector: &stubRepositoryInspector{tagExists: true},
	}

	_, executionError := executeRunCommand(testInstance, builder,
		"--version", testVersionConstant,
		"--repository", testRepositoryConstant,
		"--artifacts-dir", prepareArtifactsDirectory(testInstance),
		"--notes-dir", testInstance.TempDir(),
	)
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "already exists")
	require.Empty(testInstance, executor.githubInvocations())
}

func TestRunCommandWarnsWithoutGitHubToken(testInstance *testing.T) {
	for _, variableName := range []string{githubauth.EnvGitHubCLIToken, githubauth.EnvGitHubToken, githubauth.EnvGitHubAPIToken} {
		testInstance.Setenv(variableName, "")
	}

	observerCore, observedLogs := observer.New(zap.DebugLevel)
	builder := &pipelinecmd.CommandBuilder{
		LoggerProvider:      func() *zap.Logger { return zap.New(observerCore) },
		CommandExecutor:     &stubCommandExecutor{},
		RepositoryInspector: &stubRepositoryInspector{},
	}

	_, executionError := executeRunCommand(testInstance, builder,
		"--version", testVersionConstant,
		"--repository", testRepositoryConstant,
		"--artifacts-dir", prepareArtifactsDirectory(testInstance),
		"--notes-dir", testInstance.TempDir(),
	)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, 1, observedLogs.FilterMessage("No GitHub token detected, gh will rely on its stored credentials").Len())
}

func TestRunCommandDryRunSkipsPublishing(testInstance *testing.T) {
	executor := &stubCommandExecutor{}
	builder := &pipelinecmd.CommandBuilder{
		CommandExecutor:     executor,
		RepositoryInspector: &stubRepositoryInspector{},
	}

	_, executionError := executeRunCommand(testInstance, builder,
		"--version", testVersionConstant,
		"--repository", testRepositoryConstant,
		"--artifacts-dir", prepareArtifactsDirectory(testInstance),
		"--notes-dir", testInstance.TempDir(),
		"--dry-run",
	)
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, executor.githubInvocations())
}

func TestRunCommandRequiresVersion(testInstance *testing.T) {
	builder := &pipelinecmd.CommandBuilder{
		CommandExecutor:     &stubCommandExecutor{},
		RepositoryInspector: &stubRepositoryInspector{},
	}

	_, executionError := executeRunCommand(testInstance, builder)
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "version")
}

func TestRunCommandLoadsManifestArgument(testInstance *testing.T) {
	manifestPath := filepath.Join(testInstance.TempDir(), "pipeline.yaml")
	manifestContent := "pipeline:\n  steps:\n    - operation: verify-repository\n    - operation: collect-artifacts\n    - operation: generate-notes\n    - operation: publish-release\n"
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(manifestContent), 0o600))

	executor := &stubCommandExecutor{}
	builder := &pipelinecmd.CommandBuilder{
		CommandExecutor:     executor,
		RepositoryInspector: &stubRepositoryInspector{},
	}

	output, executionError := executeRunCommand(testInstance, builder,
		manifestPath,
		"--version", testVersionConstant,
		"--repository", testRepositoryConstant,
		"--artifacts-dir", prepareArtifactsDirectory(testInstance),
		"--notes-dir", testInstance.TempDir(),
	)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "RELEASED:")
	require.Len(testInstance, executor.githubInvocations(), 1)
}
