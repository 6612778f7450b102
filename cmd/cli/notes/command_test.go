package notes_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	notescmd "github.com/temirov/releasekit/cmd/cli/notes"
	"github.com/temirov/releasekit/internal/execshell"
)

const (
	testVersionConstant     = "2024.08.24"
	testPreviousTagConstant = "2024.07.01"
	testHistoryLineConstant = "- Fix remote parsing (abc1234)"
)

type stubGitExecutor struct {
	recorded []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if details.Arguments[0] == "describe" {
		return execshell.ExecutionResult{StandardOutput: testPreviousTagConstant + "\n"}, nil
	}
	return execshell.ExecutionResult{StandardOutput: testHistoryLineConstant + "\n"}, nil
}

func (executor *stubGitExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func TestNotesCommandWritesNoteVariants(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	builder := notescmd.CommandBuilder{CommandExecutor: executor}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputDirectory := testInstance.TempDir()
	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs([]string{"--version", testVersionConstant, "--output-dir", outputDirectory})

	require.NoError(testInstance, command.Execute())

	for _, fileName := range []string{"release_notes.md", "prerelease_notes.md", "archive_notes.md"} {
		notesPath := filepath.Join(outputDirectory, fileName)
		require.Contains(testInstance, outputBuffer.String(), "NOTES: "+notesPath)

		notesBytes, readError := os.ReadFile(notesPath)
		require.NoError(testInstance, readError)
		require.Contains(testInstance, string(notesBytes), "# Release "+testVersionConstant)
		require.Contains(testInstance, string(notesBytes), testHistoryLineConstant)
	}

	require.Len(testInstance, executor.recorded, 2)
	require.Contains(testInstance, executor.recorded[1].Arguments, testPreviousTagConstant+"..HEAD")
}

func TestNotesCommandRequiresVersion(testInstance *testing.T) {
	builder := notescmd.CommandBuilder{CommandExecutor: &stubGitExecutor{}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"--output-dir", testInstance.TempDir()})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "version")
}
