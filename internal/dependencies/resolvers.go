// Package dependencies provides default constructors for the collaborators
// shared by the CLI commands, so tests can inject fakes while production
// wiring stays in one place.
package dependencies

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/releasekit/internal/execshell"
	"github.com/temirov/releasekit/internal/gitrepo"
	"github.com/temirov/releasekit/internal/ui"
)

// CommandExecutor runs git and GitHub CLI commands.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryInspector answers questions about local repositories.
type RepositoryInspector interface {
	ResolveCommit(repositoryPath string, commitish string) (string, error)
	TagExists(repositoryPath string, tagName string) (bool, error)
	OriginRepository(repositoryPath string) (gitrepo.RemoteURL, error)
}

// ResolveCommandExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging attaches a console observer that narrates each command.
func ResolveCommandExecutor(existing CommandExecutor, logger *zap.Logger, humanReadableLogging bool) (CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	if humanReadableLogging {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

// ResolveRepositoryInspector returns the provided inspector or a go-git backed default.
func ResolveRepositoryInspector(existing RepositoryInspector) RepositoryInspector {
	if existing != nil {
		return existing
	}
	return gitrepo.NewRepositoryInspector()
}
