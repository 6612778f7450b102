package execshell

// CommandEventObserver receives lifecycle notifications for shell command
// execution, letting callers narrate git and GitHub CLI invocations without
// coupling the executor to a presentation layer.
type CommandEventObserver interface {
	// CommandStarted fires before the command runs.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires after the command ran and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures to run the command at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
