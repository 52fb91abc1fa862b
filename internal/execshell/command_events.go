package execshell

// CommandEventObserver receives lifecycle notifications for git invocations
// so a human-readable narration can run alongside the structured logs.
type CommandEventObserver interface {
	// CommandStarted fires before the git process is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the process exits, regardless of exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the process could not be started or monitored.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events; it backs executors
// constructed without an observer.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
