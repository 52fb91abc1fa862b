package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	gitCommandNameConstant                 = "git"
	loggerMissingMessageConstant           = "logger not configured"
	commandRunnerMissingMessageConstant    = "command runner not configured"
	commandFailedTemplateConstant          = "%s exited with code %d%s"
	commandExecutionFailedTemplateConstant = "%s could not be executed: %v"
	standardErrorDetailTemplateConstant    = ": %s"
	commandWordJoinSeparatorConstant       = " "
)

// ErrLoggerNotConfigured indicates ShellExecutor construction without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrCommandRunnerNotConfigured indicates ShellExecutor construction without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerMissingMessageConstant)

// CommandName identifies the external executable to invoke.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = CommandName(gitCommandNameConstant)

// CommandDetails describes a single external command invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand couples an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command as it would appear on a shell prompt.
func (command ShellCommand) String() string {
	commandWords := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandWords, commandWordJoinSeparatorConstant)
}

// ExecutionResult captures the observable outcome of an external command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandFailedError reports a command that ran and returned a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including trimmed standard error output.
func (failure CommandFailedError) Error() string {
	standardErrorDetail := ""
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorDetail = fmt.Sprintf(standardErrorDetailTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedTemplateConstant, failure.Command.String(), failure.Result.ExitCode, standardErrorDetail)
}

// CommandExecutionError reports a command that could not be started or monitored.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, failure.Command.String(), failure.Cause)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
