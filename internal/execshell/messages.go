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
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

const (
	gitCloneSubcommandNameConstant    = "clone"
	gitFetchSubcommandNameConstant    = "fetch"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitCreateBranchFlagConstant       = "-b"
	gitPushSubcommandNameConstant     = "push"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitFetchAllRemotesLabelConstant   = "all remotes"
	gitFetchAllFlagConstant           = "--all"
	flagPrefixConstant                = "-"
	gitDefaultRemoteLabelConstant     = "the default remote"
)

const (
	gitCloneStartTemplateConstant            = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant          = "Cloned %s into %s"
	gitCloneFailureTemplateConstant          = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant = "Unable to clone %s into %s: %s"
	gitFetchStartTemplateConstant            = "Fetching %s in %s"
	gitFetchSuccessTemplateConstant          = "Fetched %s in %s"
	gitFetchFailureTemplateConstant          = "Failed to fetch %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant = "Unable to fetch %s in %s: %s"
	gitCheckoutStartTemplateConstant         = "Switching %s to %s"
	gitCheckoutSuccessTemplateConstant       = "%s now on %s"
	gitCheckoutFailureTemplateConstant       = "Failed to switch %s to %s (exit code %d%s)"
	gitCheckoutExecutionTemplateConstant     = "Unable to switch %s to %s: %s"
	gitBranchStartTemplateConstant           = "Creating branch %s in %s"
	gitBranchSuccessTemplateConstant         = "Created branch %s in %s"
	gitBranchFailureTemplateConstant         = "Failed to create branch %s in %s (exit code %d%s)"
	gitBranchExecutionTemplateConstant       = "Unable to create branch %s in %s: %s"
	gitPushStartTemplateConstant             = "Pushing to %s from %s"
	gitPushSuccessTemplateConstant           = "Pushed to %s from %s"
	gitPushFailureTemplateConstant           = "Failed to push to %s from %s (exit code %d%s)"
	gitPushExecutionTemplateConstant         = "Unable to push to %s from %s: %s"
	gitAddStartTemplateConstant              = "Staging %s in %s"
	gitAddSuccessTemplateConstant            = "Staged %s in %s"
	gitAddFailureTemplateConstant            = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionTemplateConstant          = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant           = "Creating commit in %s"
	gitCommitSuccessTemplateConstant         = "Created commit in %s"
	gitCommitFailureTemplateConstant         = "Failed to create commit in %s (exit code %d%s)"
	gitCommitExecutionTemplateConstant       = "Unable to create commit in %s: %s"
	defaultWorkingDirectoryLabelConstant     = "current directory"
	stagedEverythingLabelConstant            = "all changes"
	stagedEverythingSelectorConstant         = "."
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
	if command.Name == CommandGit && len(command.Details.Arguments) > 0 {
		if gitMessage, recognized := formatter.describeGitMessage(command, result, failure, stage); recognized {
			return gitMessage
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) (string, bool) {
	arguments := command.Details.Arguments
	workingDirectory := formatter.workingDirectoryLabel(command)
	operands := withoutFlags(arguments[1:])

	switch arguments[0] {
	case gitCloneSubcommandNameConstant:
		source := operandAt(operands, 0)
		destination := operandAt(operands, 1)
		if len(destination) == 0 {
			destination = workingDirectory
		}
		return formatter.renderStaged(stage, result, failure,
			fmt.Sprintf(gitCloneStartTemplateConstant, source, destination),
			fmt.Sprintf(gitCloneSuccessTemplateConstant, source, destination),
			gitCloneFailureTemplateConstant, gitCloneExecutionFailureTemplateConstant,
			source, destination), true
	case gitFetchSubcommandNameConstant:
		fetchTarget := operandAt(operands, 0)
		if len(fetchTarget) == 0 || containsArgument(arguments, gitFetchAllFlagConstant) {
			fetchTarget = gitFetchAllRemotesLabelConstant
		}
		return formatter.renderStaged(stage, result, failure,
			fmt.Sprintf(gitFetchStartTemplateConstant, fetchTarget, workingDirectory),
			fmt.Sprintf(gitFetchSuccessTemplateConstant, fetchTarget, workingDirectory),
			gitFetchFailureTemplateConstant, gitFetchExecutionFailureTemplateConstant,
			fetchTarget, workingDirectory), true
	case gitCheckoutSubcommandNameConstant:
		if containsArgument(arguments, gitCreateBranchFlagConstant) {
			branchName := operandAt(operands, 0)
			return formatter.renderStaged(stage, result, failure,
				fmt.Sprintf(gitBranchStartTemplateConstant, branchName, workingDirectory),
				fmt.Sprintf(gitBranchSuccessTemplateConstant, branchName, workingDirectory),
				gitBranchFailureTemplateConstant, gitBranchExecutionTemplateConstant,
				branchName, workingDirectory), true
		}
		reference := operandAt(operands, 0)
		return formatter.renderStaged(stage, result, failure,
			fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, reference),
			fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, reference),
			gitCheckoutFailureTemplateConstant, gitCheckoutExecutionTemplateConstant,
			workingDirectory, reference), true
	case gitPushSubcommandNameConstant:
		remoteName := operandAt(operands, 0)
		if len(remoteName) == 0 {
			remoteName = gitDefaultRemoteLabelConstant
		}
		return formatter.renderStaged(stage, result, failure,
			fmt.Sprintf(gitPushStartTemplateConstant, remoteName, workingDirectory),
			fmt.Sprintf(gitPushSuccessTemplateConstant, remoteName, workingDirectory),
			gitPushFailureTemplateConstant, gitPushExecutionTemplateConstant,
			remoteName, workingDirectory), true
	case gitAddSubcommandNameConstant:
		stagedSelection := operandAt(operands, 0)
		if stagedSelection == stagedEverythingSelectorConstant || len(stagedSelection) == 0 {
			stagedSelection = stagedEverythingLabelConstant
		}
		return formatter.renderStaged(stage, result, failure,
			fmt.Sprintf(gitAddStartTemplateConstant, stagedSelection, workingDirectory),
			fmt.Sprintf(gitAddSuccessTemplateConstant, stagedSelection, workingDirectory),
			gitAddFailureTemplateConstant, gitAddExecutionTemplateConstant,
			stagedSelection, workingDirectory), true
	case gitCommitSubcommandNameConstant:
		return formatter.renderStaged(stage, result, failure,
			fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory),
			gitCommitFailureTemplateConstant, gitCommitExecutionTemplateConstant,
			workingDirectory), true
	}

	return emptyStringConstant, false
}

func (formatter CommandMessageFormatter) renderStaged(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureTemplate string, executionFailureTemplate string, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		failureArguments := append(append([]any{}, subjects...), result.ExitCode, formatter.standardErrorSuffix(result.StandardError))
		return fmt.Sprintf(failureTemplate, failureArguments...)
	default:
		executionArguments := append(append([]any{}, subjects...), failureText(failure))
		return fmt.Sprintf(executionFailureTemplate, executionArguments...)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := command.String() + formatter.workingDirectorySuffix(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.standardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, failureText(failure))
	}
}

func (formatter CommandMessageFormatter) workingDirectoryLabel(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) workingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func failureText(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func withoutFlags(arguments []string) []string {
	operands := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		operands = append(operands, argument)
	}
	return operands
}

func containsArgument(arguments []string, wanted string) bool {
	for _, argument := range arguments {
		if argument == wanted {
			return true
		}
	}
	return false
}

func operandAt(operands []string, index int) string {
	if index >= len(operands) {
		return emptyStringConstant
	}
	return operands[index]
}
