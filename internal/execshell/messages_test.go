package execshell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForFetchAllUsesAllRemotesLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"fetch", "--all"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Fetching all remotes in /workspace/repo", message)
}

func TestBuildStartedMessageForCloneNamesSourceAndDestination(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments: []string{"clone", "git@github.com:acme/docs.git", "/workspace/docs"},
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Cloning git@github.com:acme/docs.git into /workspace/docs", message)
}

func TestBuildSuccessMessageForBranchCreationNamesBranch(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"checkout", "-b", "backup_20240101_120000"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildSuccessMessage(command)

	require.Equal(t, "Created branch backup_20240101_120000 in /workspace/repo", message)
}

func TestBuildFailureMessageForPushIncludesExitCodeAndStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"push", "origin", "main"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "denied"})

	require.Equal(t, "Failed to push to origin from /workspace/repo (exit code 1: denied)", message)
}
