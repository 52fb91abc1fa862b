package changes_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposync/internal/changes"
	"github.com/temirov/reposync/internal/execshell"
	"github.com/temirov/reposync/internal/workspace"
)

func newCommandBuilder(executor *fakeGitExecutor, fileSystem *fakeFileSystem) *changes.CommandBuilder {
	configuration := changesConfiguration("api", "frontend")
	return &changes.CommandBuilder{
		ConfigurationProvider: func() workspace.Configuration { return configuration },
		GitExecutor:           executor,
		FileSystem:            fileSystem,
	}
}

func TestCommitCommandCommitsAndReportsSummary(testInstance *testing.T) {
	executor := &fakeGitExecutor{}
	fileSystem := &fakeFileSystem{existingPaths: map[string]bool{
		"/workspace/api":      true,
		"/workspace/frontend": true,
	}}
	builder := newCommandBuilder(executor, fileSystem)

	command, buildError := builder.BuildCommitCommand()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs([]string{
		"--parent-path", "/workspace",
		"--message", "weekly sync",
		"--exclude", "frontend",
	})

	require.NoError(testInstance, command.ExecuteContext(context.Background()))
	require.Equal(testInstance, []string{"add .", "commit -m weekly sync"}, executor.commandLines())
	require.Contains(testInstance, outputBuffer.String(), "Completed: 1 succeeded, 0 failed")
}

func TestCommitCommandFailsWithoutMessage(testInstance *testing.T) {
	executor := &fakeGitExecutor{}
	fileSystem := &fakeFileSystem{existingPaths: map[string]bool{"/workspace/api": true}}
	builder := newCommandBuilder(executor, fileSystem)

	command, buildError := builder.BuildCommitCommand()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"--parent-path", "/workspace"})

	executionError := command.ExecuteContext(context.Background())
	require.ErrorIs(testInstance, executionError, changes.ErrCommitMessageRequired)
	require.Empty(testInstance, executor.commands)
}

func TestCommitCommandWithPushFlagPushesEachRepository(testInstance *testing.T) {
	executor := &fakeGitExecutor{}
	fileSystem := &fakeFileSystem{existingPaths: map[string]bool{"/workspace/api": true}}
	builder := newCommandBuilder(executor, fileSystem)

	command, buildError := builder.BuildCommitCommand()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{
		"--parent-path", "/workspace",
		"-m", "hotfix",
		"--push",
		"--branch", "main",
	})

	require.NoError(testInstance, command.ExecuteContext(context.Background()))
	require.Equal(testInstance, []string{"add .", "commit -m hotfix", "push origin main"}, executor.commandLines())
}

func TestPushCommandPartialFailuresDoNotFailTheCommand(testInstance *testing.T) {
	executor := &fakeGitExecutor{}
	executor.respond = func(details execshell.CommandDetails) (execshell.ExecutionResult, error) {
		if details.WorkingDirectory == "/workspace/api" {
			return execshell.ExecutionResult{}, execshell.CommandFailedError{
				Result: execshell.ExecutionResult{StandardError: "remote unreachable", ExitCode: 1},
			}
		}
		return execshell.ExecutionResult{}, nil
	}
	fileSystem := &fakeFileSystem{existingPaths: map[string]bool{
		"/workspace/api":      true,
		"/workspace/frontend": true,
	}}
	builder := newCommandBuilder(executor, fileSystem)

	command, buildError := builder.BuildPushCommand()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs([]string{"--parent-path", "/workspace"})

	require.NoError(testInstance, command.ExecuteContext(context.Background()))
	require.Contains(testInstance, outputBuffer.String(), "Completed: 1 succeeded, 1 failed")
}

func TestPushCommandRejectsInvalidConfiguration(testInstance *testing.T) {
	builder := &changes.CommandBuilder{
		ConfigurationProvider: func() workspace.Configuration { return workspace.Configuration{} },
		GitExecutor:           &fakeGitExecutor{},
		FileSystem:            &fakeFileSystem{},
	}

	command, buildError := builder.BuildPushCommand()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(nil)

	executionError := command.ExecuteContext(context.Background())
	require.Error(testInstance, executionError)

	var fatalError workspace.FatalConfigurationError
	require.ErrorAs(testInstance, executionError, &fatalError)
}
