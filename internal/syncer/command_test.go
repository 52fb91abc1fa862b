package syncer_test

import (
	"bytes"
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/reposync/internal/execshell"
	"github.com/temirov/reposync/internal/syncer"
	"github.com/temirov/reposync/internal/utils"
	"github.com/temirov/reposync/internal/workspace"
)

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}

type fakeFileSystem struct {
	existingPaths map[string]bool
	removedPaths  []string
}

func (fileSystem *fakeFileSystem) Stat(path string) (fs.FileInfo, error) {
	if fileSystem.existingPaths[path] {
		return nil, nil
	}
	return nil, fs.ErrNotExist
}

func (fileSystem *fakeFileSystem) MkdirAll(string, fs.FileMode) error {
	return nil
}

func (fileSystem *fakeFileSystem) RemoveAll(path string) error {
	fileSystem.removedPaths = append(fileSystem.removedPaths, path)
	return nil
}

type fakeGitExecutor struct {
	commands []execshell.CommandDetails
	respond  func(details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

func (executor *fakeGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.commands = append(executor.commands, details)
	if executor.respond != nil {
		return executor.respond(details)
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *fakeGitExecutor) commandLines() []string {
	lines := make([]string, 0, len(executor.commands))
	for _, command := range executor.commands {
		lines = append(lines, strings.Join(command.Arguments, " "))
	}
	return lines
}

func syncConfiguration() workspace.Configuration {
	return workspace.Configuration{
		ProjectName:          "platform",
		RepositoryOwner:      "acme",
		DocumentationPath:    "/workspace/docs",
		Repositories:         []workspace.RepositoryDescriptor{{Name: "api"}},
		DocumentationSources: []workspace.DocumentationSource{{Repo: "acme/handbook", Tag: "v2"}},
	}
}

func buildSyncCommand(testInstance *testing.T, builder *syncer.CommandBuilder, arguments ...string) (*bytes.Buffer, func() error) {
	testInstance.Helper()

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)
	return outputBuffer, func() error { return command.ExecuteContext(context.Background()) }
}

func TestSyncCommandProcessesDocumentationBeforeRepositories(testInstance *testing.T) {
	executor := &fakeGitExecutor{}
	fileSystem := &fakeFileSystem{}
	configuration := syncConfiguration()

	builder := &syncer.CommandBuilder{
		ConfigurationProvider: func() workspace.Configuration { return configuration },
		GitExecutor:           executor,
		FileSystem:            fileSystem,
		Clock:                 fixedClock{},
		ConcurrencyLimit:      1,
	}
	outputBuffer, execute := buildSyncCommand(testInstance, builder, "--parent-path", "/workspace")

	require.NoError(testInstance, execute())
	require.Equal(testInstance, []string{
		"clone git@github.com:acme/handbook.git /workspace/docs/handbook",
		"checkout v2",
		"clone git@github.com:acme/api.git /workspace/api",
	}, executor.commandLines())
	require.Contains(testInstance, outputBuffer.String(), "Completed: 2 succeeded, 0 failed")
}

func TestSyncCommandNukeBacksUpRepositoriesButNotDocumentation(testInstance *testing.T) {
	executor := &fakeGitExecutor{}
	fileSystem := &fakeFileSystem{existingPaths: map[string]bool{
		"/workspace/docs/handbook": true,
		"/workspace/api":           true,
	}}
	configuration := syncConfiguration()

	builder := &syncer.CommandBuilder{
		ConfigurationProvider: func() workspace.Configuration { return configuration },
		GitExecutor:           executor,
		FileSystem:            fileSystem,
		Clock:                 fixedClock{instant: time.Date(2026, time.January, 5, 18, 4, 5, 0, time.UTC)},
		ConcurrencyLimit:      1,
	}
	_, execute := buildSyncCommand(testInstance, builder, "--parent-path", "/workspace", "--nuke")

	require.NoError(testInstance, execute())
	require.Equal(testInstance, []string{
		"fetch --all",
		"checkout v2",
		"checkout -b backup_20260105_180405",
		"push origin backup_20260105_180405",
	}, executor.commandLines())
	require.Equal(testInstance, []string{"/workspace/api"}, fileSystem.removedPaths)
}

func TestSyncCommandRejectsInvalidConfiguration(testInstance *testing.T) {
	builder := &syncer.CommandBuilder{
		ConfigurationProvider: func() workspace.Configuration { return workspace.Configuration{} },
		GitExecutor:           &fakeGitExecutor{},
		FileSystem:            &fakeFileSystem{},
		Clock:                 fixedClock{},
	}
	_, execute := buildSyncCommand(testInstance, builder)

	executionError := execute()
	require.Error(testInstance, executionError)

	var fatalError workspace.FatalConfigurationError
	require.ErrorAs(testInstance, executionError, &fatalError)
}

func TestSyncCommandPartialFailuresDoNotFailTheCommand(testInstance *testing.T) {
	executor := &fakeGitExecutor{}
	executor.respond = func(details execshell.CommandDetails) (execshell.ExecutionResult, error) {
		if strings.Contains(strings.Join(details.Arguments, " "), "api") {
			return execshell.ExecutionResult{}, execshell.CommandFailedError{
				Result: execshell.ExecutionResult{StandardError: "fatal: repository not found", ExitCode: 128},
			}
		}
		return execshell.ExecutionResult{}, nil
	}
	fileSystem := &fakeFileSystem{}
	configuration := syncConfiguration()

	builder := &syncer.CommandBuilder{
		ConfigurationProvider: func() workspace.Configuration { return configuration },
		GitExecutor:           executor,
		FileSystem:            fileSystem,
		Clock:                 fixedClock{},
		ConcurrencyLimit:      1,
	}
	outputBuffer, execute := buildSyncCommand(testInstance, builder, "--parent-path", "/workspace")

	require.NoError(testInstance, execute())
	require.Contains(testInstance, outputBuffer.String(), "Completed: 1 succeeded, 1 failed")
}

func TestSyncCommandLogsConfigurationFileFromContext(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.InfoLevel)
	logger := zap.New(observerCore)

	builder := &syncer.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return logger },
		ConfigurationProvider: func() workspace.Configuration { return syncConfiguration() },
		GitExecutor:           &fakeGitExecutor{},
		FileSystem:            &fakeFileSystem{},
		Clock:                 fixedClock{},
		ConcurrencyLimit:      1,
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	command.SetArgs([]string{"--parent-path", "/workspace"})

	executionContext := utils.NewCommandContextAccessor().WithConfigurationFilePath(context.Background(), "/etc/reposync.json")
	require.NoError(testInstance, command.ExecuteContext(executionContext))

	startEntries := observerLogs.FilterMessage("workspace sync starting").All()
	require.Len(testInstance, startEntries, 1)
	require.Equal(testInstance, "/etc/reposync.json", startEntries[0].ContextMap()["config_file"])
	require.Equal(testInstance, "/workspace", startEntries[0].ContextMap()["parent_path"])
}

func TestSyncCommandRejectsPositionalArguments(testInstance *testing.T) {
	builder := &syncer.CommandBuilder{
		ConfigurationProvider: func() workspace.Configuration { return syncConfiguration() },
		GitExecutor:           &fakeGitExecutor{},
		FileSystem:            &fakeFileSystem{},
		Clock:                 fixedClock{},
	}
	_, execute := buildSyncCommand(testInstance, builder, "unexpected")

	require.Error(testInstance, execute())
}
