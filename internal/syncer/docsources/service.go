package docsources

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/reposync/internal/execshell"
	"github.com/temirov/reposync/internal/gitrepo"
	"github.com/temirov/reposync/internal/syncer/shared"
	"github.com/temirov/reposync/internal/taskrunner"
	"github.com/temirov/reposync/internal/workspace"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	fileSystemMissingMessageConstant            = "file system not configured"
	taskRunnerMissingMessageConstant            = "task runner not configured"
	gitCloneSubcommandConstant                  = "clone"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchAllFlagConstant                     = "--all"
	gitCheckoutSubcommandConstant               = "checkout"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	baseDirectoryPermissionsConstant            = 0o755
	cloneFailureTemplateConstant                = "clone of %s failed: %w"
	baseDirectoryFailureTemplateConstant        = "unable to create %s: %w"
	updatedReportTemplateConstant               = "UPDATED: %s\n"
	clonedReportTemplateConstant                = "CLONED: %s\n"
	retryingReportTemplateConstant              = "RETRYING over HTTPS: %s\n"
	failedReportTemplateConstant                = "FAILED: %s (%v)\n"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrTaskRunnerNotConfigured indicates the task runner dependency was missing.
var ErrTaskRunnerNotConfigured = errors.New(taskRunnerMissingMessageConstant)

// Dependencies enumerates external collaborators required by the documentation syncer.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Reporter    shared.Reporter
	TaskRunner  *taskrunner.Runner
}

// Options configures one documentation sync batch.
type Options struct {
	Sources []workspace.DocumentationSource
	// BasePath is the expanded documentation base directory.
	BasePath string
	// DefaultHost names the git host used to normalize bare org/repo references.
	DefaultHost string
}

// Service brings the documentation base directory into sync with the declared sources.
type Service struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
	reporter   shared.Reporter
	taskRunner *taskrunner.Runner
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.TaskRunner == nil {
		return nil, ErrTaskRunnerNotConfigured
	}

	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(nil)
	}

	return &Service{
		executor:   dependencies.GitExecutor,
		fileSystem: dependencies.FileSystem,
		reporter:   reporter,
		taskRunner: dependencies.TaskRunner,
	}, nil
}

// Sync processes every documentation source under the concurrency cap and
// returns one result per source in input order.
func (service *Service) Sync(executionContext context.Context, options Options) []error {
	syncTasks := make([]taskrunner.Task, 0, len(options.Sources))
	for _, documentationSource := range options.Sources {
		sourceToSync := documentationSource
		syncTasks = append(syncTasks, func(taskContext context.Context) error {
			return service.syncSource(taskContext, sourceToSync, options)
		})
	}
	return service.taskRunner.Run(executionContext, syncTasks)
}

func (service *Service) syncSource(executionContext context.Context, source workspace.DocumentationSource, options Options) error {
	repositoryName := gitrepo.RepositoryNameFromReference(source.Repo)
	targetDirectory := filepath.Join(options.BasePath, repositoryName)

	if _, statError := service.fileSystem.Stat(targetDirectory); statError == nil {
		service.updateSource(executionContext, source, targetDirectory)
		return nil
	}

	return service.cloneSource(executionContext, source, targetDirectory, options)
}

// updateSource refreshes an existing checkout. Fetch and checkout failures do
// not mark the source failed; only the clone path short-circuits.
func (service *Service) updateSource(executionContext context.Context, source workspace.DocumentationSource, targetDirectory string) {
	if fetchError := service.executeGit(executionContext, targetDirectory, gitFetchSubcommandConstant, gitFetchAllFlagConstant); fetchError != nil {
		service.reporter.Printf(failedReportTemplateConstant, targetDirectory, fetchError)
	}
	if checkoutError := service.executeGit(executionContext, targetDirectory, gitCheckoutSubcommandConstant, source.CheckoutTag()); checkoutError != nil {
		service.reporter.Printf(failedReportTemplateConstant, targetDirectory, checkoutError)
	}
	service.reporter.Printf(updatedReportTemplateConstant, targetDirectory)
}

func (service *Service) cloneSource(executionContext context.Context, source workspace.DocumentationSource, targetDirectory string, options Options) error {
	if mkdirError := service.fileSystem.MkdirAll(options.BasePath, baseDirectoryPermissionsConstant); mkdirError != nil {
		creationFailure := fmt.Errorf(baseDirectoryFailureTemplateConstant, options.BasePath, mkdirError)
		service.reporter.Printf(failedReportTemplateConstant, source.Repo, creationFailure)
		return creationFailure
	}

	parsedRemote, parseError := gitrepo.ParseRepositoryReference(source.Repo)
	if parseError != nil {
		service.reporter.Printf(failedReportTemplateConstant, source.Repo, parseError)
		return parseError
	}
	if len(parsedRemote.Host) == 0 {
		parsedRemote.Host = service.resolvedDefaultHost(options)
	}

	cloneURL, formatError := gitrepo.FormatRemoteURL(parsedRemote)
	if formatError != nil {
		service.reporter.Printf(failedReportTemplateConstant, source.Repo, formatError)
		return formatError
	}

	cloneError := service.executeGit(executionContext, "", gitCloneSubcommandConstant, cloneURL, targetDirectory)
	if cloneError != nil && isPublickeyDenied(cloneError) {
		httpsRemote := parsedRemote
		httpsRemote.Protocol = gitrepo.RemoteProtocolHTTPS
		httpsURL, httpsFormatError := gitrepo.FormatRemoteURL(httpsRemote)
		if httpsFormatError != nil {
			service.reporter.Printf(failedReportTemplateConstant, source.Repo, httpsFormatError)
			return httpsFormatError
		}
		service.reporter.Printf(retryingReportTemplateConstant, httpsURL)
		cloneError = service.executeGit(executionContext, "", gitCloneSubcommandConstant, httpsURL, targetDirectory)
	}
	if cloneError != nil {
		cloneFailure := fmt.Errorf(cloneFailureTemplateConstant, source.Repo, cloneError)
		service.reporter.Printf(failedReportTemplateConstant, source.Repo, cloneError)
		return cloneFailure
	}

	if len(strings.TrimSpace(source.Tag)) > 0 {
		// The post-clone checkout result is intentionally not verified.
		_ = service.executeGit(executionContext, targetDirectory, gitCheckoutSubcommandConstant, source.CheckoutTag())
	}

	service.reporter.Printf(clonedReportTemplateConstant, targetDirectory)
	return nil
}

func (service *Service) resolvedDefaultHost(options Options) string {
	trimmedHost := strings.TrimSpace(options.DefaultHost)
	if len(trimmedHost) == 0 {
		return workspace.DefaultGitHubHost
	}
	return trimmedHost
}

func (service *Service) executeGit(executionContext context.Context, workingDirectory string, arguments ...string) error {
	_, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	})
	return executionError
}

func isPublickeyDenied(executionError error) bool {
	var commandFailure execshell.CommandFailedError
	if !errors.As(executionError, &commandFailure) {
		return false
	}
	return strings.Contains(commandFailure.Result.StandardError, shared.PublickeyDeniedStderrConstant)
}
