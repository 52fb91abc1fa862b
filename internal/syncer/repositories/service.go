package repositories

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
	clockMissingMessageConstant                 = "clock not configured"
	taskRunnerMissingMessageConstant            = "task runner not configured"
	gitCloneSubcommandConstant                  = "clone"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchAllFlagConstant                     = "--all"
	gitCheckoutSubcommandConstant               = "checkout"
	gitCheckoutNewBranchFlagConstant            = "-b"
	gitPushSubcommandConstant                   = "push"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	backupBranchPrefixConstant                  = "backup_"
	backupBranchTimestampLayoutConstant         = "20060102_150405"
	fetchFailureTemplateConstant                = "fetch of %s failed: %w"
	cloneFailureTemplateConstant                = "clone of %s failed: %w"
	removalFailureTemplateConstant              = "removal of %s failed: %w"
	updatedReportTemplateConstant               = "UPDATED: %s\n"
	clonedReportTemplateConstant                = "CLONED: %s\n"
	backedUpReportTemplateConstant              = "BACKED UP: %s (%s)\n"
	skippedReportTemplateConstant               = "SKIPPED: %s (not present)\n"
	retryingReportTemplateConstant              = "RETRYING over HTTPS: %s\n"
	failedReportTemplateConstant                = "FAILED: %s (%v)\n"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrClockNotConfigured indicates the clock dependency was missing.
var ErrClockNotConfigured = errors.New(clockMissingMessageConstant)

// ErrTaskRunnerNotConfigured indicates the task runner dependency was missing.
var ErrTaskRunnerNotConfigured = errors.New(taskRunnerMissingMessageConstant)

// Dependencies enumerates external collaborators required by the repository syncer.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Clock       shared.Clock
	Reporter    shared.Reporter
	TaskRunner  *taskrunner.Runner
}

// Options configures one repository sync batch.
type Options struct {
	Configuration workspace.Configuration
	// ParentPath is the directory beneath which repository checkouts live.
	ParentPath string
	// Nuke switches every repository from clone-or-update to backup-and-remove.
	Nuke bool
}

// Service clones, updates, or backs up the configured repositories.
type Service struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
	clock      shared.Clock
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
	if dependencies.Clock == nil {
		return nil, ErrClockNotConfigured
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
		clock:      dependencies.Clock,
		reporter:   reporter,
		taskRunner: dependencies.TaskRunner,
	}, nil
}

// Sync processes every configured repository under the concurrency cap and
// returns one result per repository in configuration order.
func (service *Service) Sync(executionContext context.Context, options Options) []error {
	repositoryTasks := make([]taskrunner.Task, 0, len(options.Configuration.Repositories))
	for _, repositoryDescriptor := range options.Configuration.Repositories {
		descriptorToProcess := repositoryDescriptor
		repositoryTasks = append(repositoryTasks, func(taskContext context.Context) error {
			if options.Nuke {
				return service.backupRepository(taskContext, descriptorToProcess, options)
			}
			return service.cloneOrUpdateRepository(taskContext, descriptorToProcess, options)
		})
	}
	return service.taskRunner.Run(executionContext, repositoryTasks)
}

func (service *Service) cloneOrUpdateRepository(executionContext context.Context, descriptor workspace.RepositoryDescriptor, options Options) error {
	targetDirectory := filepath.Join(options.ParentPath, descriptor.Name)

	if _, statError := service.fileSystem.Stat(targetDirectory); statError == nil {
		if fetchError := service.executeGit(executionContext, targetDirectory, gitFetchSubcommandConstant, gitFetchAllFlagConstant); fetchError != nil {
			fetchFailure := fmt.Errorf(fetchFailureTemplateConstant, descriptor.Name, fetchError)
			service.reporter.Printf(failedReportTemplateConstant, descriptor.Name, fetchError)
			return fetchFailure
		}
		service.reporter.Printf(updatedReportTemplateConstant, targetDirectory)
		return nil
	}

	remoteURL := gitrepo.RemoteURL{
		Protocol:   gitrepo.RemoteProtocolSSH,
		Host:       options.Configuration.HostFor(descriptor),
		Owner:      options.Configuration.OwnerFor(descriptor),
		Repository: descriptor.Name,
	}
	sshURL, sshFormatError := gitrepo.FormatRemoteURL(remoteURL)
	if sshFormatError != nil {
		service.reporter.Printf(failedReportTemplateConstant, descriptor.Name, sshFormatError)
		return sshFormatError
	}

	cloneError := service.executeGit(executionContext, "", gitCloneSubcommandConstant, sshURL, targetDirectory)
	if cloneError != nil && isPublickeyDenied(cloneError) {
		httpsRemote := remoteURL
		httpsRemote.Protocol = gitrepo.RemoteProtocolHTTPS
		httpsURL, httpsFormatError := gitrepo.FormatRemoteURL(httpsRemote)
		if httpsFormatError != nil {
			service.reporter.Printf(failedReportTemplateConstant, descriptor.Name, httpsFormatError)
			return httpsFormatError
		}
		service.reporter.Printf(retryingReportTemplateConstant, httpsURL)
		cloneError = service.executeGit(executionContext, "", gitCloneSubcommandConstant, httpsURL, targetDirectory)
	}
	if cloneError != nil {
		cloneFailure := fmt.Errorf(cloneFailureTemplateConstant, descriptor.Name, cloneError)
		service.reporter.Printf(failedReportTemplateConstant, descriptor.Name, cloneError)
		return cloneFailure
	}

	service.reporter.Printf(clonedReportTemplateConstant, targetDirectory)
	return nil
}

// backupRepository creates a timestamped branch, pushes it, and deletes the
// local checkout. Checkout and push results are intentionally not verified
// before the deletion; only the deletion itself can fail the repository.
func (service *Service) backupRepository(executionContext context.Context, descriptor workspace.RepositoryDescriptor, options Options) error {
	targetDirectory := filepath.Join(options.ParentPath, descriptor.Name)

	if _, statError := service.fileSystem.Stat(targetDirectory); statError != nil {
		service.reporter.Printf(skippedReportTemplateConstant, descriptor.Name)
		return nil
	}

	backupBranchName := backupBranchPrefixConstant + service.clock.Now().Format(backupBranchTimestampLayoutConstant)
	_ = service.executeGit(executionContext, targetDirectory, gitCheckoutSubcommandConstant, gitCheckoutNewBranchFlagConstant, backupBranchName)
	_ = service.executeGit(executionContext, targetDirectory, gitPushSubcommandConstant, shared.OriginRemoteNameConstant, backupBranchName)

	if removalError := service.fileSystem.RemoveAll(targetDirectory); removalError != nil {
		removalFailure := fmt.Errorf(removalFailureTemplateConstant, targetDirectory, removalError)
		service.reporter.Printf(failedReportTemplateConstant, descriptor.Name, removalError)
		return removalFailure
	}

	service.reporter.Printf(backedUpReportTemplateConstant, descriptor.Name, backupBranchName)
	return nil
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
