package changes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/reposync/internal/execshell"
	"github.com/temirov/reposync/internal/syncer/shared"
	"github.com/temirov/reposync/internal/workspace"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	fileSystemMissingMessageConstant            = "file system not configured"
	commitMessageMissingMessageConstant         = "commit message is required"
	gitAddSubcommandConstant                    = "add"
	gitAddAllPathsArgumentConstant              = "."
	gitCommitSubcommandConstant                 = "commit"
	gitCommitMessageFlagConstant                = "-m"
	gitPushSubcommandConstant                   = "push"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	stageFailureTemplateConstant                = "staging %s in %s failed: %w"
	pushFailureTemplateConstant                 = "push of %s failed: %w"
	committedReportTemplateConstant             = "COMMITTED: %s\n"
	commitSkippedReportTemplateConstant         = "NOTHING TO COMMIT: %s\n"
	pushedReportTemplateConstant                = "PUSHED: %s\n"
	failedReportTemplateConstant                = "FAILED: %s (%v)\n"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrCommitMessageRequired indicates a commit was requested without a message.
var ErrCommitMessageRequired = errors.New(commitMessageMissingMessageConstant)

// Dependencies enumerates external collaborators required by the change service.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Reporter    shared.Reporter
}

// Options configures one commit or push pass over the configured repositories.
type Options struct {
	Configuration workspace.Configuration
	// ParentPath is the directory beneath which repository checkouts live.
	ParentPath string
	// Message is the commit message applied in every repository.
	Message string
	// Push additionally pushes after committing.
	Push bool
	// Branch, when set, pushes the named branch to origin instead of the current upstream.
	Branch string
	// Excluded lists repository names to skip.
	Excluded []string
	// Paths lists the paths staged before committing; empty stages everything.
	Paths []string
}

// Service commits and pushes local changes across the configured repositories.
//
// Repositories are visited sequentially in configuration order; commit and
// push operations touch working trees the user may be editing, so they are
// deliberately not fanned out concurrently.
type Service struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
	reporter   shared.Reporter
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(nil)
	}

	return &Service{
		executor:   dependencies.GitExecutor,
		fileSystem: dependencies.FileSystem,
		reporter:   reporter,
	}, nil
}

// CommitAll stages and commits changes in every present, non-excluded
// repository, optionally pushing afterwards. It returns one result per
// visited repository. The commit message is validated before any repository
// is touched.
func (service *Service) CommitAll(executionContext context.Context, options Options) ([]error, error) {
	if len(strings.TrimSpace(options.Message)) == 0 {
		return nil, ErrCommitMessageRequired
	}

	var results []error
	service.visitRepositories(options, func(repositoryName string, targetDirectory string) {
		results = append(results, service.commitRepository(executionContext, repositoryName, targetDirectory, options))
	})
	return results, nil
}

// PushAll pushes every present, non-excluded repository. It returns one
// result per visited repository.
func (service *Service) PushAll(executionContext context.Context, options Options) []error {
	var results []error
	service.visitRepositories(options, func(repositoryName string, targetDirectory string) {
		results = append(results, service.pushRepository(executionContext, repositoryName, targetDirectory, options))
	})
	return results
}

// visitRepositories walks the configured repositories in order, skipping
// excluded names and absent directories without recording a result.
func (service *Service) visitRepositories(options Options, visit func(repositoryName string, targetDirectory string)) {
	excludedNames := make(map[string]bool, len(options.Excluded))
	for _, excludedName := range options.Excluded {
		excludedNames[strings.TrimSpace(excludedName)] = true
	}

	for _, descriptor := range options.Configuration.Repositories {
		if excludedNames[descriptor.Name] {
			continue
		}
		targetDirectory := filepath.Join(options.ParentPath, descriptor.Name)
		if _, statError := service.fileSystem.Stat(targetDirectory); statError != nil {
			continue
		}
		visit(descriptor.Name, targetDirectory)
	}
}

func (service *Service) commitRepository(executionContext context.Context, repositoryName string, targetDirectory string, options Options) error {
	if stageError := service.stagePaths(executionContext, targetDirectory, options.Paths); stageError != nil {
		stageFailure := fmt.Errorf(stageFailureTemplateConstant, strings.Join(options.Paths, " "), repositoryName, stageError)
		service.reporter.Printf(failedReportTemplateConstant, repositoryName, stageError)
		return stageFailure
	}

	commitError := service.executeGit(executionContext, targetDirectory, gitCommitSubcommandConstant, gitCommitMessageFlagConstant, options.Message)
	if commitError != nil {
		// Typically "nothing to commit"; the repository is not failed for it.
		service.reporter.Printf(commitSkippedReportTemplateConstant, repositoryName)
	} else {
		service.reporter.Printf(committedReportTemplateConstant, repositoryName)
	}

	if !options.Push {
		return nil
	}
	return service.pushRepository(executionContext, repositoryName, targetDirectory, options)
}

func (service *Service) pushRepository(executionContext context.Context, repositoryName string, targetDirectory string, options Options) error {
	pushArguments := []string{gitPushSubcommandConstant}
	if len(strings.TrimSpace(options.Branch)) > 0 {
		pushArguments = append(pushArguments, shared.OriginRemoteNameConstant, strings.TrimSpace(options.Branch))
	}

	if pushError := service.executeGit(executionContext, targetDirectory, pushArguments...); pushError != nil {
		pushFailure := fmt.Errorf(pushFailureTemplateConstant, repositoryName, pushError)
		service.reporter.Printf(failedReportTemplateConstant, repositoryName, pushError)
		return pushFailure
	}

	service.reporter.Printf(pushedReportTemplateConstant, repositoryName)
	return nil
}

func (service *Service) stagePaths(executionContext context.Context, targetDirectory string, paths []string) error {
	if len(paths) == 0 {
		return service.executeGit(executionContext, targetDirectory, gitAddSubcommandConstant, gitAddAllPathsArgumentConstant)
	}
	for _, pathToStage := range paths {
		if stageError := service.executeGit(executionContext, targetDirectory, gitAddSubcommandConstant, pathToStage); stageError != nil {
			return stageError
		}
	}
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
