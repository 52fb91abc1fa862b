package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposync/internal/syncer/dependencies"
	"github.com/temirov/reposync/internal/syncer/docsources"
	"github.com/temirov/reposync/internal/syncer/repositories"
	"github.com/temirov/reposync/internal/syncer/shared"
	"github.com/temirov/reposync/internal/taskrunner"
	"github.com/temirov/reposync/internal/utils"
	pathutils "github.com/temirov/reposync/internal/utils/path"
	"github.com/temirov/reposync/internal/workspace"
)

const (
	commandUseConstant                    = "sync"
	commandShortDescriptionConstant       = "Clone or update every configured repository and documentation source"
	commandLongDescriptionConstant        = "sync brings the workspace in line with the configuration: documentation sources are cloned or refreshed first, then every repository is cloned or updated. With --nuke each repository is instead backed up to a timestamped remote branch and removed locally."
	unexpectedArgumentsMessageConstant    = "sync does not accept positional arguments"
	configurationMissingMessageConstant   = "configuration provider not configured"
	flagNukeNameConstant                  = "nuke"
	flagNukeDescriptionConstant           = "Back up each repository to a timestamped branch and delete the local copy"
	flagParentPathNameConstant            = "parent-path"
	flagParentPathDescriptionConstant     = "Directory beneath which repository checkouts live (defaults to the parent of the working directory)"
	workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	summaryTemplateConstant               = "Completed: %d succeeded, %d failed\n"
	syncStartingMessageConstant           = "workspace sync starting"
	logFieldConfigurationFileConstant     = "config_file"
	logFieldNukeConstant                  = "nuke"
	logFieldParentPathConstant            = "parent_path"
)

var (
	errUnexpectedArguments          = errors.New(unexpectedArgumentsMessageConstant)
	errConfigurationProviderMissing = errors.New(configurationMissingMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded workspace configuration.
type ConfigurationProvider func() workspace.Configuration

// CommandBuilder assembles the Cobra command for workspace synchronization.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	FileSystem            shared.FileSystem
	Clock                 shared.Clock
	Reporter              shared.Reporter
	ConcurrencyLimit      int
	// HumanReadableLoggingProvider reports whether console-format logging is
	// active once configuration has been resolved.
	HumanReadableLoggingProvider func() bool
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Bool(flagNukeNameConstant, false, flagNukeDescriptionConstant)
	command.Flags().String(flagParentPathNameConstant, "", flagParentPathDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}
	if builder.ConfigurationProvider == nil {
		return errConfigurationProviderMissing
	}

	configuration := builder.ConfigurationProvider()
	if validationError := configuration.Validate(); validationError != nil {
		return validationError
	}

	nukeRequested, _ := command.Flags().GetBool(flagNukeNameConstant)
	parentPath, parentPathError := builder.resolveParentPath(command)
	if parentPathError != nil {
		return parentPathError
	}

	logger := builder.resolveLogger()
	if configurationFilePath, pathAvailable := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context()); pathAvailable {
		logger.Info(
			syncStartingMessageConstant,
			zap.String(logFieldConfigurationFileConstant, configurationFilePath),
			zap.Bool(logFieldNukeConstant, nukeRequested),
			zap.String(logFieldParentPathConstant, parentPath),
		)
	}
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLoggingEnabled())
	if executorError != nil {
		return executorError
	}
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	clock := dependencies.ResolveClock(builder.Clock)
	reporter := builder.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(command.OutOrStdout())
	}

	documentationRunner, documentationRunnerError := taskrunner.NewRunner(builder.resolveConcurrencyLimit())
	if documentationRunnerError != nil {
		return documentationRunnerError
	}
	repositoryRunner, repositoryRunnerError := taskrunner.NewRunner(builder.resolveConcurrencyLimit())
	if repositoryRunnerError != nil {
		return repositoryRunnerError
	}

	documentationResults, documentationError := builder.syncDocumentationSources(command.Context(), configuration, gitExecutor, fileSystem, reporter, documentationRunner)
	if documentationError != nil {
		return documentationError
	}

	repositoryService, repositoryServiceError := repositories.NewService(repositories.Dependencies{
		GitExecutor: gitExecutor,
		FileSystem:  fileSystem,
		Clock:       clock,
		Reporter:    reporter,
		TaskRunner:  repositoryRunner,
	})
	if repositoryServiceError != nil {
		return repositoryServiceError
	}

	repositoryResults := repositoryService.Sync(command.Context(), repositories.Options{
		Configuration: configuration,
		ParentPath:    parentPath,
		Nuke:          nukeRequested,
	})

	builder.reportSummary(reporter, append(documentationResults, repositoryResults...))
	return nil
}

// syncDocumentationSources always runs before repository work, even in nuke mode.
func (builder *CommandBuilder) syncDocumentationSources(executionContext context.Context, configuration workspace.Configuration, gitExecutor shared.GitExecutor, fileSystem shared.FileSystem, reporter shared.Reporter, taskRunner *taskrunner.Runner) ([]error, error) {
	if len(configuration.DocumentationSources) == 0 {
		return nil, nil
	}

	documentationService, serviceError := docsources.NewService(docsources.Dependencies{
		GitExecutor: gitExecutor,
		FileSystem:  fileSystem,
		Reporter:    reporter,
		TaskRunner:  taskRunner,
	})
	if serviceError != nil {
		return nil, serviceError
	}

	expandedBasePath := pathutils.NewWorkspacePathExpander().Expand(configuration.DocumentationPath)
	documentationResults := documentationService.Sync(executionContext, docsources.Options{
		Sources:     configuration.DocumentationSources,
		BasePath:    expandedBasePath,
		DefaultHost: configuration.ResolvedHost(),
	})
	return documentationResults, nil
}

func (builder *CommandBuilder) resolveParentPath(command *cobra.Command) (string, error) {
	parentPathValue, _ := command.Flags().GetString(flagParentPathNameConstant)
	if len(parentPathValue) > 0 {
		return pathutils.NewWorkspacePathExpander().Expand(parentPathValue), nil
	}

	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return filepath.Dir(workingDirectory), nil
}

func (builder *CommandBuilder) resolveConcurrencyLimit() int {
	if builder.ConcurrencyLimit > 0 {
		return builder.ConcurrencyLimit
	}
	return taskrunner.DefaultConcurrencyLimit
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) reportSummary(reporter shared.Reporter, results []error) {
	succeededCount := 0
	failedCount := 0
	for _, result := range results {
		if result == nil {
			succeededCount++
			continue
		}
		failedCount++
	}
	reporter.Printf(summaryTemplateConstant, succeededCount, failedCount)
}
