package changes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposync/internal/syncer/dependencies"
	"github.com/temirov/reposync/internal/syncer/shared"
	pathutils "github.com/temirov/reposync/internal/utils/path"
	"github.com/temirov/reposync/internal/workspace"
)

const (
	commitCommandUseConstant              = "commit"
	commitCommandShortDescriptionConstant = "Commit local changes in every configured repository"
	commitCommandLongDescriptionConstant  = "commit stages and commits local changes in each configured repository, optionally pushing the result. Repositories without a local checkout are skipped."
	pushCommandUseConstant                = "push"
	pushCommandShortDescriptionConstant   = "Push local commits in every configured repository"
	pushCommandLongDescriptionConstant    = "push publishes local commits from each configured repository, optionally targeting a named branch on origin. Repositories without a local checkout are skipped."
	unexpectedArgumentsMessageConstant    = "positional arguments are not accepted"
	configurationMissingMessageConstant   = "configuration provider not configured"
	flagMessageNameConstant               = "message"
	flagMessageShorthandConstant          = "m"
	flagMessageDescriptionConstant        = "Commit message applied in every repository"
	flagPushNameConstant                  = "push"
	flagPushDescriptionConstant           = "Push each repository after committing"
	flagBranchNameConstant                = "branch"
	flagBranchDescriptionConstant         = "Branch pushed to origin instead of the current upstream"
	flagExcludeNameConstant               = "exclude"
	flagExcludeDescriptionConstant        = "Repository names to skip"
	flagPathsNameConstant                 = "paths"
	flagPathsDescriptionConstant          = "Paths staged before committing (defaults to everything)"
	flagParentPathNameConstant            = "parent-path"
	flagParentPathDescriptionConstant     = "Directory beneath which repository checkouts live (defaults to the parent of the working directory)"
	workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"
	summaryTemplateConstant               = "Completed: %d succeeded, %d failed\n"
)

var (
	errUnexpectedArguments          = errors.New(unexpectedArgumentsMessageConstant)
	errConfigurationProviderMissing = errors.New(configurationMissingMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded workspace configuration.
type ConfigurationProvider func() workspace.Configuration

// CommandBuilder assembles the Cobra commands for committing and pushing
// workspace changes.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	FileSystem            shared.FileSystem
	Reporter              shared.Reporter
	// HumanReadableLoggingProvider reports whether console-format logging is
	// active once configuration has been resolved.
	HumanReadableLoggingProvider func() bool
}

// BuildCommitCommand constructs the commit command.
func (builder *CommandBuilder) BuildCommitCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commitCommandUseConstant,
		Short: commitCommandShortDescriptionConstant,
		Long:  commitCommandLongDescriptionConstant,
		RunE:  builder.runCommit,
	}

	command.Flags().StringP(flagMessageNameConstant, flagMessageShorthandConstant, "", flagMessageDescriptionConstant)
	command.Flags().Bool(flagPushNameConstant, false, flagPushDescriptionConstant)
	command.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, nil, flagExcludeDescriptionConstant)
	command.Flags().StringSlice(flagPathsNameConstant, nil, flagPathsDescriptionConstant)
	command.Flags().String(flagParentPathNameConstant, "", flagParentPathDescriptionConstant)

	return command, nil
}

// BuildPushCommand constructs the push command.
func (builder *CommandBuilder) BuildPushCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortDescriptionConstant,
		Long:  pushCommandLongDescriptionConstant,
		RunE:  builder.runPush,
	}

	command.Flags().String(flagBranchNameConstant, "", flagBranchDescriptionConstant)
	command.Flags().StringSlice(flagExcludeNameConstant, nil, flagExcludeDescriptionConstant)
	command.Flags().String(flagParentPathNameConstant, "", flagParentPathDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) runCommit(command *cobra.Command, arguments []string) error {
	service, options, reporter, preparationError := builder.prepare(command, arguments)
	if preparationError != nil {
		return preparationError
	}

	messageValue, _ := command.Flags().GetString(flagMessageNameConstant)
	pushValue, _ := command.Flags().GetBool(flagPushNameConstant)
	pathsValue, _ := command.Flags().GetStringSlice(flagPathsNameConstant)
	options.Message = messageValue
	options.Push = pushValue
	options.Paths = pathsValue

	results, commitError := service.CommitAll(command.Context(), options)
	if commitError != nil {
		return commitError
	}

	reportSummary(reporter, results)
	return nil
}

func (builder *CommandBuilder) runPush(command *cobra.Command, arguments []string) error {
	service, options, reporter, preparationError := builder.prepare(command, arguments)
	if preparationError != nil {
		return preparationError
	}

	results := service.PushAll(command.Context(), options)
	reportSummary(reporter, results)
	return nil
}

func (builder *CommandBuilder) prepare(command *cobra.Command, arguments []string) (*Service, Options, shared.Reporter, error) {
	if len(arguments) > 0 {
		return nil, Options{}, nil, errUnexpectedArguments
	}
	if builder.ConfigurationProvider == nil {
		return nil, Options{}, nil, errConfigurationProviderMissing
	}

	configuration := builder.ConfigurationProvider()
	if validationError := configuration.Validate(); validationError != nil {
		return nil, Options{}, nil, validationError
	}

	parentPath, parentPathError := builder.resolveParentPath(command)
	if parentPathError != nil {
		return nil, Options{}, nil, parentPathError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLoggingEnabled())
	if executorError != nil {
		return nil, Options{}, nil, executorError
	}
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	reporter := builder.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(command.OutOrStdout())
	}

	service, serviceError := NewService(Dependencies{
		GitExecutor: gitExecutor,
		FileSystem:  fileSystem,
		Reporter:    reporter,
	})
	if serviceError != nil {
		return nil, Options{}, nil, serviceError
	}

	branchValue, _ := command.Flags().GetString(flagBranchNameConstant)
	excludedValue, _ := command.Flags().GetStringSlice(flagExcludeNameConstant)

	options := Options{
		Configuration: configuration,
		ParentPath:    parentPath,
		Branch:        branchValue,
		Excluded:      excludedValue,
	}
	return service, options, reporter, nil
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

func reportSummary(reporter shared.Reporter, results []error) {
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
