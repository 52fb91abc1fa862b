package utils

import "context"

type configurationFilePathContextKey struct{}

// CommandContextAccessor moves request-scoped values between the root
// command's configuration phase and subcommand execution without globals.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records which configuration file initialization resolved.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKey{}, configurationFilePath)
}

// ConfigurationFilePath reports the configuration file recorded during
// initialization. The second result is false when no file was recorded or
// initialization ran without finding one.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, recorded := executionContext.Value(configurationFilePathContextKey{}).(string)
	if !recorded || len(configurationFilePath) == 0 {
		return "", false
	}
	return configurationFilePath, true
}
