package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// EnvironmentValueProvider resolves environment variable references found in paths.
type EnvironmentValueProvider func(name string) string

// WorkspacePathExpander converts user home shortcuts and environment variable references to concrete paths.
type WorkspacePathExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	environmentProvider   EnvironmentValueProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewWorkspacePathExpander constructs a WorkspacePathExpander using operating system lookups.
func NewWorkspacePathExpander() *WorkspacePathExpander {
	return NewWorkspacePathExpanderWithProviders(os.UserHomeDir, os.Getenv)
}

// NewWorkspacePathExpanderWithProviders constructs a WorkspacePathExpander with custom providers.
func NewWorkspacePathExpanderWithProviders(homeProvider HomeDirectoryProvider, environmentProvider EnvironmentValueProvider) *WorkspacePathExpander {
	if homeProvider == nil {
		homeProvider = os.UserHomeDir
	}
	if environmentProvider == nil {
		environmentProvider = os.Getenv
	}
	return &WorkspacePathExpander{homeDirectoryProvider: homeProvider, environmentProvider: environmentProvider}
}

// Expand resolves $VAR and ${VAR} references and a leading tilde to produce a concrete filesystem path.
func (expander *WorkspacePathExpander) Expand(candidatePath string) string {
	if expander == nil || len(candidatePath) == 0 {
		return candidatePath
	}

	expandedPath := os.Expand(candidatePath, expander.environmentProvider)
	if !strings.HasPrefix(expandedPath, tildeSymbolConstant) {
		return expandedPath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return expandedPath
	}

	if expandedPath == tildeSymbolConstant {
		return resolvedHomeDirectory
	}

	if strings.HasPrefix(expandedPath, tildeForwardSlashPrefixConstant) {
		relativePath := strings.TrimPrefix(expandedPath, tildeForwardSlashPrefixConstant)
		return filepath.Join(resolvedHomeDirectory, relativePath)
	}

	return expandedPath
}

func (expander *WorkspacePathExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
