package workspace

import (
	"fmt"
	"strings"
)

const (
	// DefaultGitHubHost is assumed when the configuration does not name a host.
	DefaultGitHubHost = "github.com"
	// DefaultDocumentationTag is checked out when a documentation source names no tag.
	DefaultDocumentationTag = "main"

	fatalConfigurationTemplateConstant          = "configuration invalid: %s"
	missingProjectNameMessageConstant           = "project_name is required"
	missingRepositoryOwnerMessageConstant       = "repo_org is required"
	missingRepositoriesMessageConstant          = "repositories must list at least one repository"
	unnamedRepositoryTemplateConstant           = "repositories[%d] is missing a name"
	missingDocumentationSourceTemplateConstant  = "documentation_sources[%d] is missing a repo reference"
	missingDocumentationBasePathMessageConstant = "docs_base_path is required when documentation_sources are configured"
)

// FatalConfigurationError marks configuration problems that stop the whole run before any work begins.
type FatalConfigurationError struct {
	Message string
}

// Error describes the configuration failure.
func (configurationError FatalConfigurationError) Error() string {
	return fmt.Sprintf(fatalConfigurationTemplateConstant, configurationError.Message)
}

// RepositoryDescriptor declares one project repository managed by the workspace.
type RepositoryDescriptor struct {
	Name string `mapstructure:"name" json:"name"`
	// Org overrides the workspace-wide repository owner when non-empty.
	Org string `mapstructure:"org" json:"org,omitempty"`
	// Host overrides the workspace-wide git host when non-empty.
	Host string `mapstructure:"host" json:"host,omitempty"`
}

// DocumentationSource declares one documentation repository tracked under the docs base path.
type DocumentationSource struct {
	// Repo accepts SSH, HTTPS, or bare org/repo references.
	Repo string `mapstructure:"repo" json:"repo"`
	// Tag names the branch or tag checked out after clone or update.
	Tag string `mapstructure:"tag" json:"tag,omitempty"`
}

// Configuration is the immutable workspace description loaded once at process start.
type Configuration struct {
	ProjectName          string                 `mapstructure:"project_name" json:"project_name"`
	RepositoryOwner      string                 `mapstructure:"repo_org" json:"repo_org"`
	GitHubHost           string                 `mapstructure:"github_host" json:"github_host"`
	DocumentationPath    string                 `mapstructure:"docs_base_path" json:"docs_base_path,omitempty"`
	Repositories         []RepositoryDescriptor `mapstructure:"repositories" json:"repositories"`
	DocumentationSources []DocumentationSource  `mapstructure:"documentation_sources" json:"documentation_sources,omitempty"`
}

// Validate reports the first fatal configuration problem, if any.
func (configuration Configuration) Validate() error {
	if len(strings.TrimSpace(configuration.ProjectName)) == 0 {
		return FatalConfigurationError{Message: missingProjectNameMessageConstant}
	}
	if len(strings.TrimSpace(configuration.RepositoryOwner)) == 0 {
		return FatalConfigurationError{Message: missingRepositoryOwnerMessageConstant}
	}
	if len(configuration.Repositories) == 0 {
		return FatalConfigurationError{Message: missingRepositoriesMessageConstant}
	}
	for repositoryIndex, repositoryDescriptor := range configuration.Repositories {
		if len(strings.TrimSpace(repositoryDescriptor.Name)) == 0 {
			return FatalConfigurationError{Message: fmt.Sprintf(unnamedRepositoryTemplateConstant, repositoryIndex)}
		}
	}
	for sourceIndex, documentationSource := range configuration.DocumentationSources {
		if len(strings.TrimSpace(documentationSource.Repo)) == 0 {
			return FatalConfigurationError{Message: fmt.Sprintf(missingDocumentationSourceTemplateConstant, sourceIndex)}
		}
	}
	if len(configuration.DocumentationSources) > 0 && len(strings.TrimSpace(configuration.DocumentationPath)) == 0 {
		return FatalConfigurationError{Message: missingDocumentationBasePathMessageConstant}
	}
	return nil
}

// ResolvedHost returns the configured host falling back to the default.
func (configuration Configuration) ResolvedHost() string {
	trimmedHost := strings.TrimSpace(configuration.GitHubHost)
	if len(trimmedHost) == 0 {
		return DefaultGitHubHost
	}
	return trimmedHost
}

// OwnerFor resolves the owner for a repository descriptor honoring per-repository overrides.
func (configuration Configuration) OwnerFor(descriptor RepositoryDescriptor) string {
	trimmedOwner := strings.TrimSpace(descriptor.Org)
	if len(trimmedOwner) > 0 {
		return trimmedOwner
	}
	return strings.TrimSpace(configuration.RepositoryOwner)
}

// HostFor resolves the git host for a repository descriptor honoring per-repository overrides.
func (configuration Configuration) HostFor(descriptor RepositoryDescriptor) string {
	trimmedHost := strings.TrimSpace(descriptor.Host)
	if len(trimmedHost) > 0 {
		return trimmedHost
	}
	return configuration.ResolvedHost()
}

// CheckoutTag returns the source's tag falling back to the default documentation tag.
func (source DocumentationSource) CheckoutTag() string {
	trimmedTag := strings.TrimSpace(source.Tag)
	if len(trimmedTag) == 0 {
		return DefaultDocumentationTag
	}
	return trimmedTag
}
