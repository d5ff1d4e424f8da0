package remote

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

const githubHostMarkerConstant = "github"

// ErrProviderNotConfigured indicates a Registry was constructed without both providers.
var ErrProviderNotConfigured = errors.New("hosting provider not configured")

// Registry routes every Provider operation on the organization URL's host:
// hosts containing "github" use the GitHub provider, all others use the
// DevOps provider.
type Registry struct {
	gitHubProvider Provider
	devOpsProvider Provider
}

// NewRegistry constructs a Registry over the provided hosting providers.
func NewRegistry(gitHubProvider Provider, devOpsProvider Provider) (*Registry, error) {
	if gitHubProvider == nil || devOpsProvider == nil {
		return nil, ErrProviderNotConfigured
	}
	return &Registry{gitHubProvider: gitHubProvider, devOpsProvider: devOpsProvider}, nil
}

// ListProjects delegates to the provider matching the organization URL.
func (registry *Registry) ListProjects(executionContext context.Context, organizationURL string, secret string) ([]string, error) {
	return registry.providerFor(organizationURL).ListProjects(executionContext, organizationURL, secret)
}

// ListRepositories delegates to the provider matching the organization URL.
func (registry *Registry) ListRepositories(executionContext context.Context, organizationURL string, projectName string, secret string) ([]string, error) {
	return registry.providerFor(organizationURL).ListRepositories(executionContext, organizationURL, projectName, secret)
}

// RepositoryRemoteURL delegates to the provider matching the organization URL.
func (registry *Registry) RepositoryRemoteURL(organizationURL string, projectName string, repositoryName string) string {
	return registry.providerFor(organizationURL).RepositoryRemoteURL(organizationURL, projectName, repositoryName)
}

// AuthorizationHeaderFor renders the clone credential for an organization's secret.
func (registry *Registry) AuthorizationHeaderFor(organizationURL string, secret string) string {
	return registry.providerFor(organizationURL).AuthorizationHeader(secret)
}

func (registry *Registry) providerFor(organizationURL string) Provider {
	parsedURL, parseError := url.Parse(strings.TrimSpace(organizationURL))
	if parseError == nil && strings.Contains(strings.ToLower(parsedURL.Host), githubHostMarkerConstant) {
		return registry.gitHubProvider
	}
	return registry.devOpsProvider
}
