package remote_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repofleet/internal/remote"
)

const (
	testGitHubOrganizationURLConstant = "https://github.com/acme"
	testDevOpsOrganizationURLConstant = "https://dev.example.com/acme"
	testSecretConstant                = "secret-token"
)

type recordingProvider struct {
	label         string
	recordedCalls []string
}

func (provider *recordingProvider) ListProjects(_ context.Context, organizationURL string, _ string) ([]string, error) {
	provider.recordedCalls = append(provider.recordedCalls, organizationURL)
	return []string{provider.label}, nil
}

func (provider *recordingProvider) ListRepositories(_ context.Context, organizationURL string, _ string, _ string) ([]string, error) {
	provider.recordedCalls = append(provider.recordedCalls, organizationURL)
	return []string{provider.label}, nil
}

func (provider *recordingProvider) RepositoryRemoteURL(string, string, string) string {
	return provider.label
}

func (provider *recordingProvider) AuthorizationHeader(string) string {
	return provider.label
}

func TestNewRegistryValidatesProviders(testInstance *testing.T) {
	_, missingError := remote.NewRegistry(nil, &recordingProvider{})
	require.ErrorIs(testInstance, missingError, remote.ErrProviderNotConfigured)

	_, missingOtherError := remote.NewRegistry(&recordingProvider{}, nil)
	require.ErrorIs(testInstance, missingOtherError, remote.ErrProviderNotConfigured)
}

func TestRegistryRoutesByHost(testInstance *testing.T) {
	testCases := []struct {
		name            string
		organizationURL string
		expectedLabel   string
	}{
		{name: "github_host", organizationURL: testGitHubOrganizationURLConstant, expectedLabel: "github"},
		{name: "github_enterprise_host", organizationURL: "https://github.enterprise.example.com/acme", expectedLabel: "github"},
		{name: "devops_host", organizationURL: testDevOpsOrganizationURLConstant, expectedLabel: "devops"},
		{name: "unparseable_url_defaults_to_devops", organizationURL: "://not-a-url", expectedLabel: "devops"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			gitHubProvider := &recordingProvider{label: "github"}
			devOpsProvider := &recordingProvider{label: "devops"}
			registry, registryError := remote.NewRegistry(gitHubProvider, devOpsProvider)
			require.NoError(testInstance, registryError)

			projectNames, listError := registry.ListProjects(context.Background(), testCase.organizationURL, testSecretConstant)
			require.NoError(testInstance, listError)
			require.Equal(testInstance, []string{testCase.expectedLabel}, projectNames)

			repositoryNames, repositoriesError := registry.ListRepositories(context.Background(), testCase.organizationURL, "project", testSecretConstant)
			require.NoError(testInstance, repositoriesError)
			require.Equal(testInstance, []string{testCase.expectedLabel}, repositoryNames)

			require.Equal(testInstance, testCase.expectedLabel, registry.RepositoryRemoteURL(testCase.organizationURL, "project", "repository"))
			require.Equal(testInstance, testCase.expectedLabel, registry.AuthorizationHeaderFor(testCase.organizationURL, testSecretConstant))
		})
	}
}
