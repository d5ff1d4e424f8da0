package githubapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/temirov/repofleet/internal/remote"
)

const (
	repositoryPageSizeConstant              = 100
	remoteURLTemplateConstant               = "https://github.com/%s/%s.git"
	authorizationSchemeConstant             = "Basic "
	tokenCredentialTemplateConstant         = "x-access-token:%s"
	endpointPathSuffixConstant              = "/"
	organizationPathFailureTemplateConstant = "organization login missing from URL %q"
)

// Provider lists a GitHub organization's repositories with go-github, using
// the stored secret as an OAuth2 access token.
type Provider struct {
	apiEndpoint string
}

// NewProvider constructs a Provider against the public GitHub API.
func NewProvider() *Provider {
	return &Provider{}
}

// NewProviderWithEndpoint constructs a Provider against a custom API endpoint.
func NewProviderWithEndpoint(apiEndpoint string) *Provider {
	return &Provider{apiEndpoint: apiEndpoint}
}

// ListProjects validates the organization and returns its login as the single
// synthetic project name.
func (provider *Provider) ListProjects(executionContext context.Context, organizationURL string, secret string) ([]string, error) {
	organizationLogin, loginError := resolveOrganizationLogin(organizationURL)
	if loginError != nil {
		return nil, loginError
	}

	gitHubClient, clientError := provider.newClient(executionContext, secret)
	if clientError != nil {
		return nil, remote.ListingError{RequestURL: organizationURL, Cause: clientError}
	}

	_, _, lookupError := gitHubClient.Organizations.Get(executionContext, organizationLogin)
	if lookupError != nil {
		return nil, remote.ListingError{RequestURL: organizationURL, Cause: lookupError}
	}

	return []string{organizationLogin}, nil
}

// ListRepositories pages through every repository in the organization and
// returns the names in listing order.
func (provider *Provider) ListRepositories(executionContext context.Context, organizationURL string, _ string, secret string) ([]string, error) {
	organizationLogin, loginError := resolveOrganizationLogin(organizationURL)
	if loginError != nil {
		return nil, loginError
	}

	gitHubClient, clientError := provider.newClient(executionContext, secret)
	if clientError != nil {
		return nil, remote.ListingError{RequestURL: organizationURL, Cause: clientError}
	}

	listOptions := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: repositoryPageSizeConstant},
	}

	repositoryNames := make([]string, 0, repositoryPageSizeConstant)
	for {
		repositories, listResponse, listError := gitHubClient.Repositories.ListByOrg(executionContext, organizationLogin, listOptions)
		if listError != nil {
			return nil, remote.ListingError{RequestURL: organizationURL, Cause: listError}
		}
		for _, repository := range repositories {
			repositoryNames = append(repositoryNames, repository.GetName())
		}
		if listResponse == nil || listResponse.NextPage == 0 {
			return repositoryNames, nil
		}
		listOptions.Page = listResponse.NextPage
	}
}

// RepositoryRemoteURL builds the HTTPS clone endpoint for a repository.
func (provider *Provider) RepositoryRemoteURL(organizationURL string, projectName string, repositoryName string) string {
	organizationLogin, loginError := resolveOrganizationLogin(organizationURL)
	if loginError != nil {
		organizationLogin = projectName
	}
	return fmt.Sprintf(remoteURLTemplateConstant, organizationLogin, repositoryName)
}

// AuthorizationHeader renders the Basic credential value git receives through
// its http.extraHeader configuration. An empty secret yields no header.
func (provider *Provider) AuthorizationHeader(secret string) string {
	if len(strings.TrimSpace(secret)) == 0 {
		return ""
	}
	credential := fmt.Sprintf(tokenCredentialTemplateConstant, secret)
	return authorizationSchemeConstant + base64.StdEncoding.EncodeToString([]byte(credential))
}

func (provider *Provider) newClient(executionContext context.Context, secret string) (*github.Client, error) {
	var httpClient *http.Client
	if len(strings.TrimSpace(secret)) > 0 {
		tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: secret})
		httpClient = oauth2.NewClient(executionContext, tokenSource)
	}

	gitHubClient := github.NewClient(httpClient)
	if len(provider.apiEndpoint) > 0 {
		endpointURL, parseError := url.Parse(strings.TrimRight(provider.apiEndpoint, endpointPathSuffixConstant) + endpointPathSuffixConstant)
		if parseError != nil {
			return nil, parseError
		}
		gitHubClient.BaseURL = endpointURL
	}
	return gitHubClient, nil
}

func resolveOrganizationLogin(organizationURL string) (string, error) {
	parsedURL, parseError := url.Parse(strings.TrimSpace(organizationURL))
	if parseError != nil {
		return "", remote.ListingError{RequestURL: organizationURL, Cause: parseError}
	}

	pathSegments := strings.Split(strings.Trim(parsedURL.Path, endpointPathSuffixConstant), endpointPathSuffixConstant)
	organizationLogin := pathSegments[len(pathSegments)-1]
	if len(organizationLogin) == 0 {
		return "", remote.ListingError{
			RequestURL: organizationURL,
			Cause:      fmt.Errorf(organizationPathFailureTemplateConstant, organizationURL),
		}
	}
	return organizationLogin, nil
}
