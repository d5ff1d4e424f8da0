package devops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temirov/repofleet/internal/remote"
)

const (
	apiVersionConstant                    = "7.0"
	projectPageSizeConstant               = 200
	projectsEndpointTemplateConstant      = "%s/_apis/projects?api-version=%s&$top=%d"
	repositoriesEndpointTemplateConstant  = "%s/%s/_apis/git/repositories?api-version=%s"
	continuationTokenHeaderConstant       = "X-MS-ContinuationToken"
	continuationParameterTemplateConstant = "&continuationToken=%s"
	remoteURLTemplateConstant             = "%s/%s/_git/%s"
	authorizationSchemeConstant           = "Basic "
	basicCredentialTemplateConstant       = ":%s"
	defaultRequestTimeoutConstant         = 30 * time.Second
	organizationURLTrimCharactersConstant = "/"
)

// Provider lists projects and repositories through the organization's REST API
// using personal-access-token basic authentication.
type Provider struct {
	httpClient *http.Client
}

// NewProvider constructs a Provider, defaulting the HTTP client when none is supplied.
func NewProvider(httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeoutConstant}
	}
	return &Provider{httpClient: httpClient}
}

type listEnvelope struct {
	Count int                `json:"count"`
	Value []listEnvelopeItem `json:"value"`
}

type listEnvelopeItem struct {
	Name string `json:"name"`
}

// ListProjects returns every project name in the organization, following
// continuation tokens across pages.
func (provider *Provider) ListProjects(executionContext context.Context, organizationURL string, secret string) ([]string, error) {
	baseRequestURL := fmt.Sprintf(projectsEndpointTemplateConstant,
		normalizeOrganizationURL(organizationURL), apiVersionConstant, projectPageSizeConstant)

	projectNames := make([]string, 0, projectPageSizeConstant)
	continuationToken := ""
	for {
		requestURL := baseRequestURL
		if len(continuationToken) > 0 {
			requestURL += fmt.Sprintf(continuationParameterTemplateConstant, url.QueryEscape(continuationToken))
		}

		envelope, nextToken, requestError := provider.requestList(executionContext, requestURL, secret)
		if requestError != nil {
			return nil, requestError
		}
		for _, envelopeItem := range envelope.Value {
			projectNames = append(projectNames, envelopeItem.Name)
		}
		if len(nextToken) == 0 {
			return projectNames, nil
		}
		continuationToken = nextToken
	}
}

// ListRepositories returns the repository names within a project in response order.
func (provider *Provider) ListRepositories(executionContext context.Context, organizationURL string, projectName string, secret string) ([]string, error) {
	requestURL := fmt.Sprintf(repositoriesEndpointTemplateConstant,
		normalizeOrganizationURL(organizationURL), url.PathEscape(projectName), apiVersionConstant)

	envelope, _, requestError := provider.requestList(executionContext, requestURL, secret)
	if requestError != nil {
		return nil, requestError
	}

	repositoryNames := make([]string, 0, len(envelope.Value))
	for _, envelopeItem := range envelope.Value {
		repositoryNames = append(repositoryNames, envelopeItem.Name)
	}
	return repositoryNames, nil
}

// RepositoryRemoteURL builds the HTTPS clone endpoint for a repository.
func (provider *Provider) RepositoryRemoteURL(organizationURL string, projectName string, repositoryName string) string {
	return fmt.Sprintf(remoteURLTemplateConstant,
		normalizeOrganizationURL(organizationURL), url.PathEscape(projectName), url.PathEscape(repositoryName))
}

// AuthorizationHeader renders the Basic credential value git receives through
// its http.extraHeader configuration. An empty secret yields no header.
func (provider *Provider) AuthorizationHeader(secret string) string {
	if len(strings.TrimSpace(secret)) == 0 {
		return ""
	}
	credential := fmt.Sprintf(basicCredentialTemplateConstant, secret)
	return authorizationSchemeConstant + base64.StdEncoding.EncodeToString([]byte(credential))
}

func (provider *Provider) requestList(executionContext context.Context, requestURL string, secret string) (listEnvelope, string, error) {
	httpRequest, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, requestURL, nil)
	if requestError != nil {
		return listEnvelope{}, "", remote.ListingError{RequestURL: requestURL, Cause: requestError}
	}
	httpRequest.SetBasicAuth("", secret)

	httpResponse, responseError := provider.httpClient.Do(httpRequest)
	if responseError != nil {
		return listEnvelope{}, "", remote.ListingError{RequestURL: requestURL, Cause: responseError}
	}
	defer func() { _ = httpResponse.Body.Close() }()

	if httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, httpResponse.Body)
		return listEnvelope{}, "", remote.ListingError{RequestURL: requestURL, StatusCode: httpResponse.StatusCode}
	}

	var envelope listEnvelope
	if decodeError := json.NewDecoder(httpResponse.Body).Decode(&envelope); decodeError != nil {
		return listEnvelope{}, "", remote.ListingError{RequestURL: requestURL, Cause: decodeError}
	}
	return envelope, httpResponse.Header.Get(continuationTokenHeaderConstant), nil
}

func normalizeOrganizationURL(organizationURL string) string {
	return strings.TrimRight(strings.TrimSpace(organizationURL), organizationURLTrimCharactersConstant)
}
