package remote

import (
	"context"
	"fmt"
)

const (
	listingFailureTemplateConstant = "remote listing request %s failed: %v"
	listingStatusTemplateConstant  = "remote listing request %s returned status %d"
)

// Lister discovers project and repository names for an organization. Listing
// failures are returned, never fatal: callers degrade to an empty result or
// skip the organization.
type Lister interface {
	ListProjects(executionContext context.Context, organizationURL string, secret string) ([]string, error)
	ListRepositories(executionContext context.Context, organizationURL string, projectName string, secret string) ([]string, error)
}

// Locator derives clone endpoints and credentials for discovered repositories.
type Locator interface {
	RepositoryRemoteURL(organizationURL string, projectName string, repositoryName string) string
	AuthorizationHeader(secret string) string
}

// Provider combines discovery and location for one hosting service.
type Provider interface {
	Lister
	Locator
}

// ListingError reports a remote listing request that failed or was rejected.
type ListingError struct {
	RequestURL string
	StatusCode int
	Cause      error
}

// Error describes the failed request.
func (listingError ListingError) Error() string {
	if listingError.Cause != nil {
		return fmt.Sprintf(listingFailureTemplateConstant, listingError.RequestURL, listingError.Cause)
	}
	return fmt.Sprintf(listingStatusTemplateConstant, listingError.RequestURL, listingError.StatusCode)
}

// Unwrap exposes the underlying failure when one exists.
func (listingError ListingError) Unwrap() error {
	return listingError.Cause
}
