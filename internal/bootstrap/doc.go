// Package bootstrap builds the initial fleet configuration through an
// interactive first-run flow.
//
// It exposes Service, which collects the repository root, organization
// endpoints, and access secrets from the operator, discovers the remote
// project and repository inventory, and persists the assembled document.
package bootstrap
