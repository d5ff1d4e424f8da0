// Package githubapi lists GitHub organizations through the REST API.
//
// GitHub has no project tier between organization and repository, so the
// organization login doubles as the single synthetic project name.
package githubapi
