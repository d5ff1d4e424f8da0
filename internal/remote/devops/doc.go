// Package devops lists projects and repositories from an Azure DevOps style
// REST API and derives clone endpoints for them.
package devops
