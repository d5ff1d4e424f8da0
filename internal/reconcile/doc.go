// Package reconcile keeps stored project selections aligned with live remote
// listings.
//
// It exposes Service, which compares each organization's tracked projects
// against the provider's current project list, surfaces drift to the operator
// through timed prompts, and rebuilds the selection while preserving the
// stored state of every project the operator keeps.
package reconcile
