// Package syncer drives fleet-wide repository synchronization.
//
// It exposes Service, which loads the manifest, delegates first-run
// initialization and drift reconciliation, expands the tracked inventory into
// per-repository work items, and clones or fast-forwards every repository
// under a bounded worker pool. Individual repository failures are recorded
// and summarized without aborting the run.
package syncer
