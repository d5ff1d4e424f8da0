// Package remote defines the discovery contracts for hosted organizations and
// routes operations to the provider matching each organization URL.
//
// It exposes Lister and Locator describing what synchronization needs from a
// hosting service, the Registry that dispatches on the organization URL's
// host, and the ListingError type shared by provider implementations.
package remote
