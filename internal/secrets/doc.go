// Package secrets protects organization access secrets at rest by binding
// them to the current user and machine.
//
// It exposes Codec for encoding and decoding stored secret values, the
// Binding abstraction that supplies machine and user key material, and
// IsEncoded for detecting values already in the protected form.
package secrets
