// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for cloning, fast-forwarding, and inspecting
// working copies, with remote credentials supplied through per-invocation
// environment variables instead of remote URLs.
package gitrepo
