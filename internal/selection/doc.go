// Package selection parses operator menu input such as "2,4-6" into
// zero-based option indexes.
//
// It exposes ParseSelection along with the typed FormatError and
// OutOfRangeError values consumed by prompting services that re-ask the
// operator after malformed input.
package selection
