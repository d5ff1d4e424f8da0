// Package manifest defines the persisted synchronization document and the
// store that reads and writes it.
//
// It exposes Configuration, Organization, and Project describing the local
// root location and every organization kept in sync, plus Store for
// best-effort loading, legacy-shape migration, and atomic saving with secrets
// in their protected at-rest form.
package manifest
