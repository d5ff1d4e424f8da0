// Package status renders an offline overview of the fleet manifest. It reads
// the stored document only and never contacts a remote or touches git.
package status
