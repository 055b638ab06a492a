// Package decision models user confirmations as an injected capability.
// Operations that would otherwise block on a dialog (overwrite an existing
// skill, replace an exported directory) take a Provider instead, which keeps
// the core testable without an interactive front end.
package decision

import "github.com/pkg/errors"

// ErrCancelled reports a deliberate user decline. Callers must treat it as a
// quiet no-op rather than a failure.
var ErrCancelled = errors.New("cancelled by user")

// Decision is the tagged outcome of a confirmation request.
type Decision int

const (
	// Proceed approves the operation as requested.
	Proceed Decision = iota
	// Cancel declines the operation.
	Cancel
	// Overwrite approves replacing the existing item.
	Overwrite
	// KeepBoth approves the operation under a new, non-colliding identifier.
	KeepBoth
	// Skip passes over the current item and continues with the rest.
	Skip
)

// Provider resolves a confirmation request into a Decision.
type Provider func(message string) Decision

// AlwaysProceed approves every request. It is the provider for callers that
// have already established user intent.
func AlwaysProceed(string) Decision { return Proceed }

// AlwaysCancel declines every request.
func AlwaysCancel(string) Decision { return Cancel }

// Approved reports whether d allows the operation to continue in place.
func (d Decision) Approved() bool {
	return d == Proceed || d == Overwrite
}
