// Package services provides domain services that span several aggregates.
//
// The package includes:
//   - MatchMaker: checks package/trip compatibility, opens assignments and
//     moves capacity and package bindings along with assignment transitions
//   - Escrow: the settlement rules (authorize, capture, release, refund)
//     that turn assignment transitions into immutable ledger entries
//
// Services are pure: they mutate the aggregates handed to them and return new
// ledger entries, but never perform I/O.
package services
