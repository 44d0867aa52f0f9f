// Package assignment contains the Assignment aggregate: the binding of one
// package to one trip and the state machine that governs it.
//
// The aggregate owns:
//   - the price negotiation (Negotiation is rebuilt from scratch on every
//     proposal, which is what resets confirmations)
//   - the acceptance flags of both parties
//   - the enum-keyed safety checklist
//   - the in-flight gateway operation and a queued cancel request
//   - the dispute freeze (the pre-dispute state is kept on the Dispute)
//
// Gateway calls never happen inside the aggregate. Transitions that need one
// are split into Begin*/Complete* pairs so the caller can commit the
// reservation, call the gateway without holding row locks and then finalize.
package assignment
