// Package ledger contains the escrow Transaction entity and the per
// assignment Entries view used to evaluate settlement preconditions.
//
// A transaction is never mutated after COMPLETED. Corrections are new REFUND
// or PAYOUT entries.
package ledger
