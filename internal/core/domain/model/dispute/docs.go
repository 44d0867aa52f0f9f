// Package dispute contains the Dispute entity: the freeze overlay on an
// assignment. The pre-dispute assignment state is stored explicitly so a
// RESOLVE_FORWARD verdict resumes deterministically.
package dispute
