// Package trip contains the Trip aggregate: a traveler's journey with spare
// carrying capacity. Available space is a stored counter maintained by
// Reserve and Release inside the same transaction as the assignment change.
package trip
