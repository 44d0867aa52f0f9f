// Package safety implements the handover checklist that gates pickup and
// delivery. Each event has a fixed set of items; the checklist is an
// enum-indexed value with no open string keys.
package safety
