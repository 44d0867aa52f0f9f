// Package parcel contains the Package aggregate: what a sender wants carried,
// from where to where and for how much. Its status is driven by the
// assignment that binds it.
package parcel
