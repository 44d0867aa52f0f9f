// Package kernel provides the shared value objects of the marketplace domain.
//
// The package includes:
//   - UUID: identifier for every aggregate and user
//   - Money: fixed-point amount in minor units with an ISO 4217 currency
//   - Weight, Dimensions, PackageType: the physical/capacity model shared by
//     packages and trips
//   - Address, DateWindow: where and when a package moves
//
// Value objects are immutable and are created through constructors that
// validate their input; zero values fail Validate.
package kernel
