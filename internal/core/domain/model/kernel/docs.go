// Package kernel contains shared value objects used across the domain model:
// entity identifiers (UUID), inventory unit identifiers (UnitID) and split
// amounts (Quantity). All value objects are immutable and constructed through
// validating factory functions guarded by ConstructorGuard.
package kernel
