// Package trip contains the Trip aggregate and its supporting types: the
// Order entity with its per-order execution status machine, route segments,
// and the trip-level execution status.
//
// A trip is executed asynchronously. The aggregate enforces the lifecycle
// rules (what may transition where, when a trip counts as completed) while
// the actual remote calls live in the domain services and adapters.
package trip
