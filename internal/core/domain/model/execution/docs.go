// Package execution contains the TripExecution record: the durable,
// single-row-per-trip history of a trip's execution attempts. The record
// serves both as the queue entry claimed by the background worker and as the
// status document returned to polling clients.
package execution
