// Package services contains domain services that coordinate trip execution
// against the tracking system: OrderProcessor advances single orders through
// the split and move steps, ManifestBuilder registers transfer manifests per
// route stop. Both record remote failures on the affected orders and reserve
// returned errors for conditions that stop the whole trip.
package services
