// Package occupancy closes windows left open after a room's opening hours.
//
// The Sweep runs on a fixed interval independent of telemetry. For every
// resolved room it takes the room's cycle lock, checks the local hour against
// the opening hours and asks the dispatcher to close windows that are Open.
// SlightlyOpen windows are closed too when configured. Ventilation is never
// touched.
//
// Cancelling the context stops the ticker; a pass already in progress runs to
// completion first.
package occupancy
