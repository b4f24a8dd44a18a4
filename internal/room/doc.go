// Package room holds the controller's in-memory view of every room: the
// latest pollutant readings, the confirmed window and ventilation states,
// and the registry metadata (opening hours, actuator endpoint).
//
// Rooms are created lazily on first telemetry with all pollutants at zero,
// windows Closed and ventilation Off, and live for the life of the process.
//
// # Concurrency
//
// The Store is the only shared mutable state in the controller. Each room
// has two locks:
//
//   - a cycle lock, taken through Store.Lock, that serialises whole
//     read-decide-actuate cycles for one room (telemetry workers and the
//     occupancy sweep both hold it while they work on a room);
//   - a data lock guarding the record itself, so API readers never wait
//     behind a slow actuator call.
//
// Different rooms never contend with each other.
package room
