// Package ingest runs the per-message control cycle for pollutant telemetry.
//
// Messages are parsed as they arrive and handed to a fixed pool of workers.
// Each room always maps to the same worker, so messages of one room are
// processed in arrival order while different rooms proceed in parallel.
// Queues are bounded; Submit blocks when a worker falls behind.
//
// For every valid message a worker holds the room's cycle lock and:
//
//  1. stores the readings and computes the overall severity
//  2. emits the advisory and writes the readings to the time-series store
//  3. resolves the room's actuator endpoint and opening hours if unknown
//  4. fetches the weather, falling back to zeros
//  5. decides the target states and applies windows, then ventilation
package ingest
