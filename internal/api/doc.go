// Package api implements the HTTP status API and WebSocket feed of the
// air-quality controller.
//
// This package provides:
//   - Read-only REST endpoints for rooms, their latest readings and actuator history
//   - A health endpoint aggregating the controller's infrastructure checks
//   - A runtime metrics endpoint
//   - A WebSocket hub broadcasting state changes and advisories
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The API never actuates anything. It reads the Room State Store and the
// history repository; live events reach it through the Hub, which the
// dispatcher and the advisory emitter publish to.
//
// # Graceful Degradation
//
// The server runs without history or MQTT: the history endpoint answers 503
// and health reports the failing component.
package api
