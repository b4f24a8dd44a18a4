// Package history keeps an audit trail of confirmed actuator changes in SQLite.
//
// Rows are written by the Repository acting as an actuator.EventSink and read
// back newest first by the status API. Old rows are pruned on a schedule
// according to history.retention_days.
package history
