// Package actuator sends target states to room actuators and keeps the Room
// State Store in line with what the actuators confirmed.
//
// A Dispatcher applies one Command at a time. Before anything goes over the
// wire it refuses commands that would change nothing (ErrAlreadyInState) and
// window openings outside the room's opening hours (ErrRoomClosed). The store
// is only updated after the remote actuator accepted the command; rejected
// and failed commands leave the room untouched and are never retried here.
//
// Every accepted change becomes a StateChangeEvent delivered to the configured
// EventSinks (MQTT, InfluxDB, history, WebSocket). Sink failures are logged
// and never change the outcome of Apply.
//
// Callers hold the room's cycle lock (room.Store.Lock) around Apply.
package actuator
