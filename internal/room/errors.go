package room

import "errors"

var (
	// ErrRoomNotFound is returned when a room has never reported telemetry.
	ErrRoomNotFound = errors.New("room: not found")

	// ErrInvalidID is returned when a room id is not building/floor/number.
	ErrInvalidID = errors.New("room: invalid id")

	// ErrInvalidState is returned when a state does not belong to the actuator.
	ErrInvalidState = errors.New("room: invalid actuator state")

	// ErrInvalidHours is returned for opening hours outside 0..24.
	ErrInvalidHours = errors.New("room: invalid opening hours")
)
