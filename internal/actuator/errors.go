package actuator

import "errors"

var (
	// ErrAlreadyInState is returned when the room already has the target state.
	ErrAlreadyInState = errors.New("actuator: already in state")

	// ErrRoomClosed is returned when windows would open outside opening hours.
	ErrRoomClosed = errors.New("actuator: room closed")

	// ErrRemoteRejected is returned when the actuator refused the command.
	ErrRemoteRejected = errors.New("actuator: rejected by remote")

	// ErrUnreachable is returned when the actuator could not be reached or
	// did not answer in time.
	ErrUnreachable = errors.New("actuator: unreachable")

	// ErrNoEndpoint is returned when the room has no actuator endpoint yet.
	ErrNoEndpoint = errors.New("actuator: no endpoint")

	// ErrInvalidState is returned for a state the actuator does not have.
	ErrInvalidState = errors.New("actuator: invalid state")
)

// IsRejection reports whether err is an expected refusal rather than a fault.
// Rejections are logged at info level; everything else is a warning.
func IsRejection(err error) bool {
	return errors.Is(err, ErrAlreadyInState) ||
		errors.Is(err, ErrRoomClosed) ||
		errors.Is(err, ErrRemoteRejected)
}
