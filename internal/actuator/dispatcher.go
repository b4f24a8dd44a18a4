package actuator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/room"
)

// Logger defines the logging interface used by the dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// sinkTimeout bounds the delivery of one event to all sinks.
const sinkTimeout = 5 * time.Second

// Options configures a Dispatcher. Zero values select the defaults.
type Options struct {
	// Location is the time zone opening hours are expressed in. Default UTC.
	Location *time.Location

	// Timeout bounds one actuator request. Default DefaultTimeout.
	Timeout time.Duration

	// Sink receives confirmed changes. Default none.
	Sink EventSink

	// Logger defaults to a no-op logger.
	Logger Logger

	// Now returns the current time. Default time.Now.
	Now func() time.Time
}

// Dispatcher applies actuator commands to rooms.
//
// Thread Safety: Apply may be called concurrently for different rooms.
// Commands for the same room must be serialised by the caller through the
// room's cycle lock.
type Dispatcher struct {
	store     *room.Store
	transport Transport
	sink      EventSink
	loc       *time.Location
	timeout   time.Duration
	now       func() time.Time
	logger    Logger
}

// NewDispatcher creates a dispatcher that reconciles store with transport.
//
// Parameters:
//   - store: Room State Store updated on confirmed changes
//   - transport: Delivery of commands to actuator endpoints
//   - opts: Time zone, timeout, event sink, logger and clock
func NewDispatcher(store *room.Store, transport Transport, opts Options) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		transport: transport,
		sink:      opts.Sink,
		loc:       opts.Location,
		timeout:   opts.Timeout,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if d.loc == nil {
		d.loc = time.UTC
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = noopLogger{}
	}
	return d
}

// Apply brings one actuator of a room to the commanded state.
//
// Returns:
//   - nil when the actuator confirmed the change and the store was updated
//   - ErrInvalidState for a state the actuator does not have
//   - room.ErrRoomNotFound for a room the store does not know
//   - ErrRoomClosed when windows would open outside opening hours, even if already open
//   - ErrAlreadyInState when the room already has the state
//   - ErrNoEndpoint when the room has no actuator endpoint
//   - ErrRemoteRejected or ErrUnreachable from the transport
//
// The store is untouched unless nil is returned.
func (d *Dispatcher) Apply(ctx context.Context, cmd Command) error {
	if !cmd.Actuator.Accepts(cmd.State) {
		return fmt.Errorf("%w: %q for %q", ErrInvalidState, cmd.State, cmd.Actuator)
	}
	if cmd.Source == "" {
		cmd.Source = SourceTelemetry
	}

	r, err := d.store.Get(cmd.Room)
	if err != nil {
		return err
	}

	// The occupancy guard wins over the same-state check: opening a window
	// outside hours is always RoomClosed, even if it is already open.
	now := d.now()
	if cmd.Actuator == room.Windows && cmd.State.IsOpening() {
		hour := now.In(d.loc).Hour()
		if !r.Hours.Contains(hour) {
			return fmt.Errorf("%w: %s at %02d:00 outside %02d-%02d",
				ErrRoomClosed, cmd.Room, hour, r.Hours.Start, r.Hours.End)
		}
	}

	current := r.State(cmd.Actuator)
	if current == cmd.State {
		return fmt.Errorf("%w: %s %s is %s", ErrAlreadyInState, cmd.Room, cmd.Actuator, current)
	}

	if r.Endpoint == "" {
		return fmt.Errorf("%w: %s", ErrNoEndpoint, cmd.Room)
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	err = d.transport.Send(sendCtx, r.Endpoint, cmd.Actuator, cmd.State)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrUnreachable) {
			err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		return err
	}

	if err := d.store.SetActuatorState(cmd.Room, cmd.Actuator, cmd.State); err != nil {
		return fmt.Errorf("recording confirmed state: %w", err)
	}

	d.logger.Info("actuator state changed",
		"room", cmd.Room.String(),
		"actuator", string(cmd.Actuator),
		"from", string(current),
		"to", string(cmd.State),
		"source", cmd.Source,
	)

	d.publish(ctx, newEvent(cmd, current, r.Severity(), now))
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, ev StateChangeEvent) {
	if d.sink == nil {
		return
	}
	// Delivery outlives a caller that is shutting down.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	if err := d.sink.HandleStateChange(ctx, ev); err != nil {
		d.logger.Warn("state change delivery failed", "event_id", ev.ID, "error", err)
	}
}
