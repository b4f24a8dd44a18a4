package actuator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/room"
)

// Source tags who asked for a state change.
const (
	SourceTelemetry = "telemetry"
	SourceSweep     = "sweep"
)

// Command asks for one actuator of one room to reach a state.
type Command struct {
	Room     room.ID
	Actuator room.Actuator
	State    room.State

	// Source is recorded on the resulting event. Defaults to SourceTelemetry.
	Source string
}

// StateChangeEvent describes one confirmed actuator change.
type StateChangeEvent struct {
	ID       string        `json:"id"`
	Room     room.ID       `json:"room"`
	Actuator room.Actuator `json:"actuator"`
	From     room.State    `json:"from"`
	To       room.State    `json:"to"`
	Source   string        `json:"source"`
	Severity aqi.Severity  `json:"severity"`
	At       time.Time     `json:"at"`
}

func newEvent(cmd Command, from room.State, severity aqi.Severity, at time.Time) StateChangeEvent {
	return StateChangeEvent{
		ID:       uuid.NewString(),
		Room:     cmd.Room,
		Actuator: cmd.Actuator,
		From:     from,
		To:       cmd.State,
		Source:   cmd.Source,
		Severity: severity,
		At:       at,
	}
}

// EventSink receives confirmed state changes.
type EventSink interface {
	HandleStateChange(ctx context.Context, ev StateChangeEvent) error
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ctx context.Context, ev StateChangeEvent) error

// HandleStateChange implements EventSink.
func (f SinkFunc) HandleStateChange(ctx context.Context, ev StateChangeEvent) error {
	return f(ctx, ev)
}

// Fanout delivers each event to every sink in order. A failing sink is
// logged and does not stop delivery to the rest.
type Fanout struct {
	sinks  []namedSink
	logger Logger
}

type namedSink struct {
	name string
	sink EventSink
}

// NewFanout creates an empty fan-out.
func NewFanout(logger Logger) *Fanout {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Fanout{logger: logger}
}

// Add registers a sink under a name used in logs. Nil sinks are ignored.
// Add is not safe to call once events are flowing.
func (f *Fanout) Add(name string, sink EventSink) *Fanout {
	if sink != nil {
		f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
	}
	return f
}

// Len returns the number of registered sinks.
func (f *Fanout) Len() int {
	return len(f.sinks)
}

// HandleStateChange implements EventSink. It always returns nil.
func (f *Fanout) HandleStateChange(ctx context.Context, ev StateChangeEvent) error {
	for _, s := range f.sinks {
		if err := s.sink.HandleStateChange(ctx, ev); err != nil {
			f.logger.Warn("state change sink failed",
				"sink", s.name,
				"room", ev.Room.String(),
				"actuator", string(ev.Actuator),
				"error", err,
			)
		}
	}
	return nil
}
