package room

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/aqi"
)

// ID identifies a room by its position in the building hierarchy.
type ID struct {
	Building string `json:"building"`
	Floor    string `json:"floor"`
	Number   string `json:"number"`
}

// NewID validates and builds an ID.
func NewID(building, floor, number string) (ID, error) {
	id := ID{Building: building, Floor: floor, Number: number}
	if err := id.Validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

// ParseID parses the "building/floor/number" form produced by String.
func ParseID(s string) (ID, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return NewID(parts[0], parts[1], parts[2])
}

// Validate rejects empty levels and levels containing topic separators or wildcards.
func (id ID) Validate() error {
	for _, level := range []string{id.Building, id.Floor, id.Number} {
		if level == "" || strings.ContainsAny(level, "/+#") {
			return fmt.Errorf("%w: %q", ErrInvalidID, id.String())
		}
	}
	return nil
}

func (id ID) String() string {
	return id.Building + "/" + id.Floor + "/" + id.Number
}

// Actuator names one of the two controllable devices of a room.
type Actuator string

// Actuators.
const (
	Windows     Actuator = "windows"
	Ventilation Actuator = "ventilation"
)

// Actuators lists both actuators in the order a decision applies them.
var Actuators = []Actuator{Windows, Ventilation}

// State is a target or confirmed actuator state.
type State string

// Window states.
const (
	Closed       State = "Closed"
	SlightlyOpen State = "SlightlyOpen"
	Open         State = "Open"
)

// Ventilation states.
const (
	Off   State = "Off"
	On    State = "On"
	Boost State = "Boost"
)

var validStates = map[Actuator][]State{
	Windows:     {Closed, SlightlyOpen, Open},
	Ventilation: {Off, On, Boost},
}

// Valid reports whether a is a known actuator.
func (a Actuator) Valid() bool {
	_, ok := validStates[a]
	return ok
}

// Accepts reports whether s is one of a's states.
func (a Actuator) Accepts(s State) bool {
	for _, v := range validStates[a] {
		if v == s {
			return true
		}
	}
	return false
}

// Initial is the state a new room starts in.
func (a Actuator) Initial() State {
	if a == Ventilation {
		return Off
	}
	return Closed
}

// ParseState parses s as a state of a.
func ParseState(a Actuator, s string) (State, error) {
	st := State(s)
	if !a.Accepts(st) {
		return "", fmt.Errorf("%w: %q for %s", ErrInvalidState, s, a)
	}
	return st, nil
}

// IsOpening reports whether s lets outside air in through the windows.
func (s State) IsOpening() bool {
	return s == Open || s == SlightlyOpen
}

// OpeningHours is the local-time window [Start, End) in which the room is occupied.
// Start > End wraps past midnight. Start == End means the room never opens.
type OpeningHours struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate checks both bounds are whole hours in 0..24.
func (h OpeningHours) Validate() error {
	if h.Start < 0 || h.Start > 24 || h.End < 0 || h.End > 24 {
		return fmt.Errorf("%w: %d-%d", ErrInvalidHours, h.Start, h.End)
	}
	return nil
}

// Contains reports whether the local hour falls inside the opening window.
func (h OpeningHours) Contains(hour int) bool {
	switch {
	case h.Start == h.End:
		return false
	case h.Start < h.End:
		return hour >= h.Start && hour < h.End
	default:
		return hour >= h.Start || hour < h.End
	}
}

// Room is a snapshot of one room's state. Snapshots are copies; mutating one
// does not affect the Store.
type Room struct {
	ID          ID                        `json:"id"`
	Latest      map[aqi.Pollutant]float64 `json:"latest"`
	ReadingAt   time.Time                 `json:"reading_at"`
	Window      State                     `json:"window"`
	Ventilation State                     `json:"ventilation"`
	Hours       OpeningHours              `json:"opening_hours"`
	Endpoint    string                    `json:"actuator_endpoint,omitempty"`

	// Resolved is true once registry metadata has been loaded for the room.
	Resolved bool `json:"resolved"`
}

func newRoom(id ID) *Room {
	latest := make(map[aqi.Pollutant]float64, len(aqi.Pollutants))
	for _, p := range aqi.Pollutants {
		latest[p] = 0
	}
	return &Room{
		ID:          id,
		Latest:      latest,
		Window:      Windows.Initial(),
		Ventilation: Ventilation.Initial(),
	}
}

// Severity is the overall air quality band of the latest readings.
func (r Room) Severity() aqi.Severity {
	return aqi.Overall(r.Latest)
}

// State returns the confirmed state of a.
func (r Room) State(a Actuator) State {
	if a == Ventilation {
		return r.Ventilation
	}
	return r.Window
}

func (r Room) clone() Room {
	c := r
	c.Latest = maps.Clone(r.Latest)
	return c
}
