// Package telemetry turns raw pollutant messages from the bus into typed readings.
//
// Parsing is a tagged result: either a Reading or an error wrapping
// ErrMalformed. Malformed messages are dropped by the caller without
// touching room state.
package telemetry

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/aircontrol-core/internal/room"
	"github.com/nerrad567/aircontrol-core/internal/senml"
)

// ErrMalformed marks telemetry that cannot be applied.
var ErrMalformed = errors.New("telemetry: malformed message")

// Reading is one validated pollutant message for one room.
type Reading struct {
	Room       room.ID
	Values     map[aqi.Pollutant]float64
	ObservedAt time.Time

	// Ignored lists entry names that are not tracked pollutants.
	Ignored []string
}

// Parser validates pollutant messages published under one topic root.
type Parser struct {
	topics mqtt.Topics
	now    func() time.Time
}

// NewParser creates a parser for topics below root.
func NewParser(root string) *Parser {
	return &Parser{topics: mqtt.Topics{Root: root}, now: time.Now}
}

// Parse validates topic and payload.
//
// The room comes from the topic ({root}/{building}/{floor}/{number}/pollutants),
// not from the record's base name. Entries for untracked pollutants are
// skipped; a negative or non-numeric value for a tracked pollutant makes the
// whole message malformed, as does a message with no tracked pollutant.
// A missing base time is replaced by the receive time.
func (p *Parser) Parse(topic string, payload []byte) (Reading, error) {
	building, floor, number, leaf, ok := p.topics.SplitRoom(topic)
	if !ok || leaf != mqtt.LeafPollutants {
		return Reading{}, fmt.Errorf("%w: unexpected topic %q", ErrMalformed, topic)
	}
	id, err := room.NewID(building, floor, number)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	msg, err := senml.Decode(payload)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	r := Reading{
		Room:       id,
		Values:     make(map[aqi.Pollutant]float64, len(msg.Entries)),
		ObservedAt: msg.Time(),
	}
	if r.ObservedAt.IsZero() {
		r.ObservedAt = p.now()
	}

	for _, e := range msg.Entries {
		pollutant, err := aqi.ParsePollutant(e.Name)
		if err != nil {
			r.Ignored = append(r.Ignored, e.Name)
			continue
		}
		v, ok := e.Float()
		if !ok {
			return Reading{}, fmt.Errorf("%w: %s value %v is not a number", ErrMalformed, e.Name, e.Value)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Reading{}, fmt.Errorf("%w: %s value %v is out of range", ErrMalformed, e.Name, v)
		}
		r.Values[pollutant] = v
	}

	if len(r.Values) == 0 {
		return Reading{}, fmt.Errorf("%w: no tracked pollutant in message", ErrMalformed)
	}
	return r, nil
}
