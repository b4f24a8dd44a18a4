// Package advisory turns a room's overall severity into a colour advisory for
// occupants and publishes it on the room's advisory topic.
//
// Advisories are informational. The publisher never changes room state and
// drops messages it fails to deliver.
package advisory

import (
	"fmt"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/aircontrol-core/internal/room"
	"github.com/nerrad567/aircontrol-core/internal/senml"
)

// Color is one palette entry.
type Color struct {
	Name string `json:"name"`
	R    uint8  `json:"r"`
	G    uint8  `json:"g"`
	B    uint8  `json:"b"`
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

var palette = [...]Color{
	{Name: "green", R: 0, G: 255, B: 0},
	{Name: "yellow", R: 255, G: 255, B: 0},
	{Name: "orange", R: 255, G: 165, B: 0},
	{Name: "red", R: 255, G: 0, B: 0},
	{Name: "dark purple", R: 75, G: 0, B: 130},
}

// ColorFor returns the palette entry of a severity. Out-of-range severities
// are clamped to the nearest band.
func ColorFor(s aqi.Severity) Color {
	switch {
	case s < aqi.MinSeverity:
		s = aqi.MinSeverity
	case s > aqi.MaxSeverity:
		s = aqi.MaxSeverity
	}
	return palette[s-aqi.MinSeverity]
}

// Advisory is what occupants of one room are told.
type Advisory struct {
	Room     room.ID      `json:"room"`
	Severity aqi.Severity `json:"severity"`
	Color    Color        `json:"color"`
	At       time.Time    `json:"at"`
}

// New builds the advisory for a room at a severity.
func New(id room.ID, s aqi.Severity, at time.Time) Advisory {
	return Advisory{Room: id, Severity: s, Color: ColorFor(s), At: at}
}

// Record encodes the advisory as a SenML record with status, index and rgb entries.
func (a Advisory) Record() senml.Message {
	return senml.New(a.Room.String(), a.At,
		senml.Entry{Name: "status", Value: a.Color.Name},
		senml.Entry{Name: "index", Value: int(a.Severity)},
		senml.Entry{Name: "rgb", Value: a.Color.Hex()},
	)
}

// Publisher is the subset of the MQTT client the advisory publisher needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Broadcaster is the subset of the WebSocket hub advisories are mirrored to.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// ChannelAdvisories is the WebSocket channel carrying advisories.
const ChannelAdvisories = "advisory"

// Logger defines the logging interface used by the publisher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Emitter publishes advisories. A nil *Emitter discards everything.
type Emitter struct {
	publisher Publisher
	hub       Broadcaster
	topics    mqtt.Topics
	qos       byte
	logger    Logger
	now       func() time.Time
}

// NewEmitter creates an emitter. publisher and hub may each be nil.
func NewEmitter(publisher Publisher, hub Broadcaster, topics mqtt.Topics, qos byte, logger Logger) *Emitter {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Emitter{
		publisher: publisher,
		hub:       hub,
		topics:    topics,
		qos:       qos,
		logger:    logger,
		now:       time.Now,
	}
}

// Emit publishes the advisory for a room. Failures are logged and dropped.
func (e *Emitter) Emit(id room.ID, s aqi.Severity) {
	if e == nil {
		return
	}
	adv := New(id, s, e.now())

	if e.hub != nil {
		e.hub.Broadcast(ChannelAdvisories, adv)
	}
	if e.publisher == nil {
		return
	}

	payload, err := adv.Record().Encode()
	if err != nil {
		e.logger.Warn("advisory encode failed", "room", id.String(), "error", err)
		return
	}
	topic := e.topics.Advisory(id.Building, id.Floor, id.Number)
	if err := e.publisher.Publish(topic, payload, e.qos, false); err != nil {
		e.logger.Warn("advisory publish failed", "room", id.String(), "topic", topic, "error", err)
		return
	}
	e.logger.Debug("advisory published", "room", id.String(), "severity", int(s), "color", adv.Color.Name)
}
