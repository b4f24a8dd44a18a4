package actuator

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/aircontrol-core/internal/senml"
)

// Publisher is the subset of the MQTT client the state sink needs.
// PublishRetained uses the client's configured QoS.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// MQTTSink publishes the confirmed state as a retained SenML record on
// {root}/{building}/{floor}/{number}/{actuator}.
type MQTTSink struct {
	publisher Publisher
	topics    mqtt.Topics
}

// NewMQTTSink creates a sink publishing under topics.
func NewMQTTSink(publisher Publisher, topics mqtt.Topics) *MQTTSink {
	return &MQTTSink{publisher: publisher, topics: topics}
}

// HandleStateChange implements EventSink.
func (s *MQTTSink) HandleStateChange(_ context.Context, ev StateChangeEvent) error {
	id := ev.Room
	topic := s.topics.ActuatorState(id.Building, id.Floor, id.Number, string(ev.Actuator))

	msg := senml.New(id.String(), ev.At,
		senml.Entry{Name: string(ev.Actuator), Value: string(ev.To)},
		senml.Entry{Name: "source", Value: ev.Source},
	)
	payload, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encoding state record: %w", err)
	}
	return s.publisher.PublishRetained(topic, payload)
}

// StateWriter is the subset of the InfluxDB client the time-series sink needs.
type StateWriter interface {
	WriteActuatorState(room influxdb.RoomTags, actuator, state, source string, at time.Time)
}

// InfluxSink records every change as an actuator_state point.
type InfluxSink struct {
	writer StateWriter
}

// NewInfluxSink creates a time-series sink.
func NewInfluxSink(writer StateWriter) *InfluxSink {
	return &InfluxSink{writer: writer}
}

// HandleStateChange implements EventSink. Writes are asynchronous; errors
// surface through the InfluxDB client's error callback.
func (s *InfluxSink) HandleStateChange(_ context.Context, ev StateChangeEvent) error {
	tags := influxdb.RoomTags{Building: ev.Room.Building, Floor: ev.Room.Floor, Number: ev.Room.Number}
	s.writer.WriteActuatorState(tags, string(ev.Actuator), string(ev.To), ev.Source, ev.At)
	return nil
}

// Broadcaster is the subset of the WebSocket hub the live sink needs.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// ChannelStateChanges is the WebSocket channel carrying StateChangeEvents.
const ChannelStateChanges = "state.changed"

// HubSink forwards events to WebSocket subscribers.
type HubSink struct {
	hub Broadcaster
}

// NewHubSink creates a live sink.
func NewHubSink(hub Broadcaster) *HubSink {
	return &HubSink{hub: hub}
}

// HandleStateChange implements EventSink.
func (s *HubSink) HandleStateChange(_ context.Context, ev StateChangeEvent) error {
	s.hub.Broadcast(ChannelStateChanges, ev)
	return nil
}
