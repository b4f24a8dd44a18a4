package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the controller.
const (
	MeasurementAirQuality    = "air_quality"
	MeasurementActuatorState = "actuator_state"
)

// RoomTags identifies a room in every point. Tags stay low-cardinality.
type RoomTags struct {
	Building string
	Floor    string
	Number   string
}

func (r RoomTags) tags() map[string]string {
	return map[string]string{
		"building": r.Building,
		"floor":    r.Floor,
		"room":     r.Number,
	}
}

// WriteAirQuality records the latest pollutant concentrations of a room and
// the severity derived from them.
//
// Parameters:
//   - room: Room identity tags
//   - values: Pollutant name to concentration (e.g., "PM2.5": 12.3)
//   - severity: Overall severity 1..5
//   - at: Observation time of the reading
//
// The write is non-blocking; failures surface through SetOnError.
func (c *Client) WriteAirQuality(room RoomTags, values map[string]float64, severity int, at time.Time) {
	if !c.IsConnected() {
		return
	}

	fields := make(map[string]interface{}, len(values)+1)
	for name, v := range values {
		fields[name] = v
	}
	fields["severity"] = severity

	c.WritePointWithTime(MeasurementAirQuality, room.tags(), fields, at)
}

// WriteActuatorState records a confirmed actuator state change.
//
// Parameters:
//   - room: Room identity tags
//   - actuator: "windows" or "ventilation"
//   - state: The state the actuator confirmed
//   - source: What triggered the change (telemetry, sweep)
//   - at: Time the change was confirmed
func (c *Client) WriteActuatorState(room RoomTags, actuator, state, source string, at time.Time) {
	if !c.IsConnected() {
		return
	}

	tags := room.tags()
	tags["actuator"] = actuator

	c.WritePointWithTime(MeasurementActuatorState, tags, map[string]interface{}{
		"state":  state,
		"source": source,
	}, at)
}

// WritePointWithTime writes a point with an explicit timestamp. Both room
// writers funnel through it.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
