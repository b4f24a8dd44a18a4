package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicRoot is used when no root is configured.
const DefaultTopicRoot = "aircontrol"

// Topic leaf names below a room.
const (
	LeafPollutants = "pollutants"
	LeafAdvisory   = "advisory"
)

// Topics provides builders for the air control MQTT topic hierarchy.
//
// Room topics have the form {root}/{building}/{floor}/{number}/{leaf}:
//
//	topics := mqtt.Topics{Root: "aircontrol"}
//	topics.Pollutants("b1", "2", "201")
//	// Returns: "aircontrol/b1/2/201/pollutants"
type Topics struct {
	Root string
}

func (t Topics) root() string {
	if t.Root == "" {
		return DefaultTopicRoot
	}
	return t.Root
}

func (t Topics) room(building, floor, number, leaf string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", t.root(), building, floor, number, leaf)
}

// Pollutants returns the telemetry topic of one room's air sensors.
//
// Example: aircontrol/b1/2/201/pollutants
func (t Topics) Pollutants(building, floor, number string) string {
	return t.room(building, floor, number, LeafPollutants)
}

// Advisory returns the topic a room display listens on for the air quality indicator.
//
// Example: aircontrol/b1/2/201/advisory
func (t Topics) Advisory(building, floor, number string) string {
	return t.room(building, floor, number, LeafAdvisory)
}

// ActuatorState returns the retained state topic of one room actuator.
//
// Example: aircontrol/b1/2/201/windows
func (t Topics) ActuatorState(building, floor, number, actuator string) string {
	return t.room(building, floor, number, actuator)
}

// SystemStatus returns the service status topic carrying online/offline and LWT messages.
//
// Example: aircontrol/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.root())
}

// AllPollutants returns a pattern matching every room's telemetry topic.
//
// Pattern: aircontrol/+/+/+/pollutants
func (t Topics) AllPollutants() string {
	return t.room("+", "+", "+", LeafPollutants)
}

// SplitRoom splits a room topic into its building, floor, number and leaf levels.
// It returns ok=false when the topic is not below this root or has the wrong depth.
func (t Topics) SplitRoom(topic string) (building, floor, number, leaf string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 5 || parts[0] != t.root() {
		return "", "", "", "", false
	}
	for _, p := range parts[1:] {
		if p == "" {
			return "", "", "", "", false
		}
	}
	return parts[1], parts[2], parts[3], parts[4], true
}
