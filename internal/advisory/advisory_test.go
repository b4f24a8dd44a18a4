package advisory

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/aircontrol-core/internal/room"
	"github.com/nerrad567/aircontrol-core/internal/senml"
)

func TestColorFor(t *testing.T) {
	tests := []struct {
		severity aqi.Severity
		name     string
		hex      string
	}{
		{aqi.Good, "green", "#00ff00"},
		{aqi.Fair, "yellow", "#ffff00"},
		{aqi.Moderate, "orange", "#ffa500"},
		{aqi.Poor, "red", "#ff0000"},
		{aqi.VeryPoor, "dark purple", "#4b0082"},
		{0, "green", "#00ff00"},
		{9, "dark purple", "#4b0082"},
	}

	for _, tt := range tests {
		c := ColorFor(tt.severity)
		if c.Name != tt.name || c.Hex() != tt.hex {
			t.Errorf("ColorFor(%d) = %s %s, want %s %s", tt.severity, c.Name, c.Hex(), tt.name, tt.hex)
		}
	}
}

type fakePublisher struct {
	mu      sync.Mutex
	topic   string
	payload []byte
	calls   int
	err     error
}

func (p *fakePublisher) Publish(topic string, payload []byte, _ byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if retained {
		return errors.New("advisories must not be retained")
	}
	p.topic, p.payload = topic, payload
	return p.err
}

type fakeHub struct {
	channel string
	payload any
}

func (h *fakeHub) Broadcast(channel string, payload any) { h.channel, h.payload = channel, payload }

type warnCounter struct {
	noopLogger
	warns int
}

func (l *warnCounter) Warn(string, ...any) { l.warns++ }

var testRoom = room.ID{Building: "b1", Floor: "2", Number: "201"}

func TestEmitter_Emit(t *testing.T) {
	pub := &fakePublisher{}
	hub := &fakeHub{}
	e := NewEmitter(pub, hub, mqtt.Topics{Root: "aircontrol"}, 1, nil)
	e.now = func() time.Time { return time.Unix(1772445600, 0) }

	e.Emit(testRoom, aqi.Moderate)

	if pub.topic != "aircontrol/b1/2/201/advisory" {
		t.Errorf("topic = %q", pub.topic)
	}
	rec, err := senml.Decode(pub.payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.BaseName != "b1/2/201" || len(rec.Entries) != 3 {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Entries[0].Name != "status" || rec.Entries[0].Value != "orange" {
		t.Errorf("status entry = %+v", rec.Entries[0])
	}
	if v, ok := rec.Entries[1].Float(); !ok || v != 3 {
		t.Errorf("index entry = %+v", rec.Entries[1])
	}
	if rec.Entries[2].Value != "#ffa500" {
		t.Errorf("rgb entry = %+v", rec.Entries[2])
	}

	adv, ok := hub.payload.(Advisory)
	if hub.channel != ChannelAdvisories || !ok || adv.Color.Name != "orange" {
		t.Errorf("hub got %q %#v", hub.channel, hub.payload)
	}
}

func TestEmitter_PublishFailureIsDropped(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	logger := &warnCounter{}
	e := NewEmitter(pub, nil, mqtt.Topics{}, 0, logger)

	e.Emit(testRoom, aqi.Poor)

	if pub.calls != 1 {
		t.Errorf("publish calls = %d, want 1", pub.calls)
	}
	if logger.warns != 1 {
		t.Errorf("warnings = %d, want 1", logger.warns)
	}
}

func TestEmitter_Nil(t *testing.T) {
	var e *Emitter
	e.Emit(testRoom, aqi.Good)

	NewEmitter(nil, nil, mqtt.Topics{}, 0, nil).Emit(testRoom, aqi.Good)
}
