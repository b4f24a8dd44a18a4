package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nerrad567/aircontrol-core/internal/room"
)

var (
	// ErrUnavailable wraps every registry failure.
	ErrUnavailable = errors.New("registry: unavailable")

	// ErrRoomUnknown is returned when the registry has no record of a room.
	// It also wraps ErrUnavailable.
	ErrRoomUnknown = fmt.Errorf("%w: room unknown", ErrUnavailable)
)

// RoomInfo is the registry record of one room.
type RoomInfo struct {
	Endpoint string            `json:"actuatorEndpoint"`
	Hours    room.OpeningHours `json:"-"`
}

// Broker is a message broker address.
type Broker struct {
	Host string `json:"ip"`
	Port int    `json:"port"`
}

// Client talks to the registry REST API.
type Client struct {
	http *resty.Client
}

// NewClient creates a registry client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{http: client}
}

// RoomInfo fetches the actuator endpoint and opening hours of a room.
func (c *Client) RoomInfo(ctx context.Context, id room.ID) (RoomInfo, error) {
	var wire roomWire
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"building": id.Building,
			"floor":    id.Floor,
			"number":   id.Number,
		}).
		SetResult(&wire).
		Get("/rooms/{building}/{floor}/{number}")
	if err != nil {
		return RoomInfo{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return RoomInfo{}, fmt.Errorf("%w: %s", ErrRoomUnknown, id)
	default:
		return RoomInfo{}, fmt.Errorf("%w: room lookup returned %d", ErrUnavailable, resp.StatusCode())
	}

	if wire.Endpoint == "" {
		return RoomInfo{}, fmt.Errorf("%w: room %s has no actuator endpoint", ErrUnavailable, id)
	}
	hours := room.OpeningHours{Start: int(wire.OpeningHours.Start), End: int(wire.OpeningHours.End)}
	if err := hours.Validate(); err != nil {
		return RoomInfo{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return RoomInfo{Endpoint: wire.Endpoint, Hours: hours}, nil
}

// BrokerAddress asks the registry where the message broker runs.
func (c *Client) BrokerAddress(ctx context.Context) (Broker, error) {
	var b Broker
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&b).
		Get("/broker")
	if err != nil {
		return Broker{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Broker{}, fmt.Errorf("%w: broker lookup returned %d", ErrUnavailable, resp.StatusCode())
	}
	if b.Host == "" || b.Port < 1 || b.Port > 65535 {
		return Broker{}, fmt.Errorf("%w: incomplete broker address %+v", ErrUnavailable, b)
	}
	return b, nil
}

// ResolveBroker returns the registry's broker address, or fallback when the
// registry cannot answer. The error is returned alongside for logging.
func ResolveBroker(ctx context.Context, c *Client, fallback Broker) (Broker, error) {
	b, err := c.BrokerAddress(ctx)
	if err != nil {
		return fallback, err
	}
	return b, nil
}

type roomWire struct {
	Endpoint     string `json:"actuatorEndpoint"`
	OpeningHours struct {
		Start hour `json:"start"`
		End   hour `json:"end"`
	} `json:"openingHours"`
}

// hour decodes 8, "8" or "08:00".
type hour int

func (h *hour) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*h = hour(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("opening hour must be a number or HH:MM string: %s", data)
	}
	head, _, _ := strings.Cut(strings.TrimSpace(s), ":")
	n, err := strconv.Atoi(head)
	if err != nil {
		return fmt.Errorf("opening hour %q: %w", s, err)
	}
	*h = hour(n)
	return nil
}
