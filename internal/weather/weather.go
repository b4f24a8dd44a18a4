// Package weather fetches the current outdoor conditions that gate window
// opening: rain, heat and wind.
//
// Snapshots are pulled on demand for every decision and never cached. When
// the provider cannot answer the caller proceeds with Zero.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnavailable wraps every failure to obtain a snapshot.
var ErrUnavailable = errors.New("weather: unavailable")

// DefaultTimeout bounds one provider request.
const DefaultTimeout = 5 * time.Second

// Snapshot is one reading of outdoor conditions.
type Snapshot struct {
	// WindSpeed in km/h.
	WindSpeed float64 `json:"wind_speed"`
	// Precipitation in mm over the last interval.
	Precipitation float64 `json:"precipitation"`
	// Temperature in °C.
	Temperature float64 `json:"temperature"`
	// WindDirection in degrees, 0-360, where the wind comes from.
	WindDirection float64 `json:"wind_direction"`
}

// Zero is the snapshot used when the provider is unavailable.
var Zero = Snapshot{}

// Provider returns the current conditions for a building.
type Provider interface {
	Current(ctx context.Context, building string) (Snapshot, error)
}

// HTTPProvider reads an Open-Meteo style JSON document over HTTP.
//
// The URL may contain a {building} placeholder, filled from the room being decided.
type HTTPProvider struct {
	client *resty.Client
	url    string
}

// NewHTTPProvider creates a provider for url with a per-request timeout.
// The provider does not retry; a failed fetch falls back to Zero upstream.
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &HTTPProvider{client: client, url: url}
}

// Current fetches and decodes the latest conditions.
func (p *HTTPProvider) Current(ctx context.Context, building string) (Snapshot, error) {
	req := p.client.R().SetContext(ctx)
	if strings.Contains(p.url, "{building}") {
		req.SetPathParam("building", building)
	}

	resp, err := req.Get(p.url)
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Zero, fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode())
	}

	snap, err := decode(resp.Body())
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return snap, nil
}

// current mirrors the Open-Meteo "current" block. Pointers tell absent fields
// from zeros so the legacy names can fill the gaps.
type current struct {
	Temperature2m    *float64 `json:"temperature_2m"`
	Precipitation    *float64 `json:"precipitation"`
	WindSpeed10m     *float64 `json:"wind_speed_10m"`
	WindDirection10m *float64 `json:"wind_direction_10m"`

	// Legacy current_weather names.
	Temperature   *float64 `json:"temperature"`
	WindSpeed     *float64 `json:"windspeed"`
	WindDirection *float64 `json:"winddirection"`
}

type document struct {
	Current        *current `json:"current"`
	CurrentWeather *current `json:"current_weather"`
}

// decode accepts either a "current" or a "current_weather" block. Fields the
// provider omits are 0.
func decode(body []byte) (Snapshot, error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Zero, fmt.Errorf("decoding weather: %w", err)
	}

	c := doc.Current
	if c == nil {
		c = doc.CurrentWeather
	}
	if c == nil {
		return Zero, errors.New("no current conditions in response")
	}

	return Snapshot{
		WindSpeed:     first(c.WindSpeed10m, c.WindSpeed),
		Precipitation: first(c.Precipitation),
		Temperature:   first(c.Temperature2m, c.Temperature),
		WindDirection: first(c.WindDirection10m, c.WindDirection),
	}, nil
}

func first(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
