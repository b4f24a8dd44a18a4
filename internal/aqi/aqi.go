package aqi

import (
	"errors"
	"fmt"
)

// ErrUnknownPollutant is returned by ParsePollutant for untracked names.
var ErrUnknownPollutant = errors.New("aqi: unknown pollutant")

// Pollutant is a tracked pollutant, named as sensors report it.
type Pollutant string

// Tracked pollutants.
const (
	PM25 Pollutant = "PM2.5"
	PM10 Pollutant = "PM10"
	O3   Pollutant = "O3"
	NO2  Pollutant = "NO2"
	SO2  Pollutant = "SO2"
)

// Pollutants lists every tracked pollutant in a stable order.
var Pollutants = []Pollutant{PM25, PM10, O3, NO2, SO2}

// Severity is an ordinal band from 1 (good) to 5 (extremely poor).
type Severity int

// Severity bands.
const (
	Good Severity = iota + 1
	Fair
	Moderate
	Poor
	VeryPoor
)

// MinSeverity and MaxSeverity bound the scale.
const (
	MinSeverity = Good
	MaxSeverity = VeryPoor
)

func (s Severity) String() string {
	switch s {
	case Good:
		return "good"
	case Fair:
		return "fair"
	case Moderate:
		return "moderate"
	case Poor:
		return "poor"
	case VeryPoor:
		return "very poor"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// thresholds are the inclusive upper bounds of bands 1..4, in µg/m³.
// Anything above the last bound is band 5.
var thresholds = map[Pollutant][4]float64{
	PM25: {10, 20, 25, 50},
	PM10: {20, 40, 50, 100},
	O3:   {60, 120, 180, 240},
	NO2:  {40, 90, 120, 230},
	SO2:  {100, 200, 350, 500},
}

// Thresholds returns the four band bounds of p.
func Thresholds(p Pollutant) ([4]float64, bool) {
	t, ok := thresholds[p]
	return t, ok
}

// ParsePollutant maps a sensor entry name to a tracked pollutant.
func ParsePollutant(name string) (Pollutant, error) {
	p := Pollutant(name)
	if _, ok := thresholds[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPollutant, name)
	}
	return p, nil
}

// Classify maps one concentration to its band.
// Bounds are inclusive: a value equal to a threshold stays in the lower band.
// Untracked pollutants classify as Good.
func Classify(p Pollutant, value float64) Severity {
	t, ok := thresholds[p]
	if !ok {
		return Good
	}
	for i, bound := range t {
		if value <= bound {
			return Severity(i + 1)
		}
	}
	return VeryPoor
}

// Overall is the maximum band over the given concentrations.
// Missing pollutants count as 0, so an empty map is Good.
func Overall(values map[Pollutant]float64) Severity {
	worst := Good
	for _, p := range Pollutants {
		if s := Classify(p, values[p]); s > worst {
			worst = s
		}
	}
	return worst
}
