package control

import (
	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/room"
	"github.com/nerrad567/aircontrol-core/internal/weather"
)

// Policy limits. They are part of the control policy and not configurable.
const (
	PollutionLimit     = aqi.Moderate
	SlightlyOpenLimit  = aqi.Fair
	HeatLimit          = 30.0
	BoostWindLimit     = 15.0
	StrongWindLimit    = 10.0
	FavourableWindFrom = 90.0
	FavourableWindTo   = 270.0
)

// Branch names the cascade step that produced a decision.
type Branch string

// Cascade branches.
const (
	BranchPollution Branch = "pollution"
	BranchWeather   Branch = "weather"
	BranchWind      Branch = "wind"
	BranchDefault   Branch = "default"
)

// Decision is the target state of both actuators of one room.
type Decision struct {
	Window      room.State
	Ventilation room.State
	Branch      Branch
	Severity    aqi.Severity
}

// Target returns the decided state for a.
func (d Decision) Target(a room.Actuator) room.State {
	if a == room.Ventilation {
		return d.Ventilation
	}
	return d.Window
}

// Decide runs the cascade for a room snapshot and a weather snapshot.
func Decide(r room.Room, w weather.Snapshot) Decision {
	return DecideSeverity(r.Severity(), w)
}

// DecideSeverity runs the cascade for an already computed severity.
func DecideSeverity(severity aqi.Severity, w weather.Snapshot) Decision {
	d := Decision{Severity: severity}

	switch {
	case severity > PollutionLimit:
		d.Branch = BranchPollution
		d.Window, d.Ventilation = room.Closed, room.On

	case w.Precipitation > 0 || w.Temperature > HeatLimit:
		d.Branch = BranchWeather
		d.Window, d.Ventilation = room.Closed, room.On
		if w.WindSpeed > BoostWindLimit {
			d.Ventilation = room.Boost
		}

	case w.WindSpeed > StrongWindLimit:
		d.Branch = BranchWind
		if w.WindDirection >= FavourableWindFrom && w.WindDirection <= FavourableWindTo {
			d.Window, d.Ventilation = room.Open, room.Off
		} else {
			d.Window, d.Ventilation = room.Closed, room.On
		}

	default:
		d.Branch = BranchDefault
		d.Window, d.Ventilation = room.Closed, room.On
		if severity <= SlightlyOpenLimit {
			d.Window = room.SlightlyOpen
		}
	}

	return d
}
