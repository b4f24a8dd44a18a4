package ingest

import (
	"context"

	"github.com/nerrad567/aircontrol-core/internal/actuator"
	"github.com/nerrad567/aircontrol-core/internal/control"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/aircontrol-core/internal/room"
	"github.com/nerrad567/aircontrol-core/internal/telemetry"
	"github.com/nerrad567/aircontrol-core/internal/weather"
)

// Process runs the control cycle for one reading under the room's cycle lock.
// Workers call it; it is exported for callers that want a synchronous cycle.
func (p *Pipeline) Process(ctx context.Context, rd telemetry.Reading) {
	defer p.processed.Add(1)

	unlock := p.deps.Store.Lock(rd.Room)
	defer unlock()

	r := p.deps.Store.UpsertReadings(rd.Room, rd.Values, rd.ObservedAt)
	severity := r.Severity()

	if p.deps.Advisory != nil {
		p.deps.Advisory.Emit(rd.Room, severity)
	}
	if p.deps.Readings != nil {
		values := make(map[string]float64, len(r.Latest))
		for pollutant, v := range r.Latest {
			values[string(pollutant)] = v
		}
		tags := influxdb.RoomTags{Building: rd.Room.Building, Floor: rd.Room.Floor, Number: rd.Room.Number}
		p.deps.Readings.WriteAirQuality(tags, values, int(severity), rd.ObservedAt)
	}

	if !r.Resolved && !p.resolve(ctx, rd.Room) {
		return
	}

	snapshot := p.currentWeather(ctx, rd.Room.Building)
	decision := control.DecideSeverity(severity, snapshot)
	p.log.Debug("decision",
		"room", rd.Room.String(),
		"severity", int(severity),
		"branch", string(decision.Branch),
		"window", string(decision.Window),
		"ventilation", string(decision.Ventilation),
	)

	for _, a := range room.Actuators {
		p.apply(ctx, actuator.Command{
			Room:     rd.Room,
			Actuator: a,
			State:    decision.Target(a),
			Source:   actuator.SourceTelemetry,
		})
	}
}

// resolve loads registry metadata. On failure the room stays unresolved and
// is tried again on its next message.
func (p *Pipeline) resolve(ctx context.Context, id room.ID) bool {
	if p.deps.Registry == nil {
		p.log.Debug("no registry configured, actuation skipped", "room", id.String())
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.RegistryTimeout)
	defer cancel()

	info, err := p.deps.Registry.RoomInfo(ctx, id)
	if err != nil {
		p.log.Warn("registry unavailable, actuation skipped", "room", id.String(), "error", err)
		return false
	}
	if err := p.deps.Store.SetMetadata(id, info.Hours, info.Endpoint); err != nil {
		p.log.Warn("registry metadata rejected", "room", id.String(), "error", err)
		return false
	}
	p.log.Info("room resolved",
		"room", id.String(),
		"endpoint", info.Endpoint,
		"opening_start", info.Hours.Start,
		"opening_end", info.Hours.End,
	)
	return true
}

func (p *Pipeline) currentWeather(ctx context.Context, building string) weather.Snapshot {
	if p.deps.Weather == nil {
		return weather.Zero
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.WeatherTimeout)
	defer cancel()

	w, err := p.deps.Weather.Current(ctx, building)
	if err != nil {
		p.log.Warn("weather unavailable, using defaults", "building", building, "error", err)
		return weather.Zero
	}
	return w
}

func (p *Pipeline) apply(ctx context.Context, cmd actuator.Command) {
	err := p.deps.Dispatcher.Apply(ctx, cmd)
	attrs := []any{"room", cmd.Room.String(), "actuator", string(cmd.Actuator), "target", string(cmd.State)}

	switch {
	case err == nil:
	case actuator.IsRejection(err):
		p.log.Info("actuation rejected", append(attrs, "reason", err.Error())...)
	default:
		p.log.Warn("actuation failed", append(attrs, "error", err)...)
	}
}
