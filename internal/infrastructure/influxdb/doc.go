// Package influxdb provides InfluxDB connectivity for the air control core.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, health monitoring and the controller's time-series writes:
//   - air_quality: pollutant concentrations and overall severity per room
//   - actuator_state: every confirmed window/ventilation change
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteAirQuality(influxdb.RoomTags{Building: "b1", Floor: "2", Number: "201"},
//	    map[string]float64{"PM2.5": 12}, 2, time.Now())
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a callback.
// Connection and health check errors are returned directly.
package influxdb
