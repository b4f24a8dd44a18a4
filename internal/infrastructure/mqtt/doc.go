// Package mqtt provides MQTT client connectivity for the air control core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// # Architecture
//
// Room sensors publish pollutant readings on {root}/{building}/{floor}/{number}/pollutants.
// The controller subscribes with a single wildcard, publishes the air quality
// advisory for room displays on .../advisory, and retains the confirmed window
// and ventilation state on .../windows and .../ventilation.
//
//	Room sensors → Broker → Controller → Broker → Displays, time series
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().AllPollutants(), 1,
//	    func(topic string, payload []byte) error {
//	        return pipeline.Submit(topic, payload)
//	    })
package mqtt
