// Package registry is the client of the building registry (catalog) service.
//
// The registry knows, for every room, where its actuator controller listens
// and when the room is open, and it knows the address of the message broker.
//
//	GET {url}/broker                     -> {"ip": "...", "port": 1883}
//	GET {url}/rooms/{building}/{floor}/{number}
//	    -> {"actuatorEndpoint": "http://...", "openingHours": {"start": 8, "end": 18}}
//
// Opening hours may also be given as "08:00" style strings; minutes are ignored.
// Every failure wraps ErrUnavailable so callers can retry on the next reading.
package registry
