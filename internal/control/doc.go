// Package control decides the target window and ventilation states of a room
// from its air quality and the outdoor weather.
//
// The policy is a fixed cascade; the first matching branch wins:
//
//  1. Pollution:  severity above Moderate           -> windows Closed, ventilation On
//  2. Weather:    rain, or temperature above 30 °C  -> windows Closed, ventilation Boost
//     when wind is above 15 km/h, otherwise On
//  3. Wind:       wind above 10 km/h                -> windows Open and ventilation Off
//     when the wind comes from 90°-270°, otherwise Closed and On
//  4. Default:                                      -> windows SlightlyOpen when
//     severity is at most Fair, otherwise Closed; ventilation On
//
// Decide is pure. It does not know about opening hours; the actuator
// dispatcher refuses to open windows of a closed room.
package control
