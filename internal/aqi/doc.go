// Package aqi classifies pollutant concentrations into the five-level
// European Air Quality Index bands.
//
// Classification is pure and total: every non-negative concentration of a
// tracked pollutant maps to exactly one severity, and a room's overall
// severity is the worst band across its pollutants, not an average.
//
//	aqi.Classify(aqi.PM25, 22)                      // 3
//	aqi.Overall(map[aqi.Pollutant]float64{...})      // max band
package aqi
