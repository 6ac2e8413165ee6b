// Package geo converts sexagesimal coordinates and builds GeoJSON point
// features.
package geo
