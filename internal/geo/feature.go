package geo

import (
	"github.com/bytedance/sonic"

	"github.com/keith-mcqueen/Temples/internal/record"
)

// CRS84 is the coordinate reference system named in every collection.
const CRS84 = "urn:ogc:def:crs:OGC:1.3:CRS84"

// MarkerSize is added to every feature's properties.
const MarkerSize = "small"

// Point is a GeoJSON point geometry.
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Feature is a GeoJSON feature with an ordered property record.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Point          `json:"geometry"`
	Properties *record.Record `json:"properties"`
}

// NewFeature builds a point feature. properties is copied and gains the
// marker-size property.
func NewFeature(lat, lon float64, properties *record.Record) Feature {
	props := record.New()
	if properties != nil {
		props = properties.Clone()
	}
	props.Set("marker-size", MarkerSize)
	return Feature{
		Type:       "Feature",
		Geometry:   Point{Type: "Point", Coordinates: [2]float64{lon, lat}},
		Properties: props,
	}
}

// FeatureCollection is the export envelope.
type FeatureCollection struct {
	Type     string    `json:"type"`
	CRS      crs       `json:"crs"`
	Features []Feature `json:"features"`
}

type crs struct {
	Type       string        `json:"type"`
	Properties crsProperties `json:"properties"`
}

type crsProperties struct {
	Name string `json:"name"`
}

// NewFeatureCollection returns an empty collection in CRS84.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		CRS:      crs{Type: "name", Properties: crsProperties{Name: CRS84}},
		Features: []Feature{},
	}
}

// Add appends a feature.
func (c *FeatureCollection) Add(f Feature) {
	c.Features = append(c.Features, f)
}

// Len returns the number of features.
func (c *FeatureCollection) Len() int {
	return len(c.Features)
}

// MarshalJSON encodes the collection.
func (c *FeatureCollection) MarshalJSON() ([]byte, error) {
	type plain FeatureCollection
	return sonic.ConfigStd.Marshal((*plain)(c))
}
