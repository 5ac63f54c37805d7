package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Coordinate validation constants
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrInvalidCoordinates is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// GeoPoint is a WGS84 position. It is serialized as a GeoJSON Point,
// which orders coordinates [lng, lat].
type GeoPoint struct {
	Lat float64
	Lng float64
}

// NewGeoPoint builds a point from optional coordinates. Both must be set or
// both nil; a nil point with nil error means the parcel has no location.
func NewGeoPoint(lat, lng *float64) (*GeoPoint, error) {
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, fmt.Errorf("%w: latitude and longitude must be provided together", ErrInvalidCoordinates)
	}
	if err := ValidateCoordinates(*lat, *lng); err != nil {
		return nil, err
	}
	return &GeoPoint{Lat: *lat, Lng: *lng}, nil
}

// ValidateCoordinates checks lat/lng ranges.
func ValidateCoordinates(lat, lng float64) error {
	if lat < MinLatitude || lat > MaxLatitude {
		return fmt.Errorf("%w: latitude must be between %f and %f, got %f",
			ErrInvalidCoordinates, MinLatitude, MaxLatitude, lat)
	}
	if lng < MinLongitude || lng > MaxLongitude {
		return fmt.Errorf("%w: longitude must be between %f and %f, got %f",
			ErrInvalidCoordinates, MinLongitude, MaxLongitude, lng)
	}
	return nil
}

// Point converts to an orb point.
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// MarshalJSON implements json.Marshaler using GeoJSON geometry encoding.
func (p GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(geojson.NewGeometry(p.Point()))
}

// UnmarshalJSON implements json.Unmarshaler for GeoJSON Point input.
func (p *GeoPoint) UnmarshalJSON(data []byte) error {
	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return fmt.Errorf("failed to unmarshal point: %w", err)
	}

	point, ok := geom.Geometry().(orb.Point)
	if !ok {
		return fmt.Errorf("expected Point type, got %s", geom.Type)
	}
	if err := ValidateCoordinates(point.Lat(), point.Lon()); err != nil {
		return err
	}

	p.Lat = point.Lat()
	p.Lng = point.Lon()
	return nil
}

// ParcelFeatureCollection renders the located parcels as GeoJSON features.
// Parcels without coordinates are skipped.
func ParcelFeatureCollection(parcels []Parcel) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, parcel := range parcels {
		if parcel.Location == nil {
			continue
		}

		feature := geojson.NewFeature(parcel.Location.Point())
		feature.ID = parcel.ID
		feature.Properties["name"] = parcel.Name
		feature.Properties["area"] = parcel.Area.String()
		if parcel.DistrictName != "" {
			feature.Properties["district"] = parcel.DistrictName
		}
		fc.Append(feature)
	}
	return fc
}

// Bounds returns the bounding box of the located parcels and false when no
// parcel has coordinates.
func Bounds(parcels []Parcel) (orb.Bound, bool) {
	var mp orb.MultiPoint
	for _, parcel := range parcels {
		if parcel.Location != nil {
			mp = append(mp, parcel.Location.Point())
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}
