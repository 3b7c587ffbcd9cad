package domain

import (
	"fmt"
	"math"
)

// Default session values
const (
	DefaultRadiusMeters = 2000
	MinRadiusMeters     = 1
	MaxRadiusMeters     = 20000

	DefaultCenterLat = 34.9687735
	DefaultCenterLon = 127.4802359
)

// CategoryGroupFoodAndDrink is the places provider's food and drink group.
const CategoryGroupFoodAndDrink = "FD6"

// RestaurantKeyword is the fixed term used for nearby restaurant searches.
const RestaurantKeyword = "식당"

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// DefaultCenter returns the initial map center.
func DefaultCenter() Coordinate {
	return Coordinate{Lon: DefaultCenterLon, Lat: DefaultCenterLat}
}

// Validate checks that c lies within WGS84 bounds.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinate.WithCause(fmt.Errorf("lat=%v lon=%v", c.Lat, c.Lon))
	}
	return nil
}

// Place is a point of interest returned by the places provider.
type Place struct {
	ID             string     `json:"id,omitempty"`
	Name           string     `json:"name"`
	FullAddress    string     `json:"full_address"`
	RoadAddress    string     `json:"road_address,omitempty"`
	Coordinate     Coordinate `json:"coordinate"`
	CategoryLabel  string     `json:"category_label"`
	CategoryGroup  string     `json:"category_group,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	URL            string     `json:"url,omitempty"`
	DistanceMeters int        `json:"distance_meters,omitempty"`
}

// NewPlace creates a Place with the fields every provider result carries.
func NewPlace(name, fullAddress string, coord Coordinate, categoryLabel string) Place {
	return Place{
		Name:          name,
		FullAddress:   fullAddress,
		Coordinate:    coord,
		CategoryLabel: categoryLabel,
	}
}

// DisplayName returns the candidate row text: "address (name)".
func (p Place) DisplayName() string {
	if p.Name == "" || p.Name == p.FullAddress {
		return p.FullAddress
	}
	return fmt.Sprintf("%s (%s)", p.FullAddress, p.Name)
}

// ValidateRadius checks a user-supplied search radius. The places provider
// takes whole meters, so anything under one meter is rejected.
func ValidateRadius(meters float64) error {
	if math.IsNaN(meters) || meters < MinRadiusMeters || meters > MaxRadiusMeters {
		return ErrInvalidRadius
	}
	return nil
}

// KeywordQuery describes a free-text place search.
type KeywordQuery struct {
	Text          string
	CategoryGroup string
	Center        *Coordinate
	RadiusMeters  int
}
