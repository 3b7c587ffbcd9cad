package domain

// MapView is everything the map renderer draws from.
type MapView struct {
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
	Markers      []Place    `json:"markers"`
	Ready        bool       `json:"ready"`
}
