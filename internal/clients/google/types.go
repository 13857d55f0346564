package google

import "github.com/dpup/routemarks/server/internal/lib/geo"

// Route is the processed form of the first route in a directions response
type Route struct {
	Summary         string     `json:"summary"`
	DistanceMeters  int        `json:"distance_meters"`
	DurationSeconds int        `json:"duration_seconds"`
	Overview        string     `json:"overview_polyline"`
	Bounds          geo.Bounds `json:"bounds"`
	Legs            []Leg      `json:"legs"`
}

// Leg is one origin-to-waypoint section of a route
type Leg struct {
	StartAddress    string `json:"start_address"`
	EndAddress      string `json:"end_address"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	Steps           []Step `json:"steps"`
}

// Step holds the decoded polyline of a single navigation step
type Step struct {
	Points []geo.Point `json:"points"`
}

// GeocodeResult is the first match for an address
type GeocodeResult struct {
	FormattedAddress string    `json:"formatted_address"`
	PlaceID          string    `json:"place_id"`
	Point            geo.Point `json:"point"`
}

// Path flattens legs and steps into one ordered path. Step boundaries are
// concatenated as-is, so the shared vertex between steps appears twice.
func (r *Route) Path() []geo.Point {
	var path []geo.Point
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			path = append(path, step.Points...)
		}
	}
	return path
}
