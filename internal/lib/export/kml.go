// Package export renders sampled routes for use outside the API.
package export

import (
	"fmt"
	"io"

	"github.com/twpayne/go-kml/v2"

	"github.com/dpup/routemarks/server/internal/lib/geo"
)

// MarkerDocument describes a KML document of route markers
type MarkerDocument struct {
	Name    string
	Route   []geo.Point // optional source path drawn as a line
	Markers []geo.Point
}

// WriteKML writes the document as indented KML. Markers are numbered from 0,
// which is always the start of the route.
func WriteKML(w io.Writer, doc MarkerDocument) error {
	children := []kml.Element{kml.Name(doc.Name)}

	if len(doc.Route) > 1 {
		children = append(children, kml.Placemark(
			kml.Name("Route"),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coordinates(doc.Route)...),
			),
		))
	}

	for i, p := range doc.Markers {
		children = append(children, kml.Placemark(
			kml.Name(fmt.Sprintf("Marker %d", i)),
			kml.Point(kml.Coordinates(coordinate(p))),
		))
	}

	if err := kml.KML(kml.Document(children...)).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write KML: %w", err)
	}
	return nil
}

func coordinates(points []geo.Point) []kml.Coordinate {
	coords := make([]kml.Coordinate, len(points))
	for i, p := range points {
		coords[i] = coordinate(p)
	}
	return coords
}

// KML coordinates are in "longitude,latitude" order
func coordinate(p geo.Point) kml.Coordinate {
	return kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
}
