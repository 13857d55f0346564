package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dpup/routemarks/server/internal/lib/export"
	"github.com/dpup/routemarks/server/internal/lib/geo"
	"github.com/dpup/routemarks/server/internal/lib/sampler"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	geodesy := geo.NewSpherical()

	switch command {
	case "sample":
		handleSample(geodesy)
	case "length":
		handleLength(geodesy)
	case "bounds":
		handleBounds()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleSample(geodesy geo.Geodesy) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	encoded := fs.String("polyline", "", "Encoded polyline of the route")
	points := fs.String("points", "", "Route as lat,lng pairs separated by ';'")
	spacing := fs.Float64("spacing", sampler.DefaultSpacing, "Marker spacing in meters")
	format := fs.String("format", "text", "Output format: text, json or kml")

	fs.Parse(os.Args[2:])

	path := readPath(*encoded, *points)

	markers, err := sampler.New(geodesy).Sample(path, *spacing)
	if err != nil {
		log.Fatalf("Failed to sample route: %v", err)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(markers); err != nil {
			log.Fatalf("Failed to write JSON: %v", err)
		}
	case "kml":
		doc := export.MarkerDocument{Name: "Sampled route", Route: path, Markers: markers}
		if err := export.WriteKML(os.Stdout, doc); err != nil {
			log.Fatalf("Failed to write KML: %v", err)
		}
	default:
		fmt.Printf("Sampled %d points into %d markers (spacing %.0fm)\n", len(path), len(markers), *spacing)
		for i, m := range markers {
			fmt.Printf("  %3d  %.6f, %.6f\n", i, m.Latitude, m.Longitude)
		}
	}
}

func handleLength(geodesy geo.Geodesy) {
	fs := flag.NewFlagSet("length", flag.ExitOnError)
	encoded := fs.String("polyline", "", "Encoded polyline of the route")
	points := fs.String("points", "", "Route as lat,lng pairs separated by ';'")

	fs.Parse(os.Args[2:])

	path := readPath(*encoded, *points)
	length, err := geo.PathLength(geodesy, path)
	if err != nil {
		log.Fatalf("Failed to measure route: %v", err)
	}

	fmt.Printf("Route length: %.1fm (%.2fkm) over %d points\n", length, length/1000, len(path))
}

func handleBounds() {
	fs := flag.NewFlagSet("bounds", flag.ExitOnError)
	encoded := fs.String("polyline", "", "Encoded polyline of the route")
	points := fs.String("points", "", "Route as lat,lng pairs separated by ';'")
	padding := fs.Float64("padding", 0, "Padding in meters on every side")

	fs.Parse(os.Args[2:])

	bounds, err := geo.FitBounds(readPath(*encoded, *points), *padding)
	if err != nil {
		log.Fatalf("Failed to fit bounds: %v", err)
	}

	center := bounds.Center()
	fmt.Printf("South-west: %.6f, %.6f\n", bounds.SouthWest.Latitude, bounds.SouthWest.Longitude)
	fmt.Printf("North-east: %.6f, %.6f\n", bounds.NorthEast.Latitude, bounds.NorthEast.Longitude)
	fmt.Printf("Center:     %.6f, %.6f\n", center.Latitude, center.Longitude)
}

func readPath(encoded, points string) []geo.Point {
	if encoded != "" {
		path, err := geo.DecodePolyline(encoded)
		if err != nil {
			log.Fatalf("Invalid polyline: %v", err)
		}
		return path
	}
	if points != "" {
		path, err := parsePoints(points)
		if err != nil {
			log.Fatalf("Invalid points: %v", err)
		}
		return path
	}

	fmt.Println("Either --polyline or --points is required. Example usage:")
	fmt.Println("  sample-route sample --points '38.0675,-120.5436;38.1000,-120.5000;38.1391,-120.4561' --spacing 1000")
	fmt.Println("  (Angels Camp to Murphys along Highway 4)")
	os.Exit(1)
	return nil
}

// parsePoints parses "lat,lng;lat,lng;..."
func parsePoints(s string) ([]geo.Point, error) {
	var path []geo.Point
	for i, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("point %d: expected lat,lng but got %q", i, pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: invalid latitude: %w", i, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: invalid longitude: %w", i, err)
		}

		p, err := geo.NewPoint(lat, lng)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		path = append(path, p)
	}
	return path, nil
}

func printUsage() {
	fmt.Println("sample-route - offline route sampling")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sample-route <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  sample   Place markers every --spacing meters along a route")
	fmt.Println("  length   Print the great-circle length of a route")
	fmt.Println("  bounds   Print the bounds of a route")
	fmt.Println("  help     Show this message")
	fmt.Println()
	fmt.Println("Routes are given with --polyline (encoded) or --points 'lat,lng;lat,lng'.")
}
