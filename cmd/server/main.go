package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/dpup/prefab"

	"github.com/dpup/routemarks/server/internal/api"
	"github.com/dpup/routemarks/server/internal/cache"
	"github.com/dpup/routemarks/server/internal/clients/google"
	"github.com/dpup/routemarks/server/internal/config"
	"github.com/dpup/routemarks/server/internal/lib/geo"
	"github.com/dpup/routemarks/server/internal/services"
)

func main() {
	// Configuration is loaded from prefab.yaml and environment variables with PF__ prefix
	appConfig, err := config.Load(prefab.Config)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if appConfig.Google.APIKey == "" {
		log.Fatal("Google Maps API key is required in configuration (google.api_key)")
	}

	googleClient, err := google.NewClient(appConfig.Google.APIKey,
		google.WithRateLimit(appConfig.Google.RequestsPerSecond))
	if err != nil {
		log.Fatalf("Failed to create Google Maps client: %v", err)
	}

	cacheInstance := cache.NewCache()
	cacheInstance.StartPeriodicCleanup(context.Background(), appConfig.Cache.CleanupInterval)

	mapsService := services.NewMapsService(googleClient, geo.NewSpherical(), cacheInstance, appConfig)
	handlers := api.NewHandlers(mapsService)

	log.Printf("Route marker API server starting")
	log.Printf("Default travel mode: %s, default marker spacing: %.0fm",
		appConfig.Google.Mode, appConfig.Sampler.DefaultSpacingMeters)

	opts := []prefab.ServerOption{
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
	}
	for path, handler := range handlers.Routes() {
		opts = append(opts, prefab.WithHTTPHandlerFunc(path, handler))
	}
	server := prefab.New(opts...)

	// Start the server (blocks until shutdown)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// homepageHandler serves a plain text index of the API at the server root
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	index := `routemarks

Places markers at regular distances along Google Maps routes.

GET  /api/v1/geocode?address=...                       Resolve an address
GET  /api/v1/directions?origin=...&destination=...     Route with flattened path
GET  /api/v1/sample?origin=...&destination=...&spacing=500[&format=kml]
POST /api/v1/sample   {"points": [...]} or {"polyline": "..."}, "spacing": 500
POST /api/v1/bounds   {"points": [...], "padding_meters": 0}
`

	if _, err := fmt.Fprint(w, index); err != nil {
		slog.Error("Failed to write homepage", "error", err)
	}
}
