// Package api exposes the maps service over plain HTTP/JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"

	"github.com/dpup/routemarks/server/internal/clients/google"
	"github.com/dpup/routemarks/server/internal/lib/export"
	"github.com/dpup/routemarks/server/internal/lib/geo"
	"github.com/dpup/routemarks/server/internal/lib/sampler"
	"github.com/dpup/routemarks/server/internal/services"
)

const maxBodyBytes = 4 << 20

// Handlers serves the HTTP endpoints
type Handlers struct {
	svc *services.MapsService
}

// NewHandlers creates handlers backed by svc
func NewHandlers(svc *services.MapsService) *Handlers {
	return &Handlers{svc: svc}
}

// Routes returns the path to handler mapping, for registration with the server
func (h *Handlers) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/api/v1/geocode":    h.Geocode,
		"/api/v1/directions": h.Directions,
		"/api/v1/sample":     h.Sample,
		"/api/v1/bounds":     h.Bounds,
	}
}

// Geocode handles GET /api/v1/geocode?address=
func (h *Handlers) Geocode(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	result, err := h.svc.Geocode(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Directions handles GET /api/v1/directions?origin=&destination=&mode=
func (h *Handlers) Directions(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	route, err := h.svc.Directions(r.Context(), q.Get("origin"), q.Get("destination"), q.Get("mode"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, directionsResponse{
		Route: route,
		Path:  route.Path(),
	})
}

type directionsResponse struct {
	Route *google.Route `json:"route"`
	Path  []geo.Point   `json:"path"`
}

type sampleRequest struct {
	Points   []geo.Point `json:"points"`
	Polyline string      `json:"polyline"`
	Spacing  float64     `json:"spacing"`
}

// Sample handles GET /api/v1/sample (route from directions) and
// POST /api/v1/sample (caller supplied points or encoded polyline).
// format=kml switches the response to KML.
func (h *Handlers) Sample(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	q := r.URL.Query()
	var (
		result *services.SampleResult
		name   string
		err    error
	)

	switch r.Method {
	case http.MethodGet:
		spacing, perr := parseSpacing(q.Get("spacing"))
		if perr != nil {
			writeError(w, perr)
			return
		}
		name = fmt.Sprintf("%s to %s", q.Get("origin"), q.Get("destination"))
		result, err = h.svc.SampleRouteAsync(r.Context(), q.Get("origin"), q.Get("destination"), q.Get("mode"), spacing).
			Await(r.Context())

	case http.MethodPost:
		var req sampleRequest
		if derr := decodeJSON(w, r, &req); derr != nil {
			writeError(w, derr)
			return
		}
		path := req.Points
		if req.Polyline != "" {
			if len(path) > 0 {
				writeError(w, fmt.Errorf("%w: provide points or polyline, not both", services.ErrInvalidRequest))
				return
			}
			if path, err = geo.DecodePolyline(req.Polyline); err != nil {
				writeError(w, fmt.Errorf("%w: %v", services.ErrInvalidRequest, err))
				return
			}
		}
		name = "Sampled path"
		result, err = h.svc.SamplePath(r.Context(), path, req.Spacing)
	}

	if err != nil {
		writeError(w, err)
		return
	}

	if q.Get("format") == "kml" {
		w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
		if err := export.WriteKML(w, export.MarkerDocument{Name: name, Route: result.Path, Markers: result.Markers}); err != nil {
			slog.Error("Failed to write KML response", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type boundsRequest struct {
	Points        []geo.Point `json:"points"`
	PaddingMeters float64     `json:"padding_meters"`
}

type boundsResponse struct {
	Bounds geo.Bounds `json:"bounds"`
	Center geo.Point  `json:"center"`
}

// Bounds handles POST /api/v1/bounds
func (h *Handlers) Bounds(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}

	var req boundsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	bounds, err := h.svc.FitBounds(req.Points, req.PaddingMeters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boundsResponse{Bounds: bounds, Center: bounds.Center()})
}

// Code classifies an error for transport
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, sampler.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, geo.ErrInvalidCoordinate):
		return codes.InvalidArgument
	case errors.Is(err, sampler.ErrDependencyUnavailable):
		return codes.Unavailable
	case errors.Is(err, google.ErrNoResults):
		return codes.NotFound
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	}
	return codes.Internal
}

func parseSpacing(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	spacing, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: spacing must be a number", services.ErrInvalidRequest)
	}
	return spacing, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", services.ErrInvalidRequest, err)
	}
	return nil
}

func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	for _, m := range methods {
		w.Header().Add("Allow", m)
	}
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	return false
}

func writeError(w http.ResponseWriter, err error) {
	status := runtime.HTTPStatusFromCode(Code(err))
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "status", status)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
