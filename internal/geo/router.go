package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vagaroute/backend/internal/domain"
)

// Step is one turn-by-turn instruction of a route.
type Step struct {
	Instruction string  `json:"instruction"`
	Distance    float64 `json:"distance"` // meters
	Duration    float64 `json:"duration"` // seconds
}

// Route is a computed route: the polyline geometry as [lng, lat] pairs plus
// totals and step instructions. The coordinate order matches GeoJSON.
type Route struct {
	Geometry [][2]float64 `json:"geometry"`
	Distance float64      `json:"distance"` // meters
	Duration float64      `json:"duration"` // seconds
	Steps    []Step       `json:"steps"`
}

// Router fetches driving directions from an OpenRouteService-compatible API.
type Router struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRouter constructs a Router for the given base URL
// (e.g. "https://api.openrouteservice.org").
func NewRouter(baseURL, apiKey string, client *http.Client) *Router {
	return &Router{baseURL: baseURL, apiKey: apiKey, client: client}
}

// orsResponse is the subset of the upstream GeoJSON response we read.
type orsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
			Segments []struct {
				Steps []struct {
					Instruction string  `json:"instruction"`
					Distance    float64 `json:"distance"`
					Duration    float64 `json:"duration"`
				} `json:"steps"`
			} `json:"segments"`
		} `json:"properties"`
	} `json:"features"`
}

// Directions computes a driving route through the given [lng, lat] waypoints.
// At least two coordinates are required (domain.ErrValidation otherwise).
// Upstream failures are reported as domain.ErrUpstream.
func (r *Router) Directions(ctx context.Context, coordinates [][2]float64) (Route, error) {
	if len(coordinates) < 2 {
		return Route{}, fmt.Errorf("%w: at least two coordinates are required", domain.ErrValidation)
	}

	body, err := json.Marshal(map[string]any{
		"coordinates":  coordinates,
		"instructions": true,
	})
	if err != nil {
		return Route{}, fmt.Errorf("geo.Router.Directions: %w", err)
	}

	url := r.baseURL + "/v2/directions/driving-car/geojson"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Route{}, fmt.Errorf("geo.Router.Directions: %w", err)
	}
	req.Header.Set("Authorization", r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Route{}, fmt.Errorf("geo.Router.Directions: %w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Route{}, fmt.Errorf("geo.Router.Directions: %w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var decoded orsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Route{}, fmt.Errorf("geo.Router.Directions: %w: decode: %v", domain.ErrUpstream, err)
	}
	if len(decoded.Features) == 0 {
		return Route{}, fmt.Errorf("geo.Router.Directions: %w: no route in response", domain.ErrUpstream)
	}

	feature := decoded.Features[0]
	route := Route{
		Distance: feature.Properties.Summary.Distance,
		Duration: feature.Properties.Summary.Duration,
	}

	route.Geometry = make([][2]float64, 0, len(feature.Geometry.Coordinates))
	for _, c := range feature.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		route.Geometry = append(route.Geometry, [2]float64{c[0], c[1]})
	}

	for _, seg := range feature.Properties.Segments {
		for _, s := range seg.Steps {
			route.Steps = append(route.Steps, Step(s))
		}
	}

	return route, nil
}
