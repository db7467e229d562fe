// Package geo wraps the external geocoding and directions APIs the app
// consumes. Nothing here computes routes or matches addresses itself — these
// are thin, typed clients over third-party HTTP services.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vagaroute/backend/internal/domain"
)

// Place is one ranked geocoding candidate.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Geocoder resolves free-text queries against a Nominatim-compatible API.
type Geocoder struct {
	baseURL string
	client  *http.Client
}

// NewGeocoder constructs a Geocoder for the given base URL
// (e.g. "https://nominatim.openstreetmap.org").
func NewGeocoder(baseURL string, client *http.Client) *Geocoder {
	return &Geocoder{baseURL: baseURL, client: client}
}

// nominatimResult is the subset of the upstream response we read.
// Nominatim serializes coordinates as strings.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search returns up to limit candidates for the query, best match first.
// Upstream failures are reported as domain.ErrUpstream.
func (g *Geocoder) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = 5
	}

	q := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {strconv.Itoa(limit)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geo.Geocoder.Search: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "vagaroute-backend")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo.Geocoder.Search: %w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo.Geocoder.Search: %w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geo.Geocoder.Search: %w: decode: %v", domain.ErrUpstream, err)
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lng, lngErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lngErr != nil {
			continue
		}
		places = append(places, Place{Name: r.DisplayName, Lat: lat, Lng: lng})
	}
	return places, nil
}
