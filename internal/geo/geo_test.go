package geo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/geo"
)

func TestGeocoder_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Ella", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"display_name":"Ella, Badulla, Sri Lanka","lat":"6.8667","lon":"81.0466"},
			{"display_name":"Ella Gap","lat":"6.8500","lon":"81.0500"}
		]`))
	}))
	defer srv.Close()

	g := geo.NewGeocoder(srv.URL, srv.Client())

	places, err := g.Search(context.Background(), "Ella", 5)

	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Ella, Badulla, Sri Lanka", places[0].Name)
	assert.InDelta(t, 6.8667, places[0].Lat, 1e-9)
	assert.InDelta(t, 81.0466, places[0].Lng, 1e-9)
}

func TestGeocoder_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := geo.NewGeocoder(srv.URL, srv.Client())

	_, err := g.Search(context.Background(), "Ella", 5)

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestRouter_Directions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/directions/driving-car/geojson", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"features": [{
				"geometry": {"coordinates": [[79.86, 6.92], [80.63, 7.29], [81.05, 6.87]]},
				"properties": {
					"summary": {"distance": 205300.5, "duration": 14520.0},
					"segments": [{"steps": [
						{"instruction": "Head east", "distance": 1200, "duration": 90},
						{"instruction": "Arrive at destination", "distance": 0, "duration": 0}
					]}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	rt := geo.NewRouter(srv.URL, "test-key", srv.Client())

	route, err := rt.Directions(context.Background(), [][2]float64{{79.86, 6.92}, {81.05, 6.87}})

	require.NoError(t, err)
	assert.Len(t, route.Geometry, 3)
	assert.InDelta(t, 205300.5, route.Distance, 1e-9)
	require.Len(t, route.Steps, 2)
	assert.Equal(t, "Head east", route.Steps[0].Instruction)
}

func TestRouter_Directions_TooFewCoordinates(t *testing.T) {
	rt := geo.NewRouter("http://unused", "key", http.DefaultClient)

	_, err := rt.Directions(context.Background(), [][2]float64{{79.86, 6.92}})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRouter_Directions_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	rt := geo.NewRouter(srv.URL, "key", srv.Client())

	_, err := rt.Directions(context.Background(), [][2]float64{{0, 0}, {1, 1}})

	assert.ErrorIs(t, err, domain.ErrUpstream)
}
