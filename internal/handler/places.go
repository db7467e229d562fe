package handler

import (
	"net/http"
	"strconv"
)

// directionsRequest is the body of POST /places/directions.
// Coordinates are [lng, lat] pairs, route order.
type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// SearchPlaces handles GET /places/search?q=...&limit=N. It proxies the
// geocoder so the client never talks to the upstream service directly.
func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestUserID(w, r); !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		badRequest(w, "query parameter q is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	places, err := s.geocoder.Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, places)
}

// GetDirections handles POST /places/directions.
func (s *Server) GetDirections(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestUserID(w, r); !ok {
		return
	}

	var req directionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	route, err := s.directions.Directions(r.Context(), req.Coordinates)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, route)
}
