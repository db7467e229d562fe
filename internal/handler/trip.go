package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/middleware"
)

// tripRequest is the body of POST /trips and PUT /trips/{tripID}.
// Dates are wire-formatted as "2006-01-02".
type tripRequest struct {
	Title      string              `json:"title"`
	StartPoint string              `json:"startPoint"`
	EndPoint   string              `json:"endPoint"`
	Stops      []string            `json:"stops"`
	StartDate  *openapi_types.Date `json:"startDate"`
	EndDate    *openapi_types.Date `json:"endDate"`
}

// tripResponse is the wire shape of a trip, including the derived status.
type tripResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	StartPoint string             `json:"startPoint"`
	EndPoint   string             `json:"endPoint"`
	Stops      []string           `json:"stops"`
	StartDate  openapi_types.Date `json:"startDate"`
	EndDate    openapi_types.Date `json:"endDate"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// ListTrips handles GET /trips. It returns every trip owned by the caller,
// newest start date first, each with its current derived status.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	trips, err := s.trips.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]tripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, tripToResponse(trip))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req tripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.trips.Create(r.Context(), tripFromRequest(ownerID, uuid.Nil, req))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID", "trip")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), ownerID, tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripID}. The body carries the full new
// state of the trip; it replaces all editable fields.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID", "trip")
	if !ok {
		return
	}

	var req tripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.trips.Update(r.Context(), tripFromRequest(ownerID, tripID, req))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{tripID}. Activities under the trip are
// not removed; they become unreachable through the API once the trip is gone.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID", "trip")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), ownerID, tripID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// tripFromRequest builds the domain trip a create or update will persist.
// Zero dates are left as zero time values for the service to reject.
func tripFromRequest(ownerID, tripID uuid.UUID, req tripRequest) domain.Trip {
	trip := domain.Trip{
		ID:         tripID,
		OwnerID:    ownerID,
		Title:      req.Title,
		StartPoint: req.StartPoint,
		EndPoint:   req.EndPoint,
		Stops:      req.Stops,
	}
	if req.StartDate != nil {
		trip.StartDate = req.StartDate.Time
	}
	if req.EndDate != nil {
		trip.EndDate = req.EndDate.Time
	}
	return trip
}

// tripToResponse converts a domain.Trip into its wire shape.
func tripToResponse(t domain.Trip) tripResponse {
	stops := t.Stops
	if stops == nil {
		stops = []string{}
	}
	return tripResponse{
		ID:         t.ID.String(),
		Title:      t.Title,
		StartPoint: t.StartPoint,
		EndPoint:   t.EndPoint,
		Stops:      stops,
		StartDate:  openapi_types.Date{Time: t.StartDate},
		EndDate:    openapi_types.Date{Time: t.EndDate},
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// requestUserID pulls the authenticated user from the request context.
// The auth middleware guarantees it is present on guarded routes; the
// fallback 401 covers handlers mounted without the middleware in tests.
func requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized,
			errorResponse{errorDetail{Code: "unauthorized", Message: "authentication required"}})
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a UUID path parameter. A malformed ID is reported as the
// named resource not being found, since no resource can have that ID.
func pathUUID(w http.ResponseWriter, r *http.Request, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		notFoundMessage(w, resource+" not found")
		return uuid.Nil, false
	}
	return id, true
}
