package handler

import (
	"encoding/json"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/service"
)

// activityRequest is the body of POST /trips/{tripID}/activities.
type activityRequest struct {
	Title     string              `json:"title"`
	Type      string              `json:"type"`
	Date      *openapi_types.Date `json:"date"`
	StartTime string              `json:"startTime"`
	EndTime   string              `json:"endTime"`
	Location  *domain.Location    `json:"location"`
	Notes     string              `json:"notes"`
	// Order is optional; when omitted the activity is appended to the
	// timeline.
	Order *int `json:"order"`
}

// activityPatchRequest is the body of PATCH .../activities/{activityID}.
// Absent fields are left unchanged.
type activityPatchRequest struct {
	Title     *string             `json:"title"`
	Type      *string             `json:"type"`
	Date      *openapi_types.Date `json:"date"`
	StartTime *string             `json:"startTime"`
	EndTime   *string             `json:"endTime"`
	Location  *domain.Location    `json:"location"`
	Notes     *string             `json:"notes"`
	Order     *int                `json:"order"`
}

// activityResponse is the wire shape of a timeline entry.
type activityResponse struct {
	ID        string             `json:"id"`
	TripID    string             `json:"tripId"`
	Title     string             `json:"title"`
	Type      string             `json:"type"`
	Date      openapi_types.Date `json:"date"`
	StartTime string             `json:"startTime"`
	EndTime   string             `json:"endTime,omitempty"`
	Location  *domain.Location   `json:"location,omitempty"`
	Notes     string             `json:"notes,omitempty"`
	Order     int                `json:"order"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ListActivities handles GET /trips/{tripID}/activities. The timeline comes
// back sorted by (date, startTime, order).
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID", "trip")
	if !ok {
		return
	}

	list, err := s.activities.ListByTrip(r.Context(), ownerID, tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activitiesToResponse(list))
}

// CreateActivity handles POST /trips/{tripID}/activities.
func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID", "trip")
	if !ok {
		return
	}

	var req activityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	activityType, err := domain.ParseActivityType(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}

	activity := domain.Activity{
		TripID:    tripID,
		Title:     req.Title,
		Type:      activityType,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		Notes:     req.Notes,
	}
	if req.Date != nil {
		activity.Date = req.Date.Time
	}

	result, err := s.activities.Create(r.Context(), ownerID, activity, req.Order)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, activityToResponse(result))
}

// UpdateActivity handles PATCH /trips/{tripID}/activities/{activityID}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID", "trip")
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID", "activity")
	if !ok {
		return
	}

	var req activityPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := service.ActivityPatch{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		Notes:     req.Notes,
		Order:     req.Order,
	}
	if req.Type != nil {
		activityType, err := domain.ParseActivityType(*req.Type)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.Type = &activityType
	}
	if req.Date != nil {
		patch.Date = &req.Date.Time
	}

	result, err := s.activities.Update(r.Context(), ownerID, tripID, activityID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activityToResponse(result))
}

// DeleteActivity handles DELETE /trips/{tripID}/activities/{activityID}.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID", "trip")
	if !ok {
		return
	}
	activityID, ok := pathUUID(w, r, "activityID", "activity")
	if !ok {
		return
	}

	if err := s.activities.Delete(r.Context(), ownerID, tripID, activityID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StreamActivities handles GET /trips/{tripID}/activities/stream.
// It serves the trip's timeline over server-sent events: one event with the
// current snapshot immediately, then one event per mutation until the client
// disconnects. A slow client may skip intermediate snapshots but always
// receives the latest one.
func (s *Server) StreamActivities(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "tripID", "trip")
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{errorDetail{Code: "internal_error", Message: "streaming unsupported"}})
		return
	}

	// Subscribe before fetching the initial snapshot so a mutation that
	// publishes in between sits buffered in the channel and is delivered
	// right after the initial event. The worst case is a duplicate snapshot,
	// never a lost one.
	sub := s.subs.Subscribe(tripID)
	defer sub.Close()

	// Authorizes the caller and doubles as the initial snapshot.
	initial, err := s.activities.ListByTrip(r.Context(), ownerID, tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, initial); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, open := <-sub.C:
			if !open {
				return
			}
			if err := writeEvent(w, snapshot); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes one server-sent event whose data is the JSON-encoded
// timeline snapshot.
func writeEvent(w http.ResponseWriter, snapshot []domain.Activity) error {
	data, err := json.Marshal(activitiesToResponse(snapshot))
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}

// activityToResponse converts a domain.Activity into its wire shape.
func activityToResponse(a domain.Activity) activityResponse {
	return activityResponse{
		ID:        a.ID.String(),
		TripID:    a.TripID.String(),
		Title:     a.Title,
		Type:      string(a.Type),
		Date:      openapi_types.Date{Time: a.Date},
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Location:  a.Location,
		Notes:     a.Notes,
		Order:     a.Order,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// activitiesToResponse converts a timeline, preserving order. Always returns
// a non-nil slice so an empty timeline serializes as [].
func activitiesToResponse(list []domain.Activity) []activityResponse {
	out := make([]activityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, activityToResponse(a))
	}
	return out
}
