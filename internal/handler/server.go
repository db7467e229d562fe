// Package handler implements the HTTP layer of the VagaRoute API.
// All handlers are methods on Server; methods are split into domain-specific
// files (trip.go, activity.go, etc.) but share the same struct so they can
// access its dependencies. Request/response types live next to the handlers
// that use them.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/feed"
	"github.com/vagaroute/backend/internal/geo"
	"github.com/vagaroute/backend/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, ownerID, tripID uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, ownerID, tripID uuid.UUID) error
}

// ActivityServicer defines the business operations the activity handlers
// depend on.
type ActivityServicer interface {
	Create(ctx context.Context, ownerID uuid.UUID, activity domain.Activity, order *int) (domain.Activity, error)
	ListByTrip(ctx context.Context, ownerID, tripID uuid.UUID) ([]domain.Activity, error)
	Update(ctx context.Context, ownerID, tripID, activityID uuid.UUID, patch service.ActivityPatch) (domain.Activity, error)
	Delete(ctx context.Context, ownerID, tripID, activityID uuid.UUID) error
}

// AuthServicer defines the account operations the auth and profile handlers
// depend on.
type AuthServicer interface {
	Register(ctx context.Context, name, email, password string) (domain.User, string, error)
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	Profile(ctx context.Context, userID uuid.UUID) (domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, photoURL string) (domain.User, error)
}

// Subscriber hands out live activity-timeline subscriptions. feed.Hub
// satisfies this.
type Subscriber interface {
	Subscribe(tripID uuid.UUID) *feed.Subscription
}

// Geocoder resolves free-text place queries. geo.Geocoder satisfies this.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]geo.Place, error)
}

// DirectionsClient computes driving routes. geo.Router satisfies this.
type DirectionsClient interface {
	Directions(ctx context.Context, coordinates [][2]float64) (geo.Route, error)
}

// PhotoUploader stores a profile photo and returns its public URL.
// images.Uploader satisfies this.
type PhotoUploader interface {
	Upload(ctx context.Context, filename string, image io.Reader) (string, error)
}

// Server implements all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	trips      TripServicer
	activities ActivityServicer
	accounts   AuthServicer
	subs       Subscriber
	geocoder   Geocoder
	directions DirectionsClient
	photos     PhotoUploader
}

// NewServer constructs the Server with all its dependencies.
func NewServer(
	trips TripServicer,
	activities ActivityServicer,
	accounts AuthServicer,
	subs Subscriber,
	geocoder Geocoder,
	directions DirectionsClient,
	photos PhotoUploader,
) *Server {
	return &Server{
		trips:      trips,
		activities: activities,
		accounts:   accounts,
		subs:       subs,
		geocoder:   geocoder,
		directions: directions,
		photos:     photos,
	}
}

// Routes mounts every endpoint on a chi router. requireAuth guards
// everything except health and the two auth endpoints.
func (s *Server) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Post("/auth/register", s.Register)
	r.Post("/auth/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/trips", s.ListTrips)
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/{tripID}", s.GetTrip)
		r.Put("/trips/{tripID}", s.UpdateTrip)
		r.Delete("/trips/{tripID}", s.DeleteTrip)

		r.Get("/trips/{tripID}/activities", s.ListActivities)
		r.Post("/trips/{tripID}/activities", s.CreateActivity)
		r.Get("/trips/{tripID}/activities/stream", s.StreamActivities)
		r.Patch("/trips/{tripID}/activities/{activityID}", s.UpdateActivity)
		r.Delete("/trips/{tripID}/activities/{activityID}", s.DeleteActivity)

		r.Get("/places/search", s.SearchPlaces)
		r.Post("/places/directions", s.GetDirections)

		r.Get("/profile", s.GetProfile)
		r.Put("/profile", s.UpdateProfile)
		r.Post("/profile/photo", s.UploadProfilePhoto)
	})

	return r
}
