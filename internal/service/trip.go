// Package service contains the business logic for the VagaRoute API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
// The clock is injected so tests can pin "now" and watch a trip's derived
// status flip from Upcoming to Completed without any write.
type TripService struct {
	repo repo.TripRepo
	now  func() time.Time
}

// NewTripService constructs a TripService backed by the provided TripRepo.
// Pass time.Now as the clock in production.
func NewTripService(r repo.TripRepo, now func() time.Time) *TripService {
	return &TripService{repo: r, now: now}
}

// Create validates and persists a new trip for the given owner.
// Returns domain.ErrValidation if a required field is missing.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return s.annotate(result), nil
}

// GetByID returns a single trip by ID, scoped to the owner.
// Returns domain.ErrNotFound if the trip does not exist for that owner.
func (s *TripService) GetByID(ctx context.Context, ownerID, tripID uuid.UUID) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, ownerID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return s.annotate(result), nil
}

// List returns all trips owned by ownerID, each annotated with a freshly
// computed status. Always returns a non-nil slice so callers can range over it.
func (s *TripService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	for i := range trips {
		trips[i] = s.annotate(trips[i])
	}
	return trips, nil
}

// Update validates and overwrites the mutable fields of an existing trip.
// Returns domain.ErrValidation for invalid input, domain.ErrNotFound if the
// trip does not exist for its owner.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return s.annotate(result), nil
}

// Delete removes a trip by ID, scoped to the owner.
// The trip's activities are left untouched (no cascade).
func (s *TripService) Delete(ctx context.Context, ownerID, tripID uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// annotate stamps the derived status onto a trip using the service clock.
func (s *TripService) annotate(trip domain.Trip) domain.Trip {
	trip.Status = domain.ClassifyTrip(trip.EndDate, s.now())
	return trip
}

// validateTrip enforces the rules common to Create and Update:
// title, startPoint, endPoint, startDate, and endDate are all required.
// endDate >= startDate is the caller's responsibility and is not checked;
// a trip created the "wrong way round" simply classifies as Completed.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(trip.StartPoint) == "" {
		return fmt.Errorf("%w: startPoint is required", domain.ErrValidation)
	}
	if strings.TrimSpace(trip.EndPoint) == "" {
		return fmt.Errorf("%w: endPoint is required", domain.ErrValidation)
	}
	if trip.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", domain.ErrValidation)
	}
	if trip.EndDate.IsZero() {
		return fmt.Errorf("%w: endDate is required", domain.ErrValidation)
	}
	return nil
}
