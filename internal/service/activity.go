package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/repo"
)

// ActivityPublisher receives the full sorted timeline of a trip after every
// successful mutation. feed.Hub satisfies this.
type ActivityPublisher interface {
	Publish(tripID uuid.UUID, snapshot []domain.Activity)
}

// ActivityPatch carries a partial update. Nil fields are left unchanged;
// in particular Order only moves when the caller supplies it explicitly.
type ActivityPatch struct {
	Title     *string
	Type      *domain.ActivityType
	Date      *time.Time
	StartTime *string
	EndTime   *string
	Location  *domain.Location
	Notes     *string
	Order     *int
}

// ActivityService implements business logic for a trip's activity timeline.
// It holds the trip repo because every operation first verifies the parent
// trip exists and belongs to the caller.
type ActivityService struct {
	trips      repo.TripRepo
	activities repo.ActivityRepo
	publisher  ActivityPublisher
}

// NewActivityService constructs an ActivityService backed by the provided
// repos. The publisher is notified with a fresh snapshot after every
// successful create, update, or delete.
func NewActivityService(trips repo.TripRepo, activities repo.ActivityRepo, publisher ActivityPublisher) *ActivityService {
	return &ActivityService{trips: trips, activities: activities, publisher: publisher}
}

// Create validates the activity, verifies the parent trip belongs to the
// owner, then persists. When order is nil the activity is appended: its
// order becomes the count of existing activities at creation time.
// Returns domain.ErrValidation on invalid input, domain.ErrNotFound if the
// parent trip does not exist for that owner.
func (s *ActivityService) Create(ctx context.Context, ownerID uuid.UUID, activity domain.Activity, order *int) (domain.Activity, error) {
	if _, err := s.trips.GetByID(ctx, ownerID, activity.TripID); err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	if err := validateActivity(activity); err != nil {
		return domain.Activity{}, err
	}

	if order != nil {
		activity.Order = *order
	} else {
		count, err := s.activities.CountByTrip(ctx, activity.TripID)
		if err != nil {
			return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
		}
		activity.Order = count
	}

	result, err := s.activities.Create(ctx, activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}

	s.publish(ctx, activity.TripID)
	return result, nil
}

// ListByTrip returns a trip's timeline sorted by (date, startTime, order).
// Returns domain.ErrNotFound if the trip does not exist for that owner.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ActivityService) ListByTrip(ctx context.Context, ownerID, tripID uuid.UUID) ([]domain.Activity, error) {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return nil, fmt.Errorf("service.ActivityService.ListByTrip: %w", err)
	}
	return s.snapshot(ctx, tripID)
}

// Update applies a partial patch to an existing activity and persists the
// merged record. Returns domain.ErrNotFound if the activity does not exist
// under the trip, domain.ErrValidation if the merged record is invalid.
func (s *ActivityService) Update(ctx context.Context, ownerID, tripID, activityID uuid.UUID, patch ActivityPatch) (domain.Activity, error) {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}

	activity, err := s.activities.GetByID(ctx, tripID, activityID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}

	applyPatch(&activity, patch)
	if err := validateActivity(activity); err != nil {
		return domain.Activity{}, err
	}

	result, err := s.activities.Update(ctx, activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}

	s.publish(ctx, tripID)
	return result, nil
}

// Delete removes one activity. Remaining order values are not renumbered;
// the timeline sort tolerates gaps. Returns domain.ErrNotFound if the
// activity does not exist under the trip (including an ID that belongs to
// a different trip), in which case the timeline is unchanged.
func (s *ActivityService) Delete(ctx context.Context, ownerID, tripID, activityID uuid.UUID) error {
	if _, err := s.trips.GetByID(ctx, ownerID, tripID); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	if err := s.activities.Delete(ctx, tripID, activityID); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	s.publish(ctx, tripID)
	return nil
}

// snapshot loads and sorts the current timeline for a trip.
func (s *ActivityService) snapshot(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	list, err := s.activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService: snapshot: %w", err)
	}
	if list == nil {
		list = []domain.Activity{}
	}
	// The repo orders in SQL; sorting again here keeps the invariant in one
	// place regardless of which repo implementation is wired in.
	domain.SortActivities(list)
	return list, nil
}

// publish pushes the post-mutation timeline to subscribers. It runs after
// the write has committed, so the next snapshot a subscriber receives is
// guaranteed to reflect the mutation. A failed snapshot re-read is logged
// rather than returned: the mutation itself succeeded and the caller must
// see that, not a spurious failure.
func (s *ActivityService) publish(ctx context.Context, tripID uuid.UUID) {
	snap, err := s.snapshot(ctx, tripID)
	if err != nil {
		slog.ErrorContext(ctx, "skipping timeline publish", "trip_id", tripID, "error", err)
		return
	}
	s.publisher.Publish(tripID, snap)
}

// applyPatch merges non-nil patch fields into the activity.
func applyPatch(a *domain.Activity, p ActivityPatch) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.StartTime != nil {
		a.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		a.EndTime = *p.EndTime
	}
	if p.Location != nil {
		a.Location = p.Location
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.Order != nil {
		a.Order = *p.Order
	}
}

// validateActivity enforces the rules common to Create and Update:
//   - Title must be non-empty (whitespace-only titles are rejected).
//   - Date is required.
//   - StartTime is required and must be a valid HH:MM value.
//   - EndTime, when present, must be valid and must not precede StartTime.
func validateActivity(a domain.Activity) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if a.StartTime == "" {
		return fmt.Errorf("%w: startTime is required", domain.ErrValidation)
	}
	if !validClock(a.StartTime) {
		return fmt.Errorf("%w: startTime must be HH:MM", domain.ErrValidation)
	}
	if a.EndTime != "" {
		if !validClock(a.EndTime) {
			return fmt.Errorf("%w: endTime must be HH:MM", domain.ErrValidation)
		}
		if a.EndTime < a.StartTime {
			return fmt.Errorf("%w: endTime must not precede startTime", domain.ErrValidation)
		}
	}
	return nil
}

// validClock reports whether s is a 24-hour "HH:MM" value.
// HH:MM strings compare correctly as plain strings, which the timeline
// sort depends on.
func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}
