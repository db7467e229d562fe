package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vagaroute/backend/internal/domain"
)

// ActivityRepo defines the persistence operations for Activities.
// All single-record operations are scoped by tripID: an activity ID paired
// with the wrong trip behaves like a missing record.
type ActivityRepo interface {
	// Create inserts a new activity and returns the persisted record.
	Create(ctx context.Context, activity domain.Activity) (domain.Activity, error)

	// GetByID retrieves a single activity by its UUID, scoped to tripID.
	// Returns domain.ErrNotFound if no such activity exists under that trip.
	GetByID(ctx context.Context, tripID, activityID uuid.UUID) (domain.Activity, error)

	// ListByTrip returns all activities for a trip in timeline order:
	// (date, start_time, ord) ascending, creation time as final tiebreak.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)

	// CountByTrip returns the number of activities under a trip.
	// Used to assign the default append-position order for new activities.
	CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error)

	// Update overwrites the mutable fields of an activity, scoped to tripID.
	// Returns domain.ErrNotFound if no such activity exists under that trip.
	Update(ctx context.Context, activity domain.Activity) (domain.Activity, error)

	// Delete removes an activity by ID, scoped to tripID. Remaining ord
	// values are not renumbered; the timeline sort tolerates gaps.
	// Returns domain.ErrNotFound if no such activity exists under that trip.
	Delete(ctx context.Context, tripID, activityID uuid.UUID) error
}

// pgActivityRepo is the Postgres implementation of ActivityRepo.
type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `id, trip_id, title, type, date, start_time, end_time,
	location_name, location_lat, location_lng, notes, ord, created_at, updated_at`

func (r *pgActivityRepo) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities (trip_id, title, type, date, start_time, end_time,
		                        location_name, location_lat, location_lng, notes, ord)
		VALUES (@trip_id, @title, @type, @date, @start_time, @end_time,
		        @location_name, @location_lat, @location_lng, @notes, @ord)
		RETURNING ` + activityColumns

	row := r.db.QueryRow(ctx, q, activityArgs(activity))
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) GetByID(ctx context.Context, tripID, activityID uuid.UUID) (domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": activityID, "trip_id": tripID})
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE trip_id = @trip_id
		ORDER BY date, start_time, ord, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: scan: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: rows: %w", err)
	}

	return activities, nil
}

func (r *pgActivityRepo) CountByTrip(ctx context.Context, tripID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM activities WHERE trip_id = @trip_id`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.ActivityRepo.CountByTrip: %w", err)
	}
	return n, nil
}

func (r *pgActivityRepo) Update(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	const q = `
		UPDATE activities
		SET title         = @title,
		    type          = @type,
		    date          = @date,
		    start_time    = @start_time,
		    end_time      = @end_time,
		    location_name = @location_name,
		    location_lat  = @location_lat,
		    location_lng  = @location_lng,
		    notes         = @notes,
		    ord           = @ord,
		    updated_at    = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + activityColumns

	args := activityArgs(activity)
	args["id"] = activity.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) Delete(ctx context.Context, tripID, activityID uuid.UUID) error {
	const q = `DELETE FROM activities WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": activityID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// activityArgs maps an activity's mutable fields to named SQL arguments.
// The three location columns collapse to NULL when no location is attached.
func activityArgs(a domain.Activity) pgx.NamedArgs {
	var (
		locName *string
		locLat  *float64
		locLng  *float64
	)
	if a.Location != nil {
		locName = &a.Location.Name
		locLat = a.Location.Lat
		locLng = a.Location.Lng
	}

	return pgx.NamedArgs{
		"trip_id":       a.TripID,
		"title":         a.Title,
		"type":          string(a.Type),
		"date":          a.Date,
		"start_time":    a.StartTime,
		"end_time":      a.EndTime,
		"location_name": locName,
		"location_lat":  locLat,
		"location_lng":  locLng,
		"notes":         a.Notes,
		"ord":           a.Order,
	}
}

// scanActivity maps a single database row into a domain.Activity.
// Rows written before type validation existed may carry an unknown type;
// those are coerced to custom on read so legacy data still renders.
func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a       domain.Activity
		id      pgtype.UUID
		tripID  pgtype.UUID
		typ     string
		date    pgtype.Date
		locName *string
		locLat  *float64
		locLng  *float64
	)

	err := s.Scan(&id, &tripID, &a.Title, &typ, &date, &a.StartTime, &a.EndTime,
		&locName, &locLat, &locLng, &a.Notes, &a.Order, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.TripID = uuid.UUID(tripID.Bytes)
	a.Date = date.Time

	parsed, err := domain.ParseActivityType(typ)
	if err != nil {
		parsed = domain.ActivityCustom
	}
	a.Type = parsed

	if locName != nil {
		a.Location = &domain.Location{Name: *locName, Lat: locLat, Lng: locLng}
	}

	return a, nil
}
