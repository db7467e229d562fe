package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagaroute/backend/internal/domain"
	"github.com/vagaroute/backend/internal/repo"
	"github.com/vagaroute/backend/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field — set only the ones your test needs.
type mockTripRepo struct {
	create      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID     func(ctx context.Context, ownerID, tripID uuid.UUID) (domain.Trip, error)
	listByOwner func(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error)
	update      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete      func(ctx context.Context, ownerID, tripID uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, ownerID, tripID uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, ownerID, tripID)
}
func (m *mockTripRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	return m.listByOwner(ctx, ownerID)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, ownerID, tripID uuid.UUID) error {
	return m.delete(ctx, ownerID, tripID)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// ---- helpers ---------------------------------------------------------------

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func validTrip() domain.Trip {
	return domain.Trip{
		OwnerID:    uuid.New(),
		Title:      "Ella Adventure",
		StartPoint: "Colombo",
		EndPoint:   "Ella",
		Stops:      []string{"Kandy", "Nuwara Eliya"},
		StartDate:  testNow.AddDate(0, 0, 7),
		EndDate:    testNow.AddDate(0, 0, 10),
	}
}

func echoRepo() *mockTripRepo {
	// A repo that echoes whatever it receives back — useful for Create/Update
	// tests that only care about validation, not what the DB returns.
	return &mockTripRepo{
		create: func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
		update: func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
	}
}

// ---- Create tests ----------------------------------------------------------

func TestTripService_Create_Valid(t *testing.T) {
	svc := service.NewTripService(echoRepo(), fixedClock)

	got, err := svc.Create(context.Background(), validTrip())

	require.NoError(t, err)
	assert.Equal(t, "Ella Adventure", got.Title)
	assert.Equal(t, domain.StatusUpcoming, got.Status)
}

func TestTripService_Create_MissingTitle(t *testing.T) {
	svc := service.NewTripService(echoRepo(), fixedClock)

	trip := validTrip()
	trip.Title = "   " // whitespace-only should be treated as empty

	_, err := svc.Create(context.Background(), trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_MissingEndpoints(t *testing.T) {
	svc := service.NewTripService(echoRepo(), fixedClock)

	for _, mutate := range []func(*domain.Trip){
		func(tr *domain.Trip) { tr.StartPoint = "" },
		func(tr *domain.Trip) { tr.EndPoint = "" },
	} {
		trip := validTrip()
		mutate(&trip)

		_, err := svc.Create(context.Background(), trip)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestTripService_Create_MissingDates(t *testing.T) {
	svc := service.NewTripService(echoRepo(), fixedClock)

	trip := validTrip()
	trip.StartDate = time.Time{}

	_, err := svc.Create(context.Background(), trip)
	assert.ErrorIs(t, err, domain.ErrValidation)

	trip = validTrip()
	trip.EndDate = time.Time{}

	_, err = svc.Create(context.Background(), trip)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_NoStopsIsValid(t *testing.T) {
	svc := service.NewTripService(echoRepo(), fixedClock)

	trip := validTrip()
	trip.Stops = nil

	_, err := svc.Create(context.Background(), trip)

	assert.NoError(t, err)
}

func TestTripService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := &mockTripRepo{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, repoErr
		},
	}
	svc := service.NewTripService(r, fixedClock)

	_, err := svc.Create(context.Background(), validTrip())

	// The service should propagate repo errors unchanged.
	assert.ErrorIs(t, err, repoErr)
}

// ---- status derivation -----------------------------------------------------

func TestTripService_StatusFlipsAsClockAdvances(t *testing.T) {
	// Same stored record, no writes: only the clock moves.
	stored := validTrip()
	stored.ID = uuid.New()

	r := &mockTripRepo{
		listByOwner: func(_ context.Context, _ uuid.UUID) ([]domain.Trip, error) {
			return []domain.Trip{stored}, nil
		},
	}

	now := testNow
	svc := service.NewTripService(r, func() time.Time { return now })

	got, err := svc.List(context.Background(), stored.OwnerID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusUpcoming, got[0].Status)

	now = stored.EndDate.AddDate(0, 0, 1)

	got, err = svc.List(context.Background(), stored.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got[0].Status)
}

func TestTripService_GetByID_AnnotatesStatus(t *testing.T) {
	stored := validTrip()
	stored.ID = uuid.New()
	stored.EndDate = testNow.AddDate(0, 0, -1) // ended yesterday

	r := &mockTripRepo{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return stored, nil
		},
	}
	svc := service.NewTripService(r, fixedClock)

	got, err := svc.GetByID(context.Background(), stored.OwnerID, stored.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

// ---- GetByID / List --------------------------------------------------------

func TestTripService_GetByID_NotFound(t *testing.T) {
	r := &mockTripRepo{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewTripService(r, fixedClock)

	_, err := svc.GetByID(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_List_Empty(t *testing.T) {
	r := &mockTripRepo{
		listByOwner: func(_ context.Context, _ uuid.UUID) ([]domain.Trip, error) { return nil, nil },
	}
	svc := service.NewTripService(r, fixedClock)

	got, err := svc.List(context.Background(), uuid.New())

	require.NoError(t, err)
	// Should return an empty slice, not nil — callers can safely range over it.
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- Update / Delete -------------------------------------------------------

func TestTripService_Update_Valid(t *testing.T) {
	svc := service.NewTripService(echoRepo(), fixedClock)

	trip := validTrip()
	trip.ID = uuid.New()
	trip.Title = "Renamed Trip"

	got, err := svc.Update(context.Background(), trip)

	require.NoError(t, err)
	assert.Equal(t, "Renamed Trip", got.Title)
}

func TestTripService_Update_MissingTitle(t *testing.T) {
	svc := service.NewTripService(echoRepo(), fixedClock)

	trip := validTrip()
	trip.Title = ""

	_, err := svc.Update(context.Background(), trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Delete_OK(t *testing.T) {
	r := &mockTripRepo{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return nil },
	}
	svc := service.NewTripService(r, fixedClock)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())

	assert.NoError(t, err)
}

func TestTripService_Delete_NotFound(t *testing.T) {
	r := &mockTripRepo{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return domain.ErrNotFound },
	}
	svc := service.NewTripService(r, fixedClock)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
