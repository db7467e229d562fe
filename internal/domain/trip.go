// Package domain contains the core data types for the VagaRoute API.
// This package has no dependencies beyond uuid and is imported by every
// other internal package (repo, service, feed, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a planned journey from a start point to an end point,
// with zero or more intermediate stops in route order.
// A trip is the top-level aggregate; activities belong to a trip.
type Trip struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Title      string
	StartPoint string
	EndPoint   string
	// Stops are free-text waypoints; slice order is route order.
	Stops     []string
	StartDate time.Time
	EndDate   time.Time
	// Status is derived at read time via ClassifyTrip, never persisted.
	Status    TripStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
