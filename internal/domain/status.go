package domain

import "time"

// TripStatus is the derived classification of a trip relative to now.
type TripStatus string

const (
	StatusUpcoming  TripStatus = "Upcoming"
	StatusCompleted TripStatus = "Completed"
)

// ClassifyTrip derives a trip's status from its end date and the current
// time: Upcoming iff endDate >= now, Completed otherwise. The boundary
// endDate == now counts as Upcoming.
//
// This is the only place the rule lives. Services annotate every trip they
// return through this function so lists and detail views can never disagree.
func ClassifyTrip(endDate, now time.Time) TripStatus {
	if endDate.Before(now) {
		return StatusCompleted
	}
	return StatusUpcoming
}
