package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ActivityType is the closed set of activity categories.
type ActivityType string

const (
	ActivityFlight     ActivityType = "flight"
	ActivityHotel      ActivityType = "hotel"
	ActivityRestaurant ActivityType = "restaurant"
	ActivityCustom     ActivityType = "custom"
)

// ParseActivityType validates a wire value against the closed set.
// An empty string defaults to ActivityCustom; anything else unrecognized
// is a validation error so bad data cannot enter through the API.
func ParseActivityType(s string) (ActivityType, error) {
	switch ActivityType(s) {
	case ActivityFlight, ActivityHotel, ActivityRestaurant, ActivityCustom:
		return ActivityType(s), nil
	case "":
		return ActivityCustom, nil
	}
	return "", fmt.Errorf("%w: unknown activity type %q", ErrValidation, s)
}

// Location is an optional place attached to an activity.
// Coordinates are metadata from the geocoder and may be absent.
type Location struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// Activity is a scheduled event in a trip's timeline.
// StartTime and EndTime are "HH:MM" 24-hour strings; lexicographic order
// on them matches chronological order, which the timeline sort relies on.
type Activity struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	Title     string
	Type      ActivityType
	Date      time.Time // day granularity
	StartTime string
	EndTime   string // optional, empty when open-ended
	Location  *Location
	Notes     string
	// Order is a manual secondary sort key among activities sharing the
	// same Date and StartTime. Assigned as the activity count at creation;
	// gaps after deletes are tolerated.
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortActivities orders a timeline in place by
// (date asc, startTime asc, order asc), with creation time as the final
// tiebreak. Every snapshot handed to subscribers goes through this.
func SortActivities(list []Activity) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
