package domain

import "time"

// VenueUpdate is announced by the backend after every confirmed mutation.
type VenueUpdate struct {
	Action     ActionKind `json:"action"`
	Venue      Venue      `json:"venue"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// ActivityStat counts confirmed actions of one kind on one venue.
type ActivityStat struct {
	VenueID    VenueID    `json:"venueId"`
	Action     ActionKind `json:"action"`
	Count      int64      `json:"count"`
	LastSeenAt time.Time  `json:"lastSeenAt"`
}
