package domain

import (
	"math"
	"strings"
)

type VenueID string

func ParseVenueID(s string) (VenueID, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "/?#") {
		return "", ErrInvalidVenueID
	}
	return VenueID(s), nil
}

func (id VenueID) String() string {
	return string(id)
}

type Venue struct {
	ID        VenueID  `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Upvotes   int64    `json:"upvotes"`
	Downvotes int64    `json:"downvotes"`
	Cover     *float64 `json:"cover"`
	Pop       int64    `json:"pop"`
}

// Rating is derived, never stored.
func (v Venue) Rating() int64 {
	return v.Upvotes - v.Downvotes
}

func (v Venue) HasCover() bool {
	return v.Cover != nil
}

// CoverPresets are the amounts offered by the cover picker. Any
// non-negative amount is accepted.
var CoverPresets = []float64{5, 10, 15, 20}

func ValidateCover(amount *float64) error {
	if amount == nil {
		return nil
	}
	if *amount < 0 || math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return ErrInvalidCover
	}
	return nil
}
