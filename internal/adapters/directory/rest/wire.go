package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// flexibleID accepts both numeric and string ids.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

type venueDTO struct {
	ID        flexibleID      `json:"id" validate:"required"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Upvotes   int64           `json:"upvotes" validate:"gte=0"`
	Downvotes int64           `json:"downvotes" validate:"gte=0"`
	Pop       int64           `json:"pop" validate:"gte=0"`
	RawCover  json.RawMessage `json:"cover"`
	Cover     *float64        `json:"-" validate:"omitnil,gte=0"`
}

// parseCover accepts null, a number, or a numeric string ("" means unset).
func (d *venueDTO) parseCover() error {
	raw := bytes.TrimSpace(d.RawCover)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		d.Cover = nil
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
		if s == "" {
			d.Cover = nil
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid cover %q: %w", s, err)
		}
		d.Cover = &f
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("invalid cover: %w", err)
	}
	d.Cover = &f
	return nil
}

func (d venueDTO) toDomain() domain.Venue {
	return domain.Venue{
		ID:        domain.VenueID(d.ID),
		Name:      d.Name,
		Type:      d.Type,
		Upvotes:   d.Upvotes,
		Downvotes: d.Downvotes,
		Cover:     d.Cover,
		Pop:       d.Pop,
	}
}

type photoDTO struct {
	ID      flexibleID `json:"id" validate:"required"`
	VenueID flexibleID `json:"venueId"`
	URL     string     `json:"url" validate:"required"`
}

func (d photoDTO) toDomain(venueID domain.VenueID) domain.Photo {
	owner := domain.VenueID(d.VenueID)
	if owner == "" {
		owner = venueID
	}
	return domain.Photo{
		ID:      string(d.ID),
		VenueID: owner,
		URL:     d.URL,
	}
}

type voteRequest struct {
	VenueID  json.RawMessage `json:"venueId"`
	VoteType string          `json:"voteType"`
}

type coverRequest struct {
	Cover *float64 `json:"cover"`
}

// wireID sends canonical integer ids as JSON numbers, matching the
// backend's own encoding. Anything else, "007" included, goes as a string.
func wireID(id domain.VenueID) json.RawMessage {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return json.RawMessage(id)
	}
	b, _ := json.Marshal(string(id))
	return b
}
