package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork           = errors.New("network unreachable")
	ErrServer            = errors.New("server error")
	ErrVenueNotFound     = errors.New("venue not found")
	ErrAlreadyActed      = errors.New("action already performed on this venue")
	ErrVoteRequired      = errors.New("vote required before uploading a photo")
	ErrCaptureDenied     = errors.New("no image was captured")
	ErrActionInFlight    = errors.New("action already in progress")
	ErrLedgerUnavailable = errors.New("action ledger unavailable")
	ErrInvalidVoteChoice = errors.New("invalid vote choice")
	ErrInvalidCover      = errors.New("cover charge must be a non-negative number")
	ErrInvalidVenueID    = errors.New("invalid venue id")
)

// ServerError is returned for any non-success status other than 404.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: status %d: %s", e.StatusCode, e.Message)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}
