package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

const (
	maxPhotoBytes = 15 << 20
	photoField    = "photo"
)

type VenueHandler struct {
	service  ports.VenueService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewVenueHandler(service ports.VenueService, logger zerolog.Logger) *VenueHandler {
	return &VenueHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

type voteRequest struct {
	VenueID  json.RawMessage `json:"venueId"`
	VoteType string          `json:"voteType"`
}

type voteInput struct {
	VenueID  string `validate:"required"`
	VoteType string `validate:"required,oneof=upvote downvote"`
}

type coverRequest struct {
	Cover *float64 `json:"cover" validate:"omitnil,gte=0"`
}

func (h *VenueHandler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.service.ListVenues(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, venues)
}

func (h *VenueHandler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venue, err := h.service.GetVenue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, venue)
}

func (h *VenueHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := h.service.ListPhotos(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, photos)
}

func (h *VenueHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := readJSON(w, r, &req); err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := voteInput{VenueID: rawID(req.VenueID), VoteType: req.VoteType}
	if err := h.validate.Struct(in); err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	venueID, err := domain.ParseVenueID(in.VenueID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	venue, err := h.service.Vote(r.Context(), ports.VoteInput{
		VenueID: venueID,
		Choice:  domain.VoteChoice(in.VoteType),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, venue)
}

func (h *VenueHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	var req coverRequest
	if err := readJSON(w, r, &req); err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, domain.ErrInvalidCover.Error())
		return
	}

	venue, err := h.service.SetCover(r.Context(), chi.URLParam(r, "id"), req.Cover)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, venue)
}

func (h *VenueHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	venue, err := h.service.CheckIn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, venue)
}

func (h *VenueHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile(photoField)
	if err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, "missing photo field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		_ = writeJSONError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	photo, err := h.service.AddPhoto(r.Context(), chi.URLParam(r, "id"), domain.Image{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	_ = writeJSON(w, http.StatusCreated, photo)
}

func (h *VenueHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrVenueNotFound):
		_ = writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidVenueID),
		errors.Is(err, domain.ErrInvalidVoteChoice),
		errors.Is(err, domain.ErrInvalidCover),
		errors.Is(err, domain.ErrCaptureDenied):
		_ = writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		_ = writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
