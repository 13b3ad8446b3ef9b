package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

const (
	maxErrorBody     = 4 << 10
	photoField       = "photo"
	defaultPhotoName = "photo.jpg"
	defaultPhotoType = "image/jpeg"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewClient returns a DirectoryClient for the backend at baseURL. A nil
// httpClient gets a client with a 15s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) ports.DirectoryClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger,
	}
}

func (c *Client) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	var dtos []venueDTO
	if err := c.doJSON(ctx, http.MethodGet, "/venues", nil, &dtos); err != nil {
		return nil, err
	}

	venues := make([]domain.Venue, 0, len(dtos))
	for i := range dtos {
		v, err := c.finishVenue(&dtos[i])
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, nil
}

func (c *Client) GetVenue(ctx context.Context, id domain.VenueID) (*domain.Venue, error) {
	var dto venueDTO
	if err := c.doJSON(ctx, http.MethodGet, venuePath(id), nil, &dto); err != nil {
		return nil, err
	}
	return c.venueResult(&dto)
}

func (c *Client) ListPhotos(ctx context.Context, venueID domain.VenueID) ([]domain.Photo, error) {
	var dtos []photoDTO
	if err := c.doJSON(ctx, http.MethodGet, venuePath(venueID)+"/photos", nil, &dtos); err != nil {
		return nil, err
	}

	photos := make([]domain.Photo, 0, len(dtos))
	for _, dto := range dtos {
		if err := c.validate.Struct(dto); err != nil {
			return nil, malformed(http.StatusOK, err)
		}
		photos = append(photos, dto.toDomain(venueID))
	}
	return photos, nil
}

func (c *Client) SubmitVote(ctx context.Context, venueID domain.VenueID, choice domain.VoteChoice) (*domain.Venue, error) {
	var dto venueDTO
	body := voteRequest{VenueID: wireID(venueID), VoteType: string(choice)}
	if err := c.doJSON(ctx, http.MethodPost, "/vote", body, &dto); err != nil {
		return nil, err
	}
	return c.venueResult(&dto)
}

func (c *Client) SetCover(ctx context.Context, venueID domain.VenueID, amount *float64) (*domain.Venue, error) {
	var dto venueDTO
	if err := c.doJSON(ctx, http.MethodPost, venuePath(venueID)+"/cover", coverRequest{Cover: amount}, &dto); err != nil {
		return nil, err
	}
	return c.venueResult(&dto)
}

func (c *Client) RecordCheckIn(ctx context.Context, venueID domain.VenueID) (*domain.Venue, error) {
	var dto venueDTO
	if err := c.doJSON(ctx, http.MethodPost, venuePath(venueID)+"/pop", nil, &dto); err != nil {
		return nil, err
	}
	return c.venueResult(&dto)
}

// UploadPhoto posts the image as multipart field "photo". Backends that
// answer with the refreshed list instead of the new photo yield a nil
// Photo and no error.
func (c *Client) UploadPhoto(ctx context.Context, venueID domain.VenueID, image domain.Image) (*domain.Photo, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := image.Filename
	if name == "" {
		name = defaultPhotoName
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = defaultPhotoType
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, photoField, name))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	status, raw, err := c.do(ctx, http.MethodPost, venuePath(venueID)+"/photos", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var dto photoDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, malformed(status, err)
	}
	if err := c.validate.Struct(dto); err != nil {
		return nil, malformed(status, err)
	}
	photo := dto.toDomain(venueID)
	return &photo, nil
}

func (c *Client) venueResult(dto *venueDTO) (*domain.Venue, error) {
	v, err := c.finishVenue(dto)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) finishVenue(dto *venueDTO) (domain.Venue, error) {
	if err := dto.parseCover(); err != nil {
		return domain.Venue{}, malformed(http.StatusOK, err)
	}
	if err := c.validate.Struct(dto); err != nil {
		return domain.Venue{}, malformed(http.StatusOK, err)
	}
	return dto.toDomain(), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	status, raw, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return malformed(status, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return 0, nil, fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status_code", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil, domain.ErrVenueNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil, &domain.ServerError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	return resp.StatusCode, raw, nil
}

func venuePath(id domain.VenueID) string {
	return "/venues/" + url.PathEscape(id.String())
}

func malformed(status int, err error) error {
	return &domain.ServerError{
		StatusCode: status,
		Message:    "malformed response: " + err.Error(),
	}
}
