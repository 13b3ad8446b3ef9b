package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/vncsmyrnk/nightout/internal/adapters/handler/http"
	"github.com/vncsmyrnk/nightout/internal/adapters/repository/memory"
	memstorage "github.com/vncsmyrnk/nightout/internal/adapters/storage/memory"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
	"github.com/vncsmyrnk/nightout/internal/core/services"
)

// newBackend serves the reference backend over a seeded in-memory repository.
func newBackend(t *testing.T) (*httptest.Server, ports.DirectoryClient) {
	t.Helper()
	repo := memory.NewVenueRepository()
	require.NoError(t, repo.Create(context.Background(), &domain.Venue{Name: "Loft", Type: "Club", Upvotes: 10, Downvotes: 2, Pop: 5}))

	storage := memstorage.NewStorage("http://media.local")
	svc := services.NewVenueService(repo, repo, storage, nil, zerolog.Nop())
	server := httptest.NewServer(handler.NewHandler(handler.NewVenueHandler(svc, zerolog.Nop()), storage))
	t.Cleanup(server.Close)

	return server, NewClient(server.URL, server.Client(), zerolog.Nop())
}

func TestClient_AgainstReferenceBackend(t *testing.T) {
	ctx := context.Background()
	_, client := newBackend(t)

	venues, err := client.ListVenues(ctx)
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, domain.VenueID("1"), venues[0].ID)
	assert.Equal(t, "Loft", venues[0].Name)

	venue, err := client.GetVenue(ctx, "1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, venue.Pop)

	venue, err = client.SubmitVote(ctx, "1", domain.Upvote)
	require.NoError(t, err)
	assert.EqualValues(t, 11, venue.Upvotes)
	assert.EqualValues(t, 2, venue.Downvotes)

	venue, err = client.RecordCheckIn(ctx, "1")
	require.NoError(t, err)
	assert.EqualValues(t, 6, venue.Pop)

	ten := 10.0
	venue, err = client.SetCover(ctx, "1", &ten)
	require.NoError(t, err)
	require.NotNil(t, venue.Cover)
	assert.Equal(t, 10.0, *venue.Cover)

	venue, err = client.SetCover(ctx, "1", nil)
	require.NoError(t, err)
	assert.Nil(t, venue.Cover)

	photo, err := client.UploadPhoto(ctx, "1", domain.Image{Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}})
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, domain.VenueID("1"), photo.VenueID)

	photos, err := client.ListPhotos(ctx, "1")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, photo.URL, photos[0].URL)
}

func TestClient_ReferenceBackendErrors(t *testing.T) {
	ctx := context.Background()
	_, client := newBackend(t)

	_, err := client.GetVenue(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrVenueNotFound)

	_, err = client.RecordCheckIn(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrVenueNotFound)

	_, err = client.SubmitVote(ctx, "1", "sideways")
	require.ErrorIs(t, err, domain.ErrServer)
	var serverErr *domain.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadRequest, serverErr.StatusCode)

	negative := -3.0
	_, err = client.SetCover(ctx, "1", &negative)
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadRequest, serverErr.StatusCode)
}

func TestClient_DecodesBackendVariants(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /venues", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id": 3, "name": "Skyline", "type": "Rooftop", "upvotes": 1, "downvotes": 0, "cover": "$15", "pop": 0},
			{"id": "abc", "name": "Loft", "type": "Club", "upvotes": 10, "downvotes": 2, "cover": null, "pop": 5},
			{"id": 4, "name": "Den", "type": "Bar", "upvotes": 0, "downvotes": 0, "cover": "", "pop": 1},
			{"id": 5, "name": "Cellar", "type": "Bar", "upvotes": 0, "downvotes": 0, "cover": 7.5, "pop": 1}
		]`)
	})
	mux.HandleFunc("POST /vote", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `3`, string(body["venueId"]), "numeric ids are sent as numbers")
		assert.JSONEq(t, `"downvote"`, string(body["voteType"]))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		io.WriteString(w, `{"id": 3, "name": "Skyline", "upvotes": 1, "downvotes": 1, "pop": 0}`)
	})
	mux.HandleFunc("POST /venues/3/photos", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		io.WriteString(w, `[{"id": 1, "url": "https://cdn.example.com/1.jpg"}]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, nil, zerolog.Nop())
	ctx := context.Background()

	venues, err := client.ListVenues(ctx)
	require.NoError(t, err)
	require.Len(t, venues, 4)
	assert.Equal(t, domain.VenueID("3"), venues[0].ID)
	require.NotNil(t, venues[0].Cover)
	assert.Equal(t, 15.0, *venues[0].Cover)
	assert.Equal(t, domain.VenueID("abc"), venues[1].ID)
	assert.Nil(t, venues[1].Cover)
	assert.Nil(t, venues[2].Cover)
	require.NotNil(t, venues[3].Cover)
	assert.Equal(t, 7.5, *venues[3].Cover)

	venue, err := client.SubmitVote(ctx, "3", domain.Downvote)
	require.NoError(t, err)
	assert.EqualValues(t, 1, venue.Downvotes)

	photo, err := client.UploadPhoto(ctx, "3", domain.Image{Data: []byte("raw")})
	require.NoError(t, err)
	assert.Nil(t, photo, "a list response means the caller must refetch")
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, body: "no such venue", wantErr: domain.ErrVenueNotFound},
		{name: "server failure", status: http.StatusInternalServerError, body: "boom", wantErr: domain.ErrServer},
		{name: "bad gateway", status: http.StatusBadGateway, wantErr: domain.ErrServer},
		{name: "malformed body", status: http.StatusOK, body: `{"id":`, wantErr: domain.ErrServer},
		{name: "negative counter", status: http.StatusOK, body: `{"id": 1, "upvotes": -1}`, wantErr: domain.ErrServer},
		{name: "missing id", status: http.StatusOK, body: `{"name": "Loft"}`, wantErr: domain.ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(server.URL, nil, zerolog.Nop()).GetVenue(context.Background(), "1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_ServerErrorCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database is down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil, zerolog.Nop()).ListVenues(context.Background())

	var serverErr *domain.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusServiceUnavailable, serverErr.StatusCode)
	assert.Equal(t, "database is down", serverErr.Message)
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, nil, zerolog.Nop())

	_, err := client.ListVenues(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.NotErrorIs(t, err, domain.ErrServer)

	_, err = client.SubmitVote(context.Background(), "1", domain.Upvote)
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_EscapesVenueIDs(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		io.WriteString(w, `[]`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil, zerolog.Nop()).ListPhotos(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "/venues/a%20b/photos", gotPath)
}

func TestClient_SubmitVoteIDEncoding(t *testing.T) {
	tests := []struct {
		id   domain.VenueID
		want string
	}{
		{id: "42", want: `42`},
		{id: "-3", want: `-3`},
		{id: "007", want: `"007"`},
		{id: "+5", want: `"+5"`},
		{id: "abc", want: `"abc"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			hits := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits++
				var body map[string]json.RawMessage
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.JSONEq(t, tt.want, string(body["venueId"]))
				io.WriteString(w, `{"id": 1, "name": "Loft", "upvotes": 11, "downvotes": 2, "pop": 5}`)
			}))
			defer server.Close()

			venue, err := NewClient(server.URL, nil, zerolog.Nop()).SubmitVote(context.Background(), tt.id, domain.Upvote)
			require.NoError(t, err)
			assert.EqualValues(t, 11, venue.Upvotes)
			assert.Equal(t, 1, hits)
		})
	}
}
