package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewHandler routes the venue API. media, when non-nil, serves stored
// photos under /media/.
func NewHandler(venueHandler *VenueHandler, media http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("welcome"))
	})

	r.Post("/vote", venueHandler.Vote)

	r.Route("/venues", func(r chi.Router) {
		r.Get("/", venueHandler.ListVenues)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", venueHandler.GetVenue)
			r.Post("/cover", venueHandler.SetCover)
			r.Post("/pop", venueHandler.CheckIn)
			r.Get("/photos", venueHandler.ListPhotos)
			r.Post("/photos", venueHandler.UploadPhoto)
		})
	})

	if media != nil {
		r.Handle("/media/*", http.StripPrefix("/media/", media))
	}

	return r
}
