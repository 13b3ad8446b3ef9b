package memory

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

// Storage keeps uploaded images in memory and serves them under baseURL.
type Storage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]domain.Image
}

func NewStorage(baseURL string) *Storage {
	return &Storage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]domain.Image),
	}
}

func (s *Storage) Put(_ context.Context, key string, image domain.Image) (string, error) {
	data := make([]byte, len(image.Data))
	copy(data, image.Data)
	image.Data = data

	s.mu.Lock()
	s.objects[key] = image
	s.mu.Unlock()

	return s.baseURL + "/" + key, nil
}

func (s *Storage) Get(key string) (domain.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	image, ok := s.objects[key]
	return image, ok
}

// ServeHTTP serves a stored image by key.
func (s *Storage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	image, ok := s.Get(strings.TrimPrefix(r.URL.Path, "/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if image.ContentType != "" {
		w.Header().Set("Content-Type", image.ContentType)
	}
	w.Write(image.Data)
}
