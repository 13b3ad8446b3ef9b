package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/vncsmyrnk/nightout/internal/core/domain"
)

const maxImageBytes = 15 << 20

// Capturer reads a photo from disk. An empty path stands for a cancelled
// capture; an unreadable file for a refused permission.
type Capturer struct {
	path string
}

func NewCapturer(path string) *Capturer {
	return &Capturer{path: strings.TrimSpace(path)}
}

func (c *Capturer) Capture(ctx context.Context) (domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return domain.Image{}, err
	}
	if c.path == "" {
		return domain.Image{}, domain.ErrCaptureDenied
	}

	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return domain.Image{}, fmt.Errorf("%w: %v", domain.ErrCaptureDenied, err)
		}
		return domain.Image{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return domain.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return domain.Image{}, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	if len(data) == 0 {
		return domain.Image{}, domain.ErrCaptureDenied
	}

	return domain.Image{
		Data:        data,
		Filename:    filepath.Base(c.path),
		ContentType: http.DetectContentType(data),
	}, nil
}
