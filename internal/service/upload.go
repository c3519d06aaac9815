package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	// Register decoders for the accepted image formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/storage"
)

// UploadResult describes a stored image.
type UploadResult struct {
	Key      string `json:"key"`
	URL      string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// UploadService validates incoming image files and writes them to object
// storage under unique keys.
type UploadService struct {
	store   storage.ObjectStorage
	maxSize int64
	logger  *logger.Logger
}

// NewUploadService creates a new upload service.
// Parameters:
//   - store: destination object storage.
//   - maxSize: size cap in bytes; zero falls back to 5 MB.
//   - log: logger instance.
// Returns:
//   - *UploadService: initialized upload service.
func NewUploadService(store storage.ObjectStorage, maxSize int64, log *logger.Logger) *UploadService {
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	return &UploadService{
		store:   store,
		maxSize: maxSize,
		logger:  log,
	}
}

// Save validates and stores a single image file.
//
// The file must fit the size cap, carry an image MIME type, and decode as
// png, jpeg, gif, or webp. The stored key is "memes/<uuid><ext>".
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filename: client-supplied name, used only for its extension.
//   - r: file contents.
// Returns:
//   - *UploadResult: key, public URL, and decoded dimensions.
//   - error: ErrFileTooLarge, ErrNotAnImage, or a wrapped storage error.
func (s *UploadService) Save(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrNotAnImage
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrNotAnImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = "." + format
	}
	key := fmt.Sprintf("memes/%s%s", uuid.New().String(), ext)

	if err := s.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	s.log(ctx).Infof("Image uploaded: key=%s, size=%d", key, len(data))
	return &UploadResult{
		Key:      key,
		URL:      s.store.GetURL(key),
		Width:    cfg.Width,
		Height:   cfg.Height,
		Size:     int64(len(data)),
		MimeType: mimeType,
	}, nil
}

// log returns a logger from context if available, otherwise the injected one.
func (s *UploadService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}
