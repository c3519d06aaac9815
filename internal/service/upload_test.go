package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/imagegenhub/server/internal/logger"
	"github.com/imagegenhub/server/internal/storage"
)

func newUploadService(t *testing.T, maxSize int64) (*UploadService, *storage.LocalStorage) {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("failed to ensure storage dir: %v", err)
	}
	return NewUploadService(store, maxSize, logger.Default()), store
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveStoresValidImage(t *testing.T) {
	svc, store := newUploadService(t, 0)
	data := pngBytes(t, 32, 16)

	result, err := svc.Save(context.Background(), "funny.png", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if result.Width != 32 || result.Height != 16 {
		t.Errorf("dimensions = %dx%d, want 32x16", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("mime type = %q, want image/png", result.MimeType)
	}
	if !strings.HasPrefix(result.Key, "memes/") || !strings.HasSuffix(result.Key, ".png") {
		t.Errorf("key = %q, want memes/<uuid>.png", result.Key)
	}
	if !strings.HasPrefix(result.URL, "http://localhost:8080/uploads/memes/") {
		t.Errorf("url = %q, want served under /uploads/memes/", result.URL)
	}

	exists, err := store.Exists(context.Background(), result.Key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("stored object not found on disk")
	}
}

func TestSaveExtensionFromFormat(t *testing.T) {
	svc, _ := newUploadService(t, 0)

	result, err := svc.Save(context.Background(), "no-extension", bytes.NewReader(pngBytes(t, 4, 4)))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(result.Key, ".png") {
		t.Errorf("key = %q, want .png suffix derived from the decoded format", result.Key)
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	svc, _ := newUploadService(t, 0)

	for _, data := range [][]byte{
		[]byte("just some text, definitely not pixels"),
		{},
	} {
		if _, err := svc.Save(context.Background(), "note.txt", bytes.NewReader(data)); err != ErrNotAnImage {
			t.Errorf("Save(%d bytes) error = %v, want ErrNotAnImage", len(data), err)
		}
	}
}

func TestSaveRejectsTruncatedImage(t *testing.T) {
	svc, _ := newUploadService(t, 0)

	// Valid PNG magic but no decodable header.
	data := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}
	if _, err := svc.Save(context.Background(), "broken.png", bytes.NewReader(data)); err != ErrNotAnImage {
		t.Errorf("Save error = %v, want ErrNotAnImage", err)
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	data := pngBytes(t, 64, 64)
	svc, _ := newUploadService(t, int64(len(data))-1)

	if _, err := svc.Save(context.Background(), "big.png", bytes.NewReader(data)); err != ErrFileTooLarge {
		t.Errorf("Save error = %v, want ErrFileTooLarge", err)
	}
}
