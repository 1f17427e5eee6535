package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/nearbuy/nearbuy-api/internal/dto"
)

// Upload errors mapped to HTTP codes by the handler layer.
var (
	ErrUploadTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUploadNotAnImage  = errors.New("only image uploads are accepted")
	ErrUploadUnavailable = errors.New("uploads are not configured")
)

// FileStorage abstracts the hosted asset store.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// UploadService validates and stores listing images.
type UploadService interface {
	UploadImage(ctx context.Context, name string, size int64, reader io.Reader) (dto.UploadResponse, error)
}

type uploadService struct {
	storage  FileStorage
	maxBytes int64
	logger   zerolog.Logger
}

// NewUploadService constructs an upload service. Storage may be nil when no
// provider is configured; uploads then fail with ErrUploadUnavailable.
func NewUploadService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	return &uploadService{
		storage:  storage,
		maxBytes: int64(maxSizeMB) << 20,
		logger:   logger.With().Str("component", "upload_service").Logger(),
	}
}

func (s *uploadService) UploadImage(ctx context.Context, name string, size int64, reader io.Reader) (dto.UploadResponse, error) {
	if s.storage == nil {
		return dto.UploadResponse{}, ErrUploadUnavailable
	}
	if size > s.maxBytes {
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	// Sniff the real content type; the client-declared one is not trusted.
	var head bytes.Buffer
	kind, err := mimetype.DetectReader(io.TeeReader(reader, &head))
	if err != nil {
		return dto.UploadResponse{}, fmt.Errorf("failed to sniff upload: %w", err)
	}
	if !isImage(kind) {
		return dto.UploadResponse{}, ErrUploadNotAnImage
	}

	url, err := s.storage.Upload(ctx, name, io.MultiReader(&head, reader))
	if err != nil {
		return dto.UploadResponse{}, err
	}

	s.logger.Info().Str("content_type", kind.String()).Int64("size", size).Msg("image uploaded")

	return dto.UploadResponse{URL: url, ContentType: kind.String(), Size: size}, nil
}

func isImage(kind *mimetype.MIME) bool {
	for m := kind; m != nil; m = m.Parent() {
		if m.Is("image/jpeg") || m.Is("image/png") || m.Is("image/webp") || m.Is("image/gif") {
			return true
		}
	}
	return false
}
