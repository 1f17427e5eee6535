package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	name string
	data []byte
}

func (m *memoryStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.name = name
	m.data = data
	return "https://cdn.example.com/" + name, nil
}

// Minimal valid PNG header plus padding; enough for content sniffing.
func pngBytes() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0}, 64)...)
}

func TestUploadServiceStoresSniffedImage(t *testing.T) {
	storage := &memoryStorage{}
	svc := NewUploadService(storage, 5, zerolog.Nop())

	payload := pngBytes()
	resp, err := svc.UploadImage(context.Background(), "photo.png", int64(len(payload)), bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/photo.png", resp.URL)
	require.Equal(t, "image/png", resp.ContentType)
	require.Equal(t, payload, storage.data, "sniffed head bytes are replayed into storage")
}

func TestUploadServiceRejectsNonImage(t *testing.T) {
	svc := NewUploadService(&memoryStorage{}, 5, zerolog.Nop())

	body := strings.NewReader("%PDF-1.7 definitely a document")
	_, err := svc.UploadImage(context.Background(), "invoice.pdf", 30, body)
	require.ErrorIs(t, err, ErrUploadNotAnImage)
}

func TestUploadServiceRejectsOversized(t *testing.T) {
	svc := NewUploadService(&memoryStorage{}, 1, zerolog.Nop())

	_, err := svc.UploadImage(context.Background(), "huge.png", 2<<20, bytes.NewReader(pngBytes()))
	require.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestUploadServiceWithoutStorage(t *testing.T) {
	svc := NewUploadService(nil, 5, zerolog.Nop())

	_, err := svc.UploadImage(context.Background(), "photo.png", 10, bytes.NewReader(pngBytes()))
	require.ErrorIs(t, err, ErrUploadUnavailable)
}
