package artwork

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gouache/gouache-api/internal/pkg/imaging"
	"github.com/gouache/gouache-api/internal/pkg/storage"
)

// UploadService pushes processed artwork images to object storage
type UploadService struct {
	store     storage.Storage
	processor *imaging.Processor
}

// NewUploadService creates the artwork upload service
func NewUploadService(store storage.Storage, processor *imaging.Processor) *UploadService {
	return &UploadService{store: store, processor: processor}
}

// UploadResult carries the public URLs of the stored images
type UploadResult struct {
	ImageURL     string
	ThumbnailURL string
	Width        int
	Height       int
}

// Upload processes an image and stores the bounded original plus a
// thumbnail under the artwork's key prefix
func (s *UploadService) Upload(ctx context.Context, artworkID uuid.UUID, reader io.Reader) (*UploadResult, error) {
	processed, err := s.processor.Process(reader)
	if err != nil {
		return nil, err
	}

	imageKey := fmt.Sprintf("artworks/%s/original.jpg", artworkID)
	thumbKey := fmt.Sprintf("artworks/%s/thumb.jpg", artworkID)

	if err := s.store.Put(ctx, imageKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	if err := s.store.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		// The original is already up; leave it, the thumbnail upload is
		// retried on the next attempt.
		log.Warn().Err(err).Str("artwork_id", artworkID.String()).Msg("Thumbnail upload failed")
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	return &UploadResult{
		ImageURL:     s.store.PublicURL(imageKey),
		ThumbnailURL: s.store.PublicURL(thumbKey),
		Width:        processed.Width,
		Height:       processed.Height,
	}, nil
}
