package artwork

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const artworkColumns = `
	id, artist_id, title, description, price_cents, currency,
	image_url, thumbnail_url, status, created_at, updated_at`

// Repository handles artwork database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new artwork repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new listing
func (r *Repository) Create(ctx context.Context, a *Artwork) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artworks (id, artist_id, title, description, price_cents, currency,
			image_url, thumbnail_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.ArtistID, a.Title, a.Description, a.PriceCents, a.Currency,
		a.ImageURL, a.ThumbnailURL, a.Status, a.CreatedAt, a.UpdatedAt)
	return err
}

// GetByID returns a listing by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Artwork, error) {
	var a Artwork
	err := r.db.GetContext(ctx, &a, `SELECT `+artworkColumns+` FROM artworks WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArtworkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListPublished returns published listings, newest first
func (r *Repository) ListPublished(ctx context.Context, limit, offset int) ([]Artwork, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var artworks []Artwork
	err := r.db.SelectContext(ctx, &artworks, `
		SELECT `+artworkColumns+`
		FROM artworks
		WHERE status = 'published'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return artworks, err
}

// ListByArtist returns all of an artist's listings
func (r *Repository) ListByArtist(ctx context.Context, artistID uuid.UUID) ([]Artwork, error) {
	var artworks []Artwork
	err := r.db.SelectContext(ctx, &artworks, `
		SELECT `+artworkColumns+`
		FROM artworks
		WHERE artist_id = $1
		ORDER BY created_at DESC
	`, artistID)
	return artworks, err
}

// Update persists listing edits
func (r *Repository) Update(ctx context.Context, a *Artwork) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE artworks SET
			title = $2, description = $3, price_cents = $4, currency = $5,
			image_url = $6, thumbnail_url = $7, status = $8,
			updated_at = now()
		WHERE id = $1
	`, a.ID, a.Title, a.Description, a.PriceCents, a.Currency,
		a.ImageURL, a.ThumbnailURL, a.Status)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrArtworkNotFound
	}
	return nil
}

// SetStatus transitions a listing's lifecycle state
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE artworks SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrArtworkNotFound
	}
	return nil
}

// SetImages stores the uploaded image URLs
func (r *Repository) SetImages(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE artworks SET image_url = $2, thumbnail_url = $3, updated_at = now() WHERE id = $1
	`, id, imageURL, thumbnailURL)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrArtworkNotFound
	}
	return nil
}
