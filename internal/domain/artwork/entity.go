package artwork

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status is a listing's lifecycle state
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusSold      Status = "sold"
)

// Artwork is a marketplace listing. Prices are integer cents.
type Artwork struct {
	ID       uuid.UUID `db:"id"`
	ArtistID uuid.UUID `db:"artist_id"`

	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	PriceCents  int64          `db:"price_cents"`
	Currency    string         `db:"currency"`

	ImageURL     sql.NullString `db:"image_url"`
	ThumbnailURL sql.NullString `db:"thumbnail_url"`
	Status       Status         `db:"status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
