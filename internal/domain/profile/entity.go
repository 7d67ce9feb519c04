package profile

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Profile is an artist's public presence
type Profile struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`

	Bio         sql.NullString `db:"bio"`
	Disciplines pq.StringArray `db:"disciplines"`
	Website     sql.NullString `db:"website"`
	Instagram   sql.NullString `db:"instagram"`
	AvatarURL   sql.NullString `db:"avatar_url"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PortfolioPiece is one work in an artist's portfolio, ordered by
// position
type PortfolioPiece struct {
	ID        uuid.UUID `db:"id"`
	ProfileID uuid.UUID `db:"profile_id"`

	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	ImageURL     string         `db:"image_url"`
	ThumbnailURL sql.NullString `db:"thumbnail_url"`
	Position     int            `db:"position"`

	CreatedAt time.Time `db:"created_at"`
}
