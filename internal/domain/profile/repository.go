package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository handles profile database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new profile repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new artist profile
func (r *Repository) Create(ctx context.Context, p *Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artist_profiles (id, user_id, bio, disciplines, website, instagram, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.UserID, p.Bio, p.Disciplines, p.Website, p.Instagram, p.AvatarURL, p.CreatedAt, p.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrProfileExists
	}
	return err
}

// GetByID returns a profile by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `
		SELECT id, user_id, bio, disciplines, website, instagram, avatar_url, created_at, updated_at
		FROM artist_profiles WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserID returns the profile owned by a user
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `
		SELECT id, user_id, bio, disciplines, website, instagram, avatar_url, created_at, updated_at
		FROM artist_profiles WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileIDByUserID resolves a user to their artist profile id
func (r *Repository) ProfileIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, `SELECT id FROM artist_profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrProfileNotFound
	}
	return id, err
}

// Update persists profile edits
func (r *Repository) Update(ctx context.Context, p *Profile) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE artist_profiles SET
			bio = $2, disciplines = $3, website = $4, instagram = $5, avatar_url = $6,
			updated_at = now()
		WHERE id = $1
	`, p.ID, p.Bio, p.Disciplines, p.Website, p.Instagram, p.AvatarURL)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// AddPiece appends a portfolio piece
func (r *Repository) AddPiece(ctx context.Context, piece *PortfolioPiece) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolio_pieces (id, profile_id, title, description, image_url, thumbnail_url, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6,
			COALESCE((SELECT MAX(position) + 1 FROM portfolio_pieces WHERE profile_id = $2), 0),
			$7)
	`, piece.ID, piece.ProfileID, piece.Title, piece.Description, piece.ImageURL, piece.ThumbnailURL, piece.CreatedAt)
	return err
}

// ListPieces returns a profile's portfolio in display order
func (r *Repository) ListPieces(ctx context.Context, profileID uuid.UUID) ([]PortfolioPiece, error) {
	var pieces []PortfolioPiece
	err := r.db.SelectContext(ctx, &pieces, `
		SELECT id, profile_id, title, description, image_url, thumbnail_url, position, created_at
		FROM portfolio_pieces
		WHERE profile_id = $1
		ORDER BY position, created_at
	`, profileID)
	return pieces, err
}

// DeletePiece removes a portfolio piece belonging to a profile
func (r *Repository) DeletePiece(ctx context.Context, profileID, pieceID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM portfolio_pieces WHERE id = $1 AND profile_id = $2
	`, pieceID, profileID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPieceNotFound
	}
	return nil
}
