package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/store"
)

func scanGenreWithOwner(scanner interface{ Scan(dest ...any) error }, owner *string) (*domain.Genre, error) {
	var g domain.Genre
	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)
	dest := []any{}
	if owner != nil {
		dest = append(dest, owner)
	}
	dest = append(dest, &g.ID, &createdAt, &updatedAt, &deletedAt, &g.Name, &g.Slug)

	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	g.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGenres returns all genres ordered alphabetically by name.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, updated_at, deleted_at, name, slug
		FROM genres WHERE deleted_at IS NULL
		ORDER BY name ASC`)
	if err != nil {
		return nil, store.ErrUnavailable.WithCause(fmt.Errorf("list genres: %w", err))
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenreWithOwner(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// CreateGenre inserts a genre. Used by seeding and tests.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO genres (id, created_at, updated_at, deleted_at, name, slug)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID,
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
		nullTimeString(g.DeletedAt),
		g.Name,
		g.Slug,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("genre %q already exists", g.Slug))
		}
		return fmt.Errorf("insert genre: %w", err)
	}
	return nil
}

// AttachGenre links a genre to a title. Duplicate links are ignored.
func (s *Store) AttachGenre(ctx context.Context, titleID, genreID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO title_genres (title_id, genre_id) VALUES (?, ?)`,
		titleID, genreID)
	if err != nil {
		return fmt.Errorf("attach genre: %w", err)
	}
	return nil
}
