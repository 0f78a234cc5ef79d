package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/store"
)

// GetScopeForKey resolves an API key token to its access scope. Unknown and
// deactivated keys both come back as not found so callers cannot tell the
// difference.
func (s *Store) GetScopeForKey(ctx context.Context, token string) (*domain.AccessScope, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, locale, include_genres, exclude_genres
		FROM api_keys
		WHERE token = ? AND active = 1 AND deleted_at IS NULL`, token)

	var (
		scope    domain.AccessScope
		includes sql.NullString
		excludes sql.NullString
	)
	err := row.Scan(&scope.KeyID, &scope.Type, &scope.Locale, &includes, &excludes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound.WithMessage("api key not found")
		}
		return nil, store.ErrUnavailable.WithCause(fmt.Errorf("get api key: %w", err))
	}

	scope.IncludeGenres, err = decodeGenreList(includes)
	if err != nil {
		return nil, fmt.Errorf("decode include genres: %w", err)
	}
	scope.ExcludeGenres, err = decodeGenreList(excludes)
	if err != nil {
		return nil, fmt.Errorf("decode exclude genres: %w", err)
	}

	return &scope, nil
}

// CreateAPIKey inserts a key with its scope. Used by seeding and tests.
func (s *Store) CreateAPIKey(ctx context.Context, id, token string, scope domain.AccessScope) error {
	includes, err := json.Marshal(scope.IncludeGenres)
	if err != nil {
		return fmt.Errorf("encode include genres: %w", err)
	}
	excludes, err := json.Marshal(scope.ExcludeGenres)
	if err != nil {
		return fmt.Errorf("encode exclude genres: %w", err)
	}

	now := formatTime(nowUTC())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO api_keys (id, created_at, updated_at, deleted_at, token, type, locale, include_genres, exclude_genres, active)
		VALUES (?, ?, ?, NULL, ?, ?, ?, ?, ?, 1)`,
		id, now, now, token, string(scope.Type), scope.Locale, string(includes), string(excludes))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("api key already exists")
		}
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func decodeGenreList(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}
