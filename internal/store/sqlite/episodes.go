package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/store"
)

const episodeColumns = `id, created_at, updated_at, deleted_at, title_id, name, no, data, view_count`

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*domain.Episode, error) {
	var e domain.Episode

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		data      sql.NullString
	)

	err := scanner.Scan(
		&e.ID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&e.TitleID,
		&e.Name,
		&e.No,
		&data,
		&e.ViewCount,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	e.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	if data.Valid && data.String != "" {
		if err := json.Unmarshal([]byte(data.String), &e.Data); err != nil {
			return nil, fmt.Errorf("decode episode data: %w", err)
		}
	}

	return &e, nil
}

// GetEpisode returns one episode of a visible title, along with its parent.
// Visibility is decided on the parent title, never on the episode alone.
func (s *Store) GetEpisode(ctx context.Context, slug string, no int, filter store.TitleFilter) (*domain.Episode, *domain.Title, error) {
	title, err := s.getVisibleTitle(ctx, slug, filter)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM episodes WHERE title_id = ? AND no = ? AND deleted_at IS NULL`,
		episodeColumns)

	row := s.db.QueryRowContext(ctx, query, title.ID, no)
	e, err := scanEpisode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, store.ErrNotFound.WithMessage("episode not found")
		}
		return nil, nil, store.ErrUnavailable.WithCause(fmt.Errorf("get episode: %w", err))
	}

	return e, title, nil
}

// listEpisodeSummaries returns a title's episodes without payload data,
// ordered by number.
func (s *Store) listEpisodeSummaries(ctx context.Context, titleID string) ([]*domain.Episode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, updated_at, deleted_at, title_id, name, no, NULL, view_count
		FROM episodes
		WHERE title_id = ? AND deleted_at IS NULL
		ORDER BY no ASC`, titleID)
	if err != nil {
		return nil, store.ErrUnavailable.WithCause(fmt.Errorf("list episodes: %w", err))
	}
	defer rows.Close()

	var episodes []*domain.Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// IncrementEpisodeViews bumps an episode's view counter.
func (s *Store) IncrementEpisodeViews(ctx context.Context, episodeID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE episodes SET view_count = view_count + 1, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(nowUTC()), episodeID)
	if err != nil {
		return store.ErrUnavailable.WithCause(fmt.Errorf("increment episode views: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound.WithMessage("episode not found")
	}
	return nil
}

// CreateEpisode inserts an episode and advances the parent's last episode
// timestamp. Used by seeding and tests.
func (s *Store) CreateEpisode(ctx context.Context, e *domain.Episode) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encode episode data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO episodes (id, created_at, updated_at, deleted_at, title_id, name, no, data, view_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
		nullTimeString(e.DeletedAt),
		e.TitleID,
		e.Name,
		e.No,
		string(data),
		e.ViewCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("episode %d already exists", e.No))
		}
		return fmt.Errorf("insert episode: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE titles SET last_episode_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(e.CreatedAt), formatTime(nowUTC()), e.TitleID)
	if err != nil {
		return fmt.Errorf("update last episode: %w", err)
	}
	return nil
}
