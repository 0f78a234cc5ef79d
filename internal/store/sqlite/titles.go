package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/store"
)

// titleColumns is the ordered list of columns selected in title queries.
// Must match the scan order in scanTitle.
const titleColumns = `id, created_at, updated_at, deleted_at, name, slug,
	description, short_description, type, locale, country_origin, age_rating,
	thumbnail_image, cover_image,
	view_total, rating_value, rating_total, like_total, dislike_total, bookmark_total,
	completion_status, publish_status, last_episode_at`

// scanTitle scans a sql.Row (or sql.Rows via its Scan method) into a domain.Title.
func scanTitle(scanner interface{ Scan(dest ...any) error }) (*domain.Title, error) {
	var t domain.Title

	var (
		createdAt     string
		updatedAt     string
		deletedAt     sql.NullString
		desc          sql.NullString
		shortDesc     sql.NullString
		countryOrigin sql.NullString
		ageRating     sql.NullString
		thumbnail     sql.NullString
		cover         sql.NullString
		lastEpisodeAt sql.NullString
	)

	err := scanner.Scan(
		&t.ID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&t.Name,
		&t.Slug,
		&desc,
		&shortDesc,
		&t.Type,
		&t.Locale,
		&countryOrigin,
		&ageRating,
		&thumbnail,
		&cover,
		&t.ViewTotal,
		&t.RatingValue,
		&t.RatingTotal,
		&t.LikeTotal,
		&t.DislikeTotal,
		&t.BookmarkTotal,
		&t.CompletionStatus,
		&t.PublishStatus,
		&lastEpisodeAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	t.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	t.LastEpisodeAt, err = parseNullableTime(lastEpisodeAt)
	if err != nil {
		return nil, err
	}

	if desc.Valid {
		t.Description = desc.String
	}
	if shortDesc.Valid {
		t.ShortDescription = shortDesc.String
	}
	if countryOrigin.Valid {
		t.CountryOrigin = countryOrigin.String
	}
	if ageRating.Valid {
		t.AgeRating = ageRating.String
	}
	if thumbnail.Valid {
		t.ThumbnailImage = thumbnail.String
	}
	if cover.Valid {
		t.CoverImage = cover.String
	}

	return &t, nil
}

// visibilityClauses builds the WHERE fragment for a published-title query.
// The PUBLISHED/not-deleted predicate is always present and cannot be
// disabled by the filter.
func visibilityClauses(filter store.TitleFilter) (string, []any) {
	clauses := []string{
		"t.publish_status = 'PUBLISHED'",
		"t.deleted_at IS NULL",
		"t.type = ?",
	}
	args := []any{string(filter.Type)}

	if filter.Locale != "" {
		clauses = append(clauses, "t.locale = ?")
		args = append(args, filter.Locale)
	}

	// A requested genre slug and an include set must be satisfied by the
	// same genre row: requesting a genre outside the caller's include set
	// matches nothing, so both constraints land in one EXISTS.
	switch {
	case filter.GenreSlug != "" && len(filter.IncludeGenres) > 0:
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = ? AND g.deleted_at IS NULL
			AND tg.genre_id IN (%s))`,
			placeholders(len(filter.IncludeGenres))))
		args = append(args, filter.GenreSlug)
		for _, g := range filter.IncludeGenres {
			args = append(args, g)
		}
	case filter.GenreSlug != "":
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = ? AND g.deleted_at IS NULL)`)
		args = append(args, filter.GenreSlug)
	case len(filter.IncludeGenres) > 0:
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM title_genres tg
			WHERE tg.title_id = t.id AND tg.genre_id IN (%s))`,
			placeholders(len(filter.IncludeGenres))))
		for _, g := range filter.IncludeGenres {
			args = append(args, g)
		}
	}

	if len(filter.ExcludeGenres) > 0 {
		clauses = append(clauses, fmt.Sprintf(`NOT EXISTS (
			SELECT 1 FROM title_genres tg
			WHERE tg.title_id = t.id AND tg.genre_id IN (%s))`,
			placeholders(len(filter.ExcludeGenres))))
		for _, g := range filter.ExcludeGenres {
			args = append(args, g)
		}
	}

	return strings.Join(clauses, " AND "), args
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ListPublishedTitles returns every visible title passing the filter, with
// genres denormalized onto each row.
func (s *Store) ListPublishedTitles(ctx context.Context, filter store.TitleFilter) ([]*domain.Title, error) {
	where, args := visibilityClauses(filter)

	query := fmt.Sprintf(`SELECT %s FROM titles t WHERE %s ORDER BY t.id`,
		prefixColumns("t", titleColumns), where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.ErrUnavailable.WithCause(fmt.Errorf("list titles: %w", err))
	}
	defer rows.Close()

	var titles []*domain.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.ErrUnavailable.WithCause(err)
	}

	if err := s.attachGenres(ctx, titles); err != nil {
		return nil, err
	}

	return titles, nil
}

// ListPublishedNames returns the name projection used by the suggestion index.
func (s *Store) ListPublishedNames(ctx context.Context) ([]store.NameRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, view_total FROM titles
		WHERE publish_status = 'PUBLISHED' AND deleted_at IS NULL`)
	if err != nil {
		return nil, store.ErrUnavailable.WithCause(fmt.Errorf("list names: %w", err))
	}
	defer rows.Close()

	var names []store.NameRow
	for rows.Next() {
		var n store.NameRow
		if err := rows.Scan(&n.ID, &n.Name, &n.ViewTotal); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// GetTitleBySlug returns a visible title with genres and episode summaries.
func (s *Store) GetTitleBySlug(ctx context.Context, slug string, filter store.TitleFilter) (*domain.Title, []*domain.Episode, error) {
	t, err := s.getVisibleTitle(ctx, slug, filter)
	if err != nil {
		return nil, nil, err
	}

	episodes, err := s.listEpisodeSummaries(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}

	return t, episodes, nil
}

// getVisibleTitle resolves a slug under the filter's visibility rules,
// with genres attached but no episodes.
func (s *Store) getVisibleTitle(ctx context.Context, slug string, filter store.TitleFilter) (*domain.Title, error) {
	filter.GenreSlug = "" // slug lookup ignores the request genre filter
	where, args := visibilityClauses(filter)

	query := fmt.Sprintf(`SELECT %s FROM titles t WHERE t.slug = ? AND %s`,
		prefixColumns("t", titleColumns), where)

	row := s.db.QueryRowContext(ctx, query, append([]any{slug}, args...)...)
	t, err := scanTitle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound.WithMessage("title not found")
		}
		return nil, store.ErrUnavailable.WithCause(fmt.Errorf("get title: %w", err))
	}

	if err := s.attachGenres(ctx, []*domain.Title{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// IncrementTitleCounter applies one allowed engagement action to a title.
func (s *Store) IncrementTitleCounter(ctx context.Context, titleID string, action domain.ActionKind) error {
	var column string
	switch action {
	case domain.ActionView:
		column = "view_total"
	case domain.ActionStar:
		column = "like_total"
	case domain.ActionBookmark:
		column = "bookmark_total"
	default:
		return store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown action %q", action))
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`UPDATE titles SET %s = %s + 1, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		column, column),
		formatTime(nowUTC()), titleID)
	if err != nil {
		return store.ErrUnavailable.WithCause(fmt.Errorf("increment %s: %w", column, err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound.WithMessage("title not found")
	}
	return nil
}

// attachGenres loads the genre references for each title, ordered by name.
func (s *Store) attachGenres(ctx context.Context, titles []*domain.Title) error {
	if len(titles) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Title, len(titles))
	ids := make([]any, 0, len(titles))
	for _, t := range titles {
		t.Genres = []domain.Genre{}
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	query := fmt.Sprintf(`
		SELECT tg.title_id, g.id, g.created_at, g.updated_at, g.deleted_at, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id IN (%s) AND g.deleted_at IS NULL
		ORDER BY g.name ASC`, placeholders(len(ids)))

	rows, err := s.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return store.ErrUnavailable.WithCause(fmt.Errorf("load genres: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var titleID string
		g, err := scanGenreWithOwner(rows, &titleID)
		if err != nil {
			return fmt.Errorf("scan title genre: %w", err)
		}
		if t, ok := byID[titleID]; ok {
			t.Genres = append(t.Genres, *g)
		}
	}
	return rows.Err()
}

// CreateTitle inserts a title. Used by seeding and tests.
func (s *Store) CreateTitle(ctx context.Context, t *domain.Title) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO titles (
			id, created_at, updated_at, deleted_at, name, slug,
			description, short_description, type, locale, country_origin, age_rating,
			thumbnail_image, cover_image,
			view_total, rating_value, rating_total, like_total, dislike_total, bookmark_total,
			completion_status, publish_status, last_episode_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
		nullTimeString(t.DeletedAt),
		t.Name,
		t.Slug,
		nullString(t.Description),
		nullString(t.ShortDescription),
		string(t.Type),
		t.Locale,
		nullString(t.CountryOrigin),
		nullString(t.AgeRating),
		nullString(t.ThumbnailImage),
		nullString(t.CoverImage),
		t.ViewTotal,
		t.RatingValue,
		t.RatingTotal,
		t.LikeTotal,
		t.DislikeTotal,
		t.BookmarkTotal,
		string(t.CompletionStatus),
		string(t.PublishStatus),
		nullTimeString(t.LastEpisodeAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("title %q already exists", t.Slug))
		}
		return fmt.Errorf("insert title: %w", err)
	}

	for i := range t.Genres {
		if err := s.AttachGenre(ctx, t.ID, t.Genres[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// prefixColumns qualifies each column in a comma-separated list with an alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
