// Package store defines the catalog accessor contract and its error type.
// The search engine and services depend on these interfaces only; the SQLite
// implementation lives in store/sqlite.
package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hydrahub/hydra-server/internal/domain"
)

// TitleFilter narrows a published-title listing. The PUBLISHED/not-deleted
// predicate is mandatory and applied by the implementation regardless of the
// filter contents; nothing here can widen visibility.
type TitleFilter struct {
	Type          domain.TitleType // required
	Locale        string           // optional
	GenreSlug     string           // optional, single requested genre (by slug)
	IncludeGenres []string         // optional, genre IDs; title must carry at least one
	ExcludeGenres []string         // optional, genre IDs; title must carry none
}

// Catalog is the read-and-count surface the query layer consumes.
type Catalog interface {
	// ListPublishedTitles returns every visible title passing the filter,
	// with genre references denormalized onto each row (ordered by name).
	// Episodes are not loaded on this path.
	ListPublishedTitles(ctx context.Context, filter TitleFilter) ([]*domain.Title, error)

	// ListPublishedNames returns name and view-total pairs for every visible
	// title of any type, for the suggestion index.
	ListPublishedNames(ctx context.Context) ([]NameRow, error)

	// GetTitleBySlug returns a visible title with its genres and episode
	// summaries, honoring the scope restrictions in filter (GenreSlug unused).
	GetTitleBySlug(ctx context.Context, slug string, filter TitleFilter) (*domain.Title, []*domain.Episode, error)

	// GetEpisode returns one episode of a visible title, payload included,
	// together with its parent.
	GetEpisode(ctx context.Context, slug string, no int, filter TitleFilter) (*domain.Episode, *domain.Title, error)

	// ListGenres returns all non-deleted genres.
	ListGenres(ctx context.Context) ([]*domain.Genre, error)

	// IncrementTitleCounter applies one allowed engagement action to a title.
	IncrementTitleCounter(ctx context.Context, titleID string, action domain.ActionKind) error

	// IncrementEpisodeViews applies one allowed episode view.
	IncrementEpisodeViews(ctx context.Context, episodeID string) error
}

// Writer is the ingest surface: everything needed to load catalog records.
// Reads never go through this interface.
type Writer interface {
	CreateTitle(ctx context.Context, t *domain.Title) error
	CreateEpisode(ctx context.Context, e *domain.Episode) error
	CreateGenre(ctx context.Context, g *domain.Genre) error
	AttachGenre(ctx context.Context, titleID, genreID string) error
	CreateAPIKey(ctx context.Context, id, token string, scope domain.AccessScope) error
}

// Keys resolves API-key tokens to access scopes.
type Keys interface {
	// GetScopeForKey returns the access scope for an active API key token.
	// Returns ErrNotFound for unknown or revoked tokens.
	GetScopeForKey(ctx context.Context, token string) (*domain.AccessScope, error)
}

// NameRow is a minimal projection used by the suggestion index.
type NameRow struct {
	Name      string
	ViewTotal int64
	ID        string
}

// Error is a store error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a store error with the same status code,
// so errors derived with WithMessage or WithCause still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:    e.Code,
		Message: msg,
		Err:     e.Err,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}

	ErrUnavailable = &Error{
		Code:    http.StatusServiceUnavailable,
		Message: "catalog unavailable",
	}
)
