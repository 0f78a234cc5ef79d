// Package service provides the business logic layer between the HTTP
// API and the catalog store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hydrahub/hydra-server/internal/domain"
	domainerrors "github.com/hydrahub/hydra-server/internal/errors"
	"github.com/hydrahub/hydra-server/internal/search"
	"github.com/hydrahub/hydra-server/internal/store"
)

// CatalogService answers read queries under a caller's access scope.
type CatalogService struct {
	store  store.Catalog
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(st store.Catalog, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  st,
		logger: logger,
	}
}

// List runs a listing or search request: composes the caller's scope
// with the request filters and executes the ranking engine.
func (s *CatalogService) List(ctx context.Context, scope *domain.AccessScope, params search.ListParams) (*search.Result, error) {
	spec, err := search.Compose(scope, params)
	if err != nil {
		return nil, err
	}

	result, err := search.Search(ctx, s.store, spec)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return result, nil
}

// Suggest returns autocomplete candidates for a short query.
func (s *CatalogService) Suggest(ctx context.Context, input string, limit int) ([]string, error) {
	names, err := search.Suggest(ctx, s.store, input, limit)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return names, nil
}

// GetTitle resolves a slug under the caller's scope, returning the title
// with its genre references and episode summaries.
func (s *CatalogService) GetTitle(ctx context.Context, scope *domain.AccessScope, slug string) (*domain.Title, []*domain.Episode, error) {
	title, episodes, err := s.store.GetTitleBySlug(ctx, slug, scopeFilter(scope))
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	return title, episodes, nil
}

// GetEpisode resolves an episode by slug and number under the caller's
// scope. Visibility is decided on the parent title.
func (s *CatalogService) GetEpisode(ctx context.Context, scope *domain.AccessScope, slug string, no int) (*domain.Episode, *domain.Title, error) {
	episode, title, err := s.store.GetEpisode(ctx, slug, no, scopeFilter(scope))
	if err != nil {
		return nil, nil, mapStoreError(err)
	}
	return episode, title, nil
}

// Genres returns the full genre list. Genres are not scope-restricted.
func (s *CatalogService) Genres(ctx context.Context) ([]*domain.Genre, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return genres, nil
}

// scopeFilter translates an access scope into the store's title filter.
func scopeFilter(scope *domain.AccessScope) store.TitleFilter {
	return store.TitleFilter{
		Type:          scope.Type,
		Locale:        scope.Locale,
		IncludeGenres: scope.IncludeGenres,
		ExcludeGenres: scope.ExcludeGenres,
	}
}

// mapStoreError converts store errors into domain errors the response
// layer knows how to render. Missing catalog rows surface as the
// caller-facing "Content not found".
func mapStoreError(err error) error {
	var derr *domainerrors.Error
	if errors.As(err, &derr) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("Content not found")
	}
	if errors.Is(err, store.ErrUnavailable) {
		return domainerrors.Wrap(err, domainerrors.CodeUnavailable, "catalog unavailable")
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "internal error")
}
