// Package search executes catalog queries: filter composition, text
// scoring, ordering, pagination, highlighting, and autocomplete
// suggestions. It is read-only over the catalog accessor and safe for
// unlimited concurrent callers.
package search

import (
	"strings"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/errors"
	"github.com/hydrahub/hydra-server/internal/store"
)

// SortMode selects the ordering applied to a result set.
type SortMode string

const (
	SortRelevance    SortMode = "relevance"
	SortPopularity   SortMode = "popularity"
	SortRating       SortMode = "rating"
	SortRecent       SortMode = "recent"
	SortAlphabetical SortMode = "alphabetical"
)

// ParseSortMode validates a sort token. Empty input defaults to relevance.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortPopularity, SortRating, SortRecent, SortAlphabetical:
		return SortMode(s), nil
	}
	return "", errors.Validationf("unknown sort mode %q", s)
}

const (
	// DefaultPageSize is used when the request omits a limit.
	DefaultPageSize = 20
	// MaxPageSize caps catalog listing requests.
	MaxPageSize = 100
)

// QuerySpec is a fully composed, normalized query. Scope-derived fields
// (Type, Locale, IncludeGenres, ExcludeGenres) can only come from the
// caller's access scope; the rest comes from the request.
type QuerySpec struct {
	Query         string
	Type          domain.TitleType
	GenreSlug     string
	Locale        string
	IncludeGenres []string
	ExcludeGenres []string
	Sort          SortMode
	Page          int
	Limit         int
}

// ListParams are the caller-supplied pieces of a listing request.
type ListParams struct {
	Query     string
	GenreSlug string
	Sort      string
	Page      int
	Limit     int
}

// Compose merges an access scope with request parameters into a QuerySpec.
// The scope always wins for type, locale, and the genre include/exclude
// sets; the request cannot widen them. Returns a validation error for an
// unknown sort token.
func Compose(scope *domain.AccessScope, params ListParams) (QuerySpec, error) {
	sort, err := ParseSortMode(params.Sort)
	if err != nil {
		return QuerySpec{}, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return QuerySpec{
		Query:         strings.TrimSpace(params.Query),
		Type:          scope.Type,
		GenreSlug:     params.GenreSlug,
		Locale:        scope.Locale,
		IncludeGenres: scope.IncludeGenres,
		ExcludeGenres: scope.ExcludeGenres,
		Sort:          sort,
		Page:          page,
		Limit:         limit,
	}, nil
}

// storeFilter translates the spec into the catalog accessor's filter. The
// accessor enforces the PUBLISHED/non-deleted predicate itself; nothing a
// request supplies can disable it.
func (s QuerySpec) storeFilter() store.TitleFilter {
	return store.TitleFilter{
		Type:          s.Type,
		Locale:        s.Locale,
		GenreSlug:     s.GenreSlug,
		IncludeGenres: s.IncludeGenres,
		ExcludeGenres: s.ExcludeGenres,
	}
}
