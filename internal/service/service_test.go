package service

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/store"
)

// fakeStore is an in-memory store.Catalog for service tests.
type fakeStore struct {
	titles   []*domain.Title
	episodes map[string][]*domain.Episode // keyed by title ID
	genres   []*domain.Genre

	titleCounts  map[string]map[domain.ActionKind]int
	episodeViews map[string]int
	incrementErr error

	keys map[string]domain.AccessScope // token -> scope
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		episodes:     make(map[string][]*domain.Episode),
		titleCounts:  make(map[string]map[domain.ActionKind]int),
		episodeViews: make(map[string]int),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeStore) visible(t *domain.Title, filter store.TitleFilter) bool {
	if t.PublishStatus != domain.PublishPublished || t.IsDeleted() {
		return false
	}
	if t.Type != filter.Type {
		return false
	}
	if filter.Locale != "" && t.Locale != filter.Locale {
		return false
	}
	// The requested slug and the include set must be met by the same
	// genre, matching the store's single-EXISTS semantics.
	if filter.GenreSlug != "" {
		var matched *domain.Genre
		for i := range t.Genres {
			if t.Genres[i].Slug == filter.GenreSlug {
				matched = &t.Genres[i]
				break
			}
		}
		if matched == nil {
			return false
		}
		if len(filter.IncludeGenres) > 0 && !slices.Contains(filter.IncludeGenres, matched.ID) {
			return false
		}
	} else if len(filter.IncludeGenres) > 0 && !t.HasAnyGenreID(filter.IncludeGenres) {
		return false
	}
	if len(filter.ExcludeGenres) > 0 && t.HasAnyGenreID(filter.ExcludeGenres) {
		return false
	}
	return true
}

func (f *fakeStore) ListPublishedTitles(_ context.Context, filter store.TitleFilter) ([]*domain.Title, error) {
	var out []*domain.Title
	for _, t := range f.titles {
		if f.visible(t, filter) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPublishedNames(_ context.Context) ([]store.NameRow, error) {
	var out []store.NameRow
	for _, t := range f.titles {
		if t.PublishStatus == domain.PublishPublished && !t.IsDeleted() {
			out = append(out, store.NameRow{ID: t.ID, Name: t.Name, ViewTotal: t.ViewTotal})
		}
	}
	return out, nil
}

func (f *fakeStore) GetTitleBySlug(_ context.Context, slug string, filter store.TitleFilter) (*domain.Title, []*domain.Episode, error) {
	filter.GenreSlug = ""
	for _, t := range f.titles {
		if t.Slug == slug && f.visible(t, filter) {
			return t, f.episodes[t.ID], nil
		}
	}
	return nil, nil, store.ErrNotFound
}

func (f *fakeStore) GetEpisode(ctx context.Context, slug string, no int, filter store.TitleFilter) (*domain.Episode, *domain.Title, error) {
	t, episodes, err := f.GetTitleBySlug(ctx, slug, filter)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range episodes {
		if e.No == no {
			return e, t, nil
		}
	}
	return nil, nil, store.ErrNotFound
}

func (f *fakeStore) ListGenres(_ context.Context) ([]*domain.Genre, error) {
	return f.genres, nil
}

func (f *fakeStore) IncrementTitleCounter(_ context.Context, titleID string, action domain.ActionKind) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	if f.titleCounts[titleID] == nil {
		f.titleCounts[titleID] = make(map[domain.ActionKind]int)
	}
	f.titleCounts[titleID][action]++
	return nil
}

func (f *fakeStore) IncrementEpisodeViews(_ context.Context, episodeID string) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.episodeViews[episodeID]++
	return nil
}

func (f *fakeStore) CreateTitle(_ context.Context, t *domain.Title) error {
	for _, existing := range f.titles {
		if existing.Slug == t.Slug {
			return store.ErrAlreadyExists
		}
	}
	f.titles = append(f.titles, t)
	return nil
}

func (f *fakeStore) CreateEpisode(_ context.Context, e *domain.Episode) error {
	for _, existing := range f.episodes[e.TitleID] {
		if existing.No == e.No {
			return store.ErrAlreadyExists
		}
	}
	f.episodes[e.TitleID] = append(f.episodes[e.TitleID], e)
	return nil
}

func (f *fakeStore) CreateGenre(_ context.Context, g *domain.Genre) error {
	for _, existing := range f.genres {
		if existing.Slug == g.Slug {
			return store.ErrAlreadyExists
		}
	}
	f.genres = append(f.genres, g)
	return nil
}

func (f *fakeStore) AttachGenre(_ context.Context, titleID, genreID string) error {
	for _, t := range f.titles {
		if t.ID != titleID {
			continue
		}
		if !t.HasAnyGenreID([]string{genreID}) {
			for _, g := range f.genres {
				if g.ID == genreID {
					t.Genres = append(t.Genres, *g)
				}
			}
		}
	}
	return nil
}

func (f *fakeStore) CreateAPIKey(_ context.Context, id, token string, scope domain.AccessScope) error {
	if f.keys == nil {
		f.keys = make(map[string]domain.AccessScope)
	}
	scope.KeyID = id
	f.keys[token] = scope
	return nil
}

var (
	_ store.Catalog = (*fakeStore)(nil)
	_ store.Writer  = (*fakeStore)(nil)
)

func imageScope() *domain.AccessScope {
	return &domain.AccessScope{KeyID: "key-1", Type: domain.TypeSerialImage}
}

func publishedTitle(id, name, slug string) *domain.Title {
	return &domain.Title{
		Entity:        domain.Entity{ID: id},
		Name:          name,
		Slug:          slug,
		Type:          domain.TypeSerialImage,
		PublishStatus: domain.PublishPublished,
	}
}
