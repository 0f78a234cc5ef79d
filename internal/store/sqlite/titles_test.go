package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/store"
)

// makeTestTitle creates a published domain.Title with sensible defaults.
func makeTestTitle(id, name, slug string) *domain.Title {
	now := time.Now().UTC()
	return &domain.Title{
		Entity: domain.Entity{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:             name,
		Slug:             slug,
		Type:             domain.TypeSerialImage,
		Locale:           "en",
		CompletionStatus: domain.CompletionOngoing,
		PublishStatus:    domain.PublishPublished,
	}
}

func makeTestGenre(id, name, slug string) *domain.Genre {
	now := time.Now().UTC()
	return &domain.Genre{
		Entity: domain.Entity{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: name,
		Slug: slug,
	}
}

func defaultFilter() store.TitleFilter {
	return store.TitleFilter{Type: domain.TypeSerialImage}
}

func TestCreateAndGetTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	title := makeTestTitle("ttl-1", "Tower of Dawn", "tower-of-dawn")
	title.Description = "A climber ascends a tower that rebuilds itself nightly"
	title.ShortDescription = "Climb the tower"
	title.CountryOrigin = "KR"
	title.AgeRating = "12+"
	title.ThumbnailImage = "thumbs/ttl-1.webp"
	title.CoverImage = "covers/ttl-1.webp"
	title.ViewTotal = 1200
	title.RatingValue = 4.4
	title.RatingTotal = 88

	if err := s.CreateTitle(ctx, title); err != nil {
		t.Fatalf("create title: %v", err)
	}

	got, episodes, err := s.GetTitleBySlug(ctx, "tower-of-dawn", defaultFilter())
	if err != nil {
		t.Fatalf("get title: %v", err)
	}
	if got.ID != "ttl-1" {
		t.Errorf("expected ttl-1, got %s", got.ID)
	}
	if got.Name != "Tower of Dawn" {
		t.Errorf("expected name round-trip, got %s", got.Name)
	}
	if got.Description != title.Description {
		t.Errorf("expected description round-trip, got %q", got.Description)
	}
	if got.ViewTotal != 1200 {
		t.Errorf("expected view_total 1200, got %d", got.ViewTotal)
	}
	if got.RatingValue != 4.4 {
		t.Errorf("expected rating 4.4, got %f", got.RatingValue)
	}
	if len(episodes) != 0 {
		t.Errorf("expected no episodes, got %d", len(episodes))
	}
}

func TestCreateTitleDuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateTitle(ctx, makeTestTitle("ttl-1", "First", "same-slug")); err != nil {
		t.Fatalf("create title: %v", err)
	}
	err := s.CreateTitle(ctx, makeTestTitle("ttl-2", "Second", "same-slug"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetTitleVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	draft := makeTestTitle("ttl-draft", "Draft Title", "draft-title")
	draft.PublishStatus = domain.PublishDraft
	if err := s.CreateTitle(ctx, draft); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	deleted := makeTestTitle("ttl-del", "Deleted Title", "deleted-title")
	deleted.MarkDeleted()
	if err := s.CreateTitle(ctx, deleted); err != nil {
		t.Fatalf("create deleted: %v", err)
	}

	textOnly := makeTestTitle("ttl-text", "Text Title", "text-title")
	textOnly.Type = domain.TypeSerialText
	if err := s.CreateTitle(ctx, textOnly); err != nil {
		t.Fatalf("create text title: %v", err)
	}

	for _, slug := range []string{"draft-title", "deleted-title", "text-title"} {
		_, _, err := s.GetTitleBySlug(ctx, slug, defaultFilter())
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", slug, err)
		}
	}

	// The text title is visible under its own type.
	_, _, err := s.GetTitleBySlug(ctx, "text-title", store.TitleFilter{Type: domain.TypeSerialText})
	if err != nil {
		t.Errorf("text-title under SERIAL_TEXT: %v", err)
	}
}

func TestGetTitleLocaleRestriction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	title := makeTestTitle("ttl-1", "Localized", "localized")
	title.Locale = "ko"
	if err := s.CreateTitle(ctx, title); err != nil {
		t.Fatalf("create title: %v", err)
	}

	filter := defaultFilter()
	filter.Locale = "en"
	if _, _, err := s.GetTitleBySlug(ctx, "localized", filter); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for locale mismatch, got %v", err)
	}

	filter.Locale = "ko"
	if _, _, err := s.GetTitleBySlug(ctx, "localized", filter); err != nil {
		t.Errorf("expected match for ko locale, got %v", err)
	}

	// Empty locale means no restriction.
	if _, _, err := s.GetTitleBySlug(ctx, "localized", defaultFilter()); err != nil {
		t.Errorf("expected match with no locale restriction, got %v", err)
	}
}

func TestListPublishedTitlesGenreFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	action := makeTestGenre("gen-action", "Action", "action")
	romance := makeTestGenre("gen-romance", "Romance", "romance")
	horror := makeTestGenre("gen-horror", "Horror", "horror")
	for _, g := range []*domain.Genre{action, romance, horror} {
		if err := s.CreateGenre(ctx, g); err != nil {
			t.Fatalf("create genre: %v", err)
		}
	}

	a := makeTestTitle("ttl-a", "Alpha", "alpha")
	a.Genres = []domain.Genre{*action}
	b := makeTestTitle("ttl-b", "Beta", "beta")
	b.Genres = []domain.Genre{*action, *horror}
	c := makeTestTitle("ttl-c", "Gamma", "gamma")
	c.Genres = []domain.Genre{*romance}
	for _, title := range []*domain.Title{a, b, c} {
		if err := s.CreateTitle(ctx, title); err != nil {
			t.Fatalf("create title: %v", err)
		}
	}

	// Request genre filter by slug.
	filter := defaultFilter()
	filter.GenreSlug = "action"
	titles, err := s.ListPublishedTitles(ctx, filter)
	if err != nil {
		t.Fatalf("list by genre slug: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 action titles, got %d", len(titles))
	}

	// Scope include filter by genre ID.
	filter = defaultFilter()
	filter.IncludeGenres = []string{"gen-romance"}
	titles, err = s.ListPublishedTitles(ctx, filter)
	if err != nil {
		t.Fatalf("list by include: %v", err)
	}
	if len(titles) != 1 || titles[0].ID != "ttl-c" {
		t.Fatalf("expected only ttl-c, got %d titles", len(titles))
	}

	// Scope exclude wins over request genre.
	filter = defaultFilter()
	filter.GenreSlug = "action"
	filter.ExcludeGenres = []string{"gen-horror"}
	titles, err = s.ListPublishedTitles(ctx, filter)
	if err != nil {
		t.Fatalf("list with exclude: %v", err)
	}
	if len(titles) != 1 || titles[0].ID != "ttl-a" {
		t.Fatalf("expected only ttl-a after exclude, got %d titles", len(titles))
	}

	// A requested genre outside the scope include set matches nothing,
	// even when the title carries both genres. The same genre must
	// satisfy both constraints.
	filter = defaultFilter()
	filter.GenreSlug = "horror"
	filter.IncludeGenres = []string{"gen-action"}
	titles, err = s.ListPublishedTitles(ctx, filter)
	if err != nil {
		t.Fatalf("list slug outside include set: %v", err)
	}
	if len(titles) != 0 {
		t.Fatalf("expected no titles for out-of-scope genre, got %d", len(titles))
	}

	// The requested genre inside the include set still matches.
	filter = defaultFilter()
	filter.GenreSlug = "action"
	filter.IncludeGenres = []string{"gen-action"}
	titles, err = s.ListPublishedTitles(ctx, filter)
	if err != nil {
		t.Fatalf("list slug inside include set: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 in-scope action titles, got %d", len(titles))
	}

	// Genres come back denormalized, ordered by name.
	filter = defaultFilter()
	titles, err = s.ListPublishedTitles(ctx, filter)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	for _, title := range titles {
		if title.ID == "ttl-b" {
			if len(title.Genres) != 2 {
				t.Fatalf("expected 2 genres on ttl-b, got %d", len(title.Genres))
			}
			if title.Genres[0].Name != "Action" || title.Genres[1].Name != "Horror" {
				t.Errorf("expected genres ordered by name, got %s, %s",
					title.Genres[0].Name, title.Genres[1].Name)
			}
		}
	}
}

func TestListPublishedNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		title := makeTestTitle(fmt.Sprintf("ttl-%d", i), fmt.Sprintf("Title %d", i), fmt.Sprintf("title-%d", i))
		title.ViewTotal = int64(i * 100)
		if err := s.CreateTitle(ctx, title); err != nil {
			t.Fatalf("create title: %v", err)
		}
	}
	hidden := makeTestTitle("ttl-hidden", "Hidden", "hidden")
	hidden.PublishStatus = domain.PublishArchived
	if err := s.CreateTitle(ctx, hidden); err != nil {
		t.Fatalf("create hidden: %v", err)
	}

	names, err := s.ListPublishedNames(ctx)
	if err != nil {
		t.Fatalf("list names: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %d", len(names))
	}
	for _, n := range names {
		if n.Name == "Hidden" {
			t.Error("archived title leaked into name projection")
		}
	}
}

func TestIncrementTitleCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	title := makeTestTitle("ttl-1", "Counted", "counted")
	if err := s.CreateTitle(ctx, title); err != nil {
		t.Fatalf("create title: %v", err)
	}

	cases := []struct {
		action domain.ActionKind
		read   func(t *domain.Title) int64
		want   int64
	}{
		{domain.ActionView, func(t *domain.Title) int64 { return t.ViewTotal }, 1},
		{domain.ActionStar, func(t *domain.Title) int64 { return t.LikeTotal }, 1},
		{domain.ActionBookmark, func(t *domain.Title) int64 { return t.BookmarkTotal }, 1},
	}
	for _, tc := range cases {
		if err := s.IncrementTitleCounter(ctx, "ttl-1", tc.action); err != nil {
			t.Fatalf("increment %s: %v", tc.action, err)
		}
	}

	got, _, err := s.GetTitleBySlug(ctx, "counted", defaultFilter())
	if err != nil {
		t.Fatalf("get title: %v", err)
	}
	for _, tc := range cases {
		if tc.read(got) != tc.want {
			t.Errorf("%s: expected counter %d, got %d", tc.action, tc.want, tc.read(got))
		}
	}

	if err := s.IncrementTitleCounter(ctx, "missing", domain.ActionView); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing title, got %v", err)
	}
}
