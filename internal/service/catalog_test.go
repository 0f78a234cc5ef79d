package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrahub/hydra-server/internal/domain"
	domainerrors "github.com/hydrahub/hydra-server/internal/errors"
	"github.com/hydrahub/hydra-server/internal/search"
)

func TestCatalogList(t *testing.T) {
	st := newFakeStore()
	a := publishedTitle("ttl-1", "Dragon Quest", "dragon-quest")
	a.ViewTotal = 500
	b := publishedTitle("ttl-2", "Kingdom of Ash", "kingdom-of-ash")
	b.ViewTotal = 900
	st.titles = []*domain.Title{a, b}

	svc := NewCatalogService(st, testLogger())

	result, err := svc.List(context.Background(), imageScope(), search.ListParams{Sort: "popularity"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "ttl-2", result.Items[0].Title.ID)
	assert.Equal(t, 2, result.Pagination.Total)
}

func TestCatalogListSearch(t *testing.T) {
	st := newFakeStore()
	st.titles = []*domain.Title{
		publishedTitle("ttl-1", "Dragon Quest", "dragon-quest"),
		publishedTitle("ttl-2", "Kingdom of Ash", "kingdom-of-ash"),
	}

	svc := NewCatalogService(st, testLogger())

	result, err := svc.List(context.Background(), imageScope(), search.ListParams{Query: "dragon"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "ttl-1", result.Items[0].Title.ID)
	require.NotNil(t, result.Meta)
	assert.Equal(t, "dragon", result.Meta.Query)
}

func TestCatalogListRejectsBadSort(t *testing.T) {
	svc := NewCatalogService(newFakeStore(), testLogger())

	_, err := svc.List(context.Background(), imageScope(), search.ListParams{Sort: "nope"})
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}

func TestCatalogGetTitle(t *testing.T) {
	st := newFakeStore()
	title := publishedTitle("ttl-1", "Dragon Quest", "dragon-quest")
	st.titles = []*domain.Title{title}
	st.episodes["ttl-1"] = []*domain.Episode{
		{Entity: domain.Entity{ID: "ep-1"}, TitleID: "ttl-1", No: 1},
	}

	svc := NewCatalogService(st, testLogger())

	got, episodes, err := svc.GetTitle(context.Background(), imageScope(), "dragon-quest")
	require.NoError(t, err)
	assert.Equal(t, "ttl-1", got.ID)
	assert.Len(t, episodes, 1)
}

func TestCatalogGetTitleNotFound(t *testing.T) {
	svc := NewCatalogService(newFakeStore(), testLogger())

	_, _, err := svc.GetTitle(context.Background(), imageScope(), "missing")
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
	assert.Equal(t, "Content not found", derr.Message)
}

func TestCatalogGetTitleOutOfScope(t *testing.T) {
	st := newFakeStore()
	title := publishedTitle("ttl-1", "Dragon Quest", "dragon-quest")
	title.Type = domain.TypeSerialText
	st.titles = []*domain.Title{title}

	svc := NewCatalogService(st, testLogger())

	// Scope restricted to SERIAL_IMAGE cannot see a SERIAL_TEXT title.
	_, _, err := svc.GetTitle(context.Background(), imageScope(), "dragon-quest")
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestCatalogGetEpisode(t *testing.T) {
	st := newFakeStore()
	st.titles = []*domain.Title{publishedTitle("ttl-1", "Dragon Quest", "dragon-quest")}
	st.episodes["ttl-1"] = []*domain.Episode{
		{Entity: domain.Entity{ID: "ep-1"}, TitleID: "ttl-1", No: 1},
		{Entity: domain.Entity{ID: "ep-2"}, TitleID: "ttl-1", No: 2},
	}

	svc := NewCatalogService(st, testLogger())

	episode, title, err := svc.GetEpisode(context.Background(), imageScope(), "dragon-quest", 2)
	require.NoError(t, err)
	assert.Equal(t, "ep-2", episode.ID)
	assert.Equal(t, "ttl-1", title.ID)

	_, _, err = svc.GetEpisode(context.Background(), imageScope(), "dragon-quest", 3)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)
}

func TestCatalogSuggest(t *testing.T) {
	st := newFakeStore()
	st.titles = []*domain.Title{
		publishedTitle("ttl-1", "Abyss", "abyss"),
		publishedTitle("ttl-2", "Cabin", "cabin"),
	}

	svc := NewCatalogService(st, testLogger())

	got, err := svc.Suggest(context.Background(), "ab", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Abyss", "Cabin"}, got)

	// Short input is empty, not an error.
	got, err = svc.Suggest(context.Background(), "a", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalogGenres(t *testing.T) {
	st := newFakeStore()
	st.genres = []*domain.Genre{
		{Entity: domain.Entity{ID: "gen-1"}, Name: "Action", Slug: "action"},
	}

	svc := NewCatalogService(st, testLogger())

	genres, err := svc.Genres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Action", genres[0].Name)
}
