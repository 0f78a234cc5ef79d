package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListContent(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].([]any)
	assert.Len(t, data, 2, "draft title must not appear")

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, float64(1), pagination["totalPages"])

	_, hasSearch := body["search"]
	assert.False(t, hasSearch, "search meta only with a query")
}

func TestListContentPopularitySort(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content?sort=popularity")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].([]any)
	first := data[0].(map[string]any)
	assert.Equal(t, "Kingdom of Ash", first["name"])
}

func TestSearchContent(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content?q=dragon")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].([]any)
	require.Len(t, data, 2)

	// Name match outranks the more popular description match.
	first := data[0].(map[string]any)
	assert.Equal(t, "Dragon Quest", first["name"])
	highlights := first["highlights"].(map[string]any)
	assert.Equal(t, "<mark>Dragon</mark> Quest", highlights["name"])

	searchMeta := body["search"].(map[string]any)
	assert.Equal(t, "dragon", searchMeta["query"])
	assert.Equal(t, float64(2), searchMeta["totalResults"])
}

func TestSearchContentNoResults(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content?q=zzzzz")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(0), pagination["total"])
}

func TestListContentRejectsUnknownSort(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content?sort=views")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetContentDetail(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content/dragon-quest")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ttl-dragon", data["id"])
	assert.Equal(t, "https://media.example.com/thumbs/dragon.webp", data["thumbnail"])

	genres := data["genres"].([]any)
	require.Len(t, genres, 2)
	// Ordered by name.
	assert.Equal(t, "Action", genres[0].(map[string]any)["name"])

	episodes := data["episodes"].([]any)
	require.Len(t, episodes, 1)
	assert.Equal(t, float64(1), episodes[0].(map[string]any)["no"])
}

func TestGetContentNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, slug := range []string{"missing", "hidden-draft"} {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/content/"+slug)
		require.Equal(t, http.StatusNotFound, rec.Code, "slug %s", slug)

		body := decodeBody(t, rec)
		assert.Equal(t, "Content not found", body["message"])
	}
}

func TestGetEpisode(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content/dragon-quest/1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "ep-1", data["id"])
	assert.Equal(t, "Dragon Quest", data["titleName"])

	images := data["images"].([]any)
	require.Len(t, images, 1)
	assert.Equal(t, "https://media.example.com/pages/ep-1/001.webp", images[0])

	_, hasContent := data["content"]
	assert.False(t, hasContent, "image episodes carry no text body")
}

func TestGetEpisodeNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content/dragon-quest/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListGenres(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/genres")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "Action", data[0].(map[string]any)["name"])
	assert.Equal(t, "Fantasy", data[1].(map[string]any)["name"])
}

func TestSuggestions(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content/search/suggestions?q=dr")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "dr", body["query"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Dragon Quest", data[0])
}

func TestSuggestionsShortQuery(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content/search/suggestions?q=d")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Empty(t, body["data"])
}

func TestSuggestionsRateLimited(t *testing.T) {
	s := newTestServer(t)
	// Swap in a tiny bucket so the limit trips immediately.
	s.suggestLimiter.Stop()
	limited := newLimiter(t, 1, 1)
	s.suggestLimiter = limited

	rec := doRequest(t, s, http.MethodGet, "/api/v1/content/search/suggestions?q=dr")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/content/search/suggestions?q=dr")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
