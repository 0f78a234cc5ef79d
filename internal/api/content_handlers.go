package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hydrahub/hydra-server/internal/domain"
	domainerrors "github.com/hydrahub/hydra-server/internal/errors"
	"github.com/hydrahub/hydra-server/internal/http/response"
	"github.com/hydrahub/hydra-server/internal/search"
)

func (s *Server) registerContentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content",
		Summary:     "List or search content",
		Description: "Returns a ranked, paginated listing. Supplying q switches to full-text search with highlighting.",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"apiKey": {}}},
	}, s.handleListContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getContent",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/{slug}",
		Summary:     "Get content detail",
		Description: "Returns one title with its genre references and episode summaries.",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"apiKey": {}}},
	}, s.handleGetContent)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEpisode",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/{slug}/{no}",
		Summary:     "Get episode",
		Description: "Returns one episode with its payload (image pages or text body, by title type).",
		Tags:        []string{"Content"},
		Security:    []map[string][]string{{"apiKey": {}}},
	}, s.handleGetEpisode)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Tags:        []string{"Genres"},
		Security:    []map[string][]string{{"apiKey": {}}},
	}, s.handleListGenres)

	// Suggestions bypass huma: the endpoint is a fast path with its own
	// per-IP limiter.
	s.router.Get("/api/v1/content/search/suggestions", func(w http.ResponseWriter, r *http.Request) {
		s.rateLimitByIP(s.suggestLimiter, s.handleSuggestions)(w, r)
	})
}

// === DTOs ===

// GenreRef is a genre reference in API responses.
type GenreRef struct {
	ID   string `json:"id" doc:"Genre ID"`
	Name string `json:"name" doc:"Genre name"`
	Slug string `json:"slug" doc:"URL-safe slug"`
}

// TitleSummary is the listing projection of a title.
type TitleSummary struct {
	ID               string             `json:"id" doc:"Title ID"`
	Name             string             `json:"name" doc:"Display name"`
	Slug             string             `json:"slug" doc:"URL-safe slug"`
	Description      string             `json:"description,omitempty"`
	ShortDescription string             `json:"shortDescription,omitempty"`
	Type             string             `json:"type" doc:"SERIAL_IMAGE or SERIAL_TEXT"`
	Locale           string             `json:"locale"`
	Thumbnail        string             `json:"thumbnail,omitempty" doc:"Resolved thumbnail URL"`
	Cover            string             `json:"cover,omitempty" doc:"Resolved cover URL"`
	ViewTotal        int64              `json:"viewTotal"`
	RatingValue      float64            `json:"ratingValue"`
	RatingTotal      int64              `json:"ratingTotal"`
	LikeTotal        int64              `json:"likeTotal"`
	BookmarkTotal    int64              `json:"bookmarkTotal"`
	CompletionStatus string             `json:"completionStatus"`
	LastEpisodeAt    *time.Time         `json:"lastEpisodeAt,omitempty"`
	Genres           []GenreRef         `json:"genres"`
	Highlights       *search.Highlights `json:"highlights,omitempty" doc:"Marked-up copies of matched fields"`
}

// PaginationResponse mirrors search.Pagination on the wire.
type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// SearchMetaResponse is present only when the request carried a query.
type SearchMetaResponse struct {
	Query        string `json:"query"`
	TotalResults int    `json:"totalResults"`
	SearchTime   int64  `json:"searchTime" doc:"Match and sort duration in milliseconds"`
}

// ListContentInput contains parameters for listing content.
type ListContentInput struct {
	Query string `query:"q" required:"false" maxLength:"100" doc:"Free-text query"`
	Genre string `query:"genre" required:"false" doc:"Genre slug filter"`
	Sort  string `query:"sort" required:"false" enum:"relevance,popularity,rating,recent,alphabetical" doc:"Sort mode"`
	Page  int    `query:"page" required:"false" minimum:"1" doc:"Page number"`
	Limit int    `query:"limit" required:"false" minimum:"1" maximum:"100" doc:"Page size"`
}

// ListContentResponse is the listing envelope.
type ListContentResponse struct {
	Data       []TitleSummary      `json:"data"`
	Pagination PaginationResponse  `json:"pagination"`
	Search     *SearchMetaResponse `json:"search,omitempty"`
}

// ListContentOutput wraps the listing response for Huma.
type ListContentOutput struct {
	Body ListContentResponse
}

func (s *Server) handleListContent(ctx context.Context, input *ListContentInput) (*ListContentOutput, error) {
	scope := getScope(ctx)
	if scope == nil {
		return nil, domainerrors.Unauthorized("Missing API key")
	}

	result, err := s.catalog.List(ctx, scope, search.ListParams{
		Query:     input.Query,
		GenreSlug: input.Genre,
		Sort:      input.Sort,
		Page:      input.Page,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, err
	}

	data := make([]TitleSummary, len(result.Items))
	for i, item := range result.Items {
		data[i] = s.titleSummary(item.Title, item.Highlights)
	}

	out := &ListContentOutput{Body: ListContentResponse{
		Data: data,
		Pagination: PaginationResponse{
			Page:       result.Pagination.Page,
			Limit:      result.Pagination.Limit,
			Total:      result.Pagination.Total,
			TotalPages: result.Pagination.TotalPages,
		},
	}}
	if result.Meta != nil {
		out.Body.Search = &SearchMetaResponse{
			Query:        result.Meta.Query,
			TotalResults: result.Meta.TotalResults,
			SearchTime:   result.Meta.SearchTime,
		}
	}
	return out, nil
}

// EpisodeSummary is an episode without its payload.
type EpisodeSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	No        int       `json:"no"`
	ViewCount int64     `json:"viewCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// TitleDetail extends the summary with episode summaries.
type TitleDetail struct {
	TitleSummary
	CountryOrigin string           `json:"countryOrigin,omitempty"`
	AgeRating     string           `json:"ageRating,omitempty"`
	Episodes      []EpisodeSummary `json:"episodes"`
}

// GetContentInput contains the slug path parameter.
type GetContentInput struct {
	Slug string `path:"slug" doc:"Title slug"`
}

// GetContentOutput wraps the detail response for Huma.
type GetContentOutput struct {
	Body struct {
		Data TitleDetail `json:"data"`
	}
}

func (s *Server) handleGetContent(ctx context.Context, input *GetContentInput) (*GetContentOutput, error) {
	scope := getScope(ctx)
	if scope == nil {
		return nil, domainerrors.Unauthorized("Missing API key")
	}

	title, episodes, err := s.catalog.GetTitle(ctx, scope, input.Slug)
	if err != nil {
		return nil, err
	}

	detail := TitleDetail{
		TitleSummary:  s.titleSummary(title, nil),
		CountryOrigin: title.CountryOrigin,
		AgeRating:     title.AgeRating,
		Episodes:      make([]EpisodeSummary, len(episodes)),
	}
	for i, e := range episodes {
		detail.Episodes[i] = EpisodeSummary{
			ID:        e.ID,
			Name:      e.Name,
			No:        e.No,
			ViewCount: e.ViewCount,
			CreatedAt: e.CreatedAt,
		}
	}

	out := &GetContentOutput{}
	out.Body.Data = detail
	return out, nil
}

// EpisodeDetail carries the payload union: image pages for SERIAL_IMAGE
// titles, a text body for SERIAL_TEXT.
type EpisodeDetail struct {
	ID        string    `json:"id"`
	TitleID   string    `json:"titleId"`
	TitleName string    `json:"titleName"`
	TitleSlug string    `json:"titleSlug"`
	Name      string    `json:"name,omitempty"`
	No        int       `json:"no"`
	Images    []string  `json:"images,omitempty" doc:"Resolved page image URLs"`
	Content   string    `json:"content,omitempty" doc:"Text body"`
	ViewCount int64     `json:"viewCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetEpisodeInput contains the slug and episode number path parameters.
type GetEpisodeInput struct {
	Slug string `path:"slug" doc:"Title slug"`
	No   int    `path:"no" minimum:"1" doc:"Episode number"`
}

// GetEpisodeOutput wraps the episode response for Huma.
type GetEpisodeOutput struct {
	Body struct {
		Data EpisodeDetail `json:"data"`
	}
}

func (s *Server) handleGetEpisode(ctx context.Context, input *GetEpisodeInput) (*GetEpisodeOutput, error) {
	scope := getScope(ctx)
	if scope == nil {
		return nil, domainerrors.Unauthorized("Missing API key")
	}

	episode, title, err := s.catalog.GetEpisode(ctx, scope, input.Slug, input.No)
	if err != nil {
		return nil, err
	}

	out := &GetEpisodeOutput{}
	out.Body.Data = EpisodeDetail{
		ID:        episode.ID,
		TitleID:   title.ID,
		TitleName: title.Name,
		TitleSlug: title.Slug,
		Name:      episode.Name,
		No:        episode.No,
		Images:    s.media.URLs(episode.Data.Images),
		Content:   episode.Data.Content,
		ViewCount: episode.ViewCount,
		CreatedAt: episode.CreatedAt,
	}
	return out, nil
}

// ListGenresOutput wraps the genre list for Huma.
type ListGenresOutput struct {
	Body struct {
		Data []GenreRef `json:"data"`
	}
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	genres, err := s.catalog.Genres(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListGenresOutput{}
	out.Body.Data = make([]GenreRef, len(genres))
	for i, g := range genres {
		out.Body.Data[i] = GenreRef{ID: g.ID, Name: g.Name, Slug: g.Slug}
	}
	return out, nil
}

// handleSuggestions serves autocomplete.
// GET /api/v1/content/search/suggestions?q=...&limit=...
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) > 100 {
		response.BadRequest(w, "Query too long", s.logger)
		return
	}
	limit := queryInt(r, "limit", search.DefaultSuggestions)

	names, err := s.catalog.Suggest(r.Context(), q, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	// Flat envelope, no success wrapper: this path is parsed by typeahead
	// widgets on every keystroke.
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	payload := struct {
		Data  []string `json:"data"`
		Query string   `json:"query"`
	}{Data: names, Query: q}
	if err := json.MarshalWrite(w, payload); err != nil {
		s.logger.Error("Failed to encode suggestions", "error", err)
	}
}

// titleSummary maps a domain title onto the wire shape, resolving media
// keys into URLs.
func (s *Server) titleSummary(t *domain.Title, highlights *search.Highlights) TitleSummary {
	genres := make([]GenreRef, len(t.Genres))
	for i := range t.Genres {
		genres[i] = GenreRef{ID: t.Genres[i].ID, Name: t.Genres[i].Name, Slug: t.Genres[i].Slug}
	}
	return TitleSummary{
		ID:               t.ID,
		Name:             t.Name,
		Slug:             t.Slug,
		Description:      t.Description,
		ShortDescription: t.ShortDescription,
		Type:             string(t.Type),
		Locale:           t.Locale,
		Thumbnail:        s.media.URL(t.ThumbnailImage),
		Cover:            s.media.URL(t.CoverImage),
		ViewTotal:        t.ViewTotal,
		RatingValue:      t.RatingValue,
		RatingTotal:      t.RatingTotal,
		LikeTotal:        t.LikeTotal,
		BookmarkTotal:    t.BookmarkTotal,
		CompletionStatus: string(t.CompletionStatus),
		LastEpisodeAt:    t.LastEpisodeAt,
		Genres:           genres,
		Highlights:       highlights,
	}
}

// queryInt parses an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
