package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hydrahub/hydra-server/internal/domain"
	domainerrors "github.com/hydrahub/hydra-server/internal/errors"
	"github.com/hydrahub/hydra-server/internal/id"
	"github.com/hydrahub/hydra-server/internal/normalize"
	"github.com/hydrahub/hydra-server/internal/store"
	"github.com/hydrahub/hydra-server/internal/util"
	"github.com/hydrahub/hydra-server/internal/validation"
)

// IngestService loads catalog records: titles, episodes, genres, and API
// keys. It backs the seed tool; the serving path never writes through it.
type IngestService struct {
	store     store.Writer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewIngestService creates a new ingest service.
func NewIngestService(st store.Writer, v *validation.Validator, logger *slog.Logger) *IngestService {
	return &IngestService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// GenreInput describes a genre to create. An empty slug is derived from
// the name.
type GenreInput struct {
	Name string `json:"name" validate:"required,max=60"`
	Slug string `json:"slug" validate:"omitempty,max=60,lowercase"`
}

// TitleInput describes a title to create. GenreIDs reference genres that
// must already exist. An empty slug is derived from the name; the locale
// accepts anything normalize.Locale resolves.
type TitleInput struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Slug             string   `json:"slug" validate:"omitempty,max=200,lowercase"`
	Description      string   `json:"description" validate:"max=4000"`
	ShortDescription string   `json:"short_description" validate:"max=400"`
	Type             string   `json:"type" validate:"required,oneof=SERIAL_IMAGE SERIAL_TEXT"`
	Locale           string   `json:"locale" validate:"required,max=10"`
	CountryOrigin    string   `json:"country_origin" validate:"max=2"`
	AgeRating        string   `json:"age_rating" validate:"max=20"`
	ThumbnailImage   string   `json:"thumbnail_image" validate:"max=500"`
	CoverImage       string   `json:"cover_image" validate:"max=500"`
	CompletionStatus string   `json:"completion_status" validate:"omitempty,oneof=ONGOING COMPLETED HIATUS CANCELLED"`
	PublishStatus    string   `json:"publish_status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	GenreIDs         []string `json:"genre_ids"`
}

// EpisodeInput describes an episode to create under an existing title.
// TitleType drives the payload shape check: image serials need pages,
// text serials need a body.
type EpisodeInput struct {
	TitleID   string           `json:"title_id" validate:"required"`
	TitleType domain.TitleType `json:"title_type" validate:"required,oneof=SERIAL_IMAGE SERIAL_TEXT"`
	Name      string           `json:"name" validate:"max=200"`
	No        int              `json:"no" validate:"required,gte=1"`
	Images    []string         `json:"images"`
	Content   string           `json:"content"`
}

// APIKeyInput describes the access scope for a new API key. The token is
// generated, never supplied.
type APIKeyInput struct {
	Type          string   `json:"type" validate:"required,oneof=SERIAL_IMAGE SERIAL_TEXT"`
	Locale        string   `json:"locale" validate:"max=10"`
	IncludeGenres []string `json:"include_genres"`
	ExcludeGenres []string `json:"exclude_genres"`
}

// CreateGenre validates and inserts a genre.
func (s *IngestService) CreateGenre(ctx context.Context, input GenreInput) (*domain.Genre, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	slug := input.Slug
	if slug == "" {
		slug = util.Slugify(input.Name)
	}
	if slug == "" {
		return nil, domainerrors.Validation("genre name does not produce a usable slug")
	}

	genreID, err := id.Generate("gen")
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate genre ID")
	}

	genre := &domain.Genre{
		Name: input.Name,
		Slug: slug,
	}
	genre.ID = genreID
	genre.InitTimestamps()

	if err := s.store.CreateGenre(ctx, genre); err != nil {
		return nil, mapIngestError(err, "genre "+slug)
	}

	s.logger.Info("genre created", "id", genre.ID, "slug", genre.Slug)
	return genre, nil
}

// CreateTitle validates and inserts a title with its genre links.
func (s *IngestService) CreateTitle(ctx context.Context, input TitleInput) (*domain.Title, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	slug := input.Slug
	if slug == "" {
		slug = util.Slugify(input.Name)
	}
	if slug == "" {
		return nil, domainerrors.Validation("title name does not produce a usable slug")
	}

	locale, ok := normalize.Locale(input.Locale)
	if !ok {
		return nil, domainerrors.Validationf("unrecognized locale %q", input.Locale)
	}

	titleID, err := id.Generate("ttl")
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate title ID")
	}

	title := &domain.Title{
		Name:             input.Name,
		Slug:             slug,
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Type:             domain.TitleType(input.Type),
		Locale:           locale,
		CountryOrigin:    input.CountryOrigin,
		AgeRating:        input.AgeRating,
		ThumbnailImage:   input.ThumbnailImage,
		CoverImage:       input.CoverImage,
		CompletionStatus: domain.CompletionOngoing,
		PublishStatus:    domain.PublishPublished,
	}
	if input.CompletionStatus != "" {
		title.CompletionStatus = domain.CompletionStatus(input.CompletionStatus)
	}
	if input.PublishStatus != "" {
		title.PublishStatus = domain.PublishStatus(input.PublishStatus)
	}
	for _, genreID := range input.GenreIDs {
		title.Genres = append(title.Genres, domain.Genre{Entity: domain.Entity{ID: genreID}})
	}
	title.ID = titleID
	title.InitTimestamps()

	if err := s.store.CreateTitle(ctx, title); err != nil {
		return nil, mapIngestError(err, "title "+slug)
	}

	s.logger.Info("title created", "id", title.ID, "slug", title.Slug, "type", title.Type)
	return title, nil
}

// CreateEpisode validates and inserts an episode.
func (s *IngestService) CreateEpisode(ctx context.Context, input EpisodeInput) (*domain.Episode, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	episodeID, err := id.Generate("ep")
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate episode ID")
	}

	episode := &domain.Episode{
		TitleID: input.TitleID,
		Name:    input.Name,
		No:      input.No,
		Data: domain.EpisodeData{
			Images:  input.Images,
			Content: input.Content,
		},
	}
	episode.ID = episodeID
	episode.InitTimestamps()

	if err := episode.ValidateData(input.TitleType); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	if err := s.store.CreateEpisode(ctx, episode); err != nil {
		return nil, mapIngestError(err, "episode")
	}

	s.logger.Info("episode created", "id", episode.ID, "title_id", episode.TitleID, "no", episode.No)
	return episode, nil
}

// CreateAPIKey validates the scope, generates a token, and inserts the key.
// The token is returned exactly once; the store never reads it back out.
func (s *IngestService) CreateAPIKey(ctx context.Context, input APIKeyInput) (string, error) {
	if err := s.validator.Validate(input); err != nil {
		return "", err
	}

	locale := ""
	if input.Locale != "" {
		var ok bool
		locale, ok = normalize.Locale(input.Locale)
		if !ok {
			return "", domainerrors.Validationf("unrecognized locale %q", input.Locale)
		}
	}

	keyID, err := id.Generate("key")
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate key ID")
	}
	token := uuid.NewString()

	scope := domain.AccessScope{
		Type:          domain.TitleType(input.Type),
		Locale:        locale,
		IncludeGenres: input.IncludeGenres,
		ExcludeGenres: input.ExcludeGenres,
	}

	if err := s.store.CreateAPIKey(ctx, keyID, token, scope); err != nil {
		return "", mapIngestError(err, "api key")
	}

	s.logger.Info("api key created", "id", keyID, "type", scope.Type, "locale", scope.Locale)
	return token, nil
}

// mapIngestError keeps store write errors that already carry a status and
// wraps everything else as internal.
func mapIngestError(err error, what string) error {
	if errors.Is(err, store.ErrAlreadyExists) {
		return store.ErrAlreadyExists.WithMessage(what + " already exists")
	}
	if errors.Is(err, store.ErrInvalidInput) {
		return err
	}
	return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create "+what)
}
