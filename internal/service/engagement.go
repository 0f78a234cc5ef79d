package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hydrahub/hydra-server/internal/domain"
	domainerrors "github.com/hydrahub/hydra-server/internal/errors"
	"github.com/hydrahub/hydra-server/internal/ratelimit"
	"github.com/hydrahub/hydra-server/internal/store"
)

// EngagementService records view/star/bookmark events, deduplicated per
// actor by the action limiter. The limiter only decides whether an
// increment may proceed; the store applies it.
type EngagementService struct {
	store   store.Catalog
	actions *ratelimit.Actions
	logger  *slog.Logger
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(st store.Catalog, actions *ratelimit.Actions, logger *slog.Logger) *EngagementService {
	return &EngagementService{
		store:   st,
		actions: actions,
		logger:  logger,
	}
}

// RecordTitleAction applies one engagement action to a title on behalf
// of an actor. Returns a throttled error when the actor already
// performed the action within its window. The limiter claim is released
// if the counter increment fails, so a store outage never poisons the
// actor's window.
func (s *EngagementService) RecordTitleAction(ctx context.Context, scope *domain.AccessScope, slug, actor string, action domain.ActionKind) error {
	if !action.Valid() {
		return domainerrors.Validationf("unknown action %q", action)
	}

	title, _, err := s.store.GetTitleBySlug(ctx, slug, scopeFilter(scope))
	if err != nil {
		return mapStoreError(err)
	}

	if !s.actions.Allow(title.ID, actor, action) {
		return domainerrors.Throttled("Rate limit exceeded")
	}

	if err := s.store.IncrementTitleCounter(ctx, title.ID, action); err != nil {
		s.actions.Release(title.ID, actor, action)
		return mapStoreError(err)
	}
	s.actions.Record(title.ID, actor, action)

	s.logger.Debug("recorded title action",
		slog.String("title_id", title.ID),
		slog.String("action", string(action)))
	return nil
}

// RecordEpisodeView applies a view to an episode. The throttle subject
// is the title and episode number together, so views of different
// episodes by the same actor are independent.
func (s *EngagementService) RecordEpisodeView(ctx context.Context, scope *domain.AccessScope, slug string, no int, actor string) error {
	episode, title, err := s.store.GetEpisode(ctx, slug, no, scopeFilter(scope))
	if err != nil {
		return mapStoreError(err)
	}

	subject := fmt.Sprintf("%s:%d", title.ID, no)
	if !s.actions.Allow(subject, actor, domain.ActionView) {
		return domainerrors.Throttled("Rate limit exceeded")
	}

	if err := s.store.IncrementEpisodeViews(ctx, episode.ID); err != nil {
		s.actions.Release(subject, actor, domain.ActionView)
		return mapStoreError(err)
	}
	s.actions.Record(subject, actor, domain.ActionView)

	s.logger.Debug("recorded episode view",
		slog.String("episode_id", episode.ID),
		slog.Int("no", no))
	return nil
}
