package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/http/response"
)

// actionMessages are the caller-facing confirmations per action kind.
var actionMessages = map[domain.ActionKind]string{
	domain.ActionView:     "View recorded",
	domain.ActionStar:     "Star recorded",
	domain.ActionBookmark: "Bookmark recorded",
}

// handleTitleAction records a view/star/bookmark on a title. The action
// kind is the final path segment.
// POST /api/v1/content/{slug}/{action}
func (s *Server) handleTitleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := getScope(ctx)
	if scope == nil {
		response.Unauthorized(w, "Missing API key", s.logger)
		return
	}

	slug := chi.URLParam(r, "slug")
	action := domain.ActionKind(r.URL.Path[strings.LastIndexByte(r.URL.Path, '/')+1:])

	if err := s.engagement.RecordTitleAction(ctx, scope, slug, getClientIP(r), action); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Message(w, actionMessages[action], s.logger)
}

// handleEpisodeView records a view on one episode.
// POST /api/v1/content/{slug}/{no}/view
func (s *Server) handleEpisodeView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := getScope(ctx)
	if scope == nil {
		response.Unauthorized(w, "Missing API key", s.logger)
		return
	}

	slug := chi.URLParam(r, "slug")
	no, err := strconv.Atoi(chi.URLParam(r, "no"))
	if err != nil || no < 1 {
		response.BadRequest(w, "Invalid episode number", s.logger)
		return
	}

	if err := s.engagement.RecordEpisodeView(ctx, scope, slug, no, getClientIP(r)); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Message(w, "Episode view recorded", s.logger)
}
