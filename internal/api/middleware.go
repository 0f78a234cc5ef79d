package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/http/response"
	"github.com/hydrahub/hydra-server/internal/ratelimit"
)

// apiKeyHeader carries the caller's API key.
const apiKeyHeader = "X-API-Key"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyScope contextKey = "access_scope"

// requireAPIKey resolves the caller's API key to its access scope and
// attaches it to the request context. Health checks and docs stay open.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get(apiKeyHeader)
		if token == "" {
			response.Unauthorized(w, "Missing API key", s.logger)
			return
		}

		scope, err := s.keys.GetScopeForKey(r.Context(), token)
		if err != nil {
			response.Unauthorized(w, "Invalid API key", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyScope, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isPublicPath reports whether a path is served without an API key.
// Health checks and the generated OpenAPI surface stay open.
func isPublicPath(path string) bool {
	switch path {
	case "/health", "/openapi.json", "/openapi.yaml", "/docs":
		return true
	}
	return strings.HasPrefix(path, "/schemas/")
}

// getScope extracts the caller's access scope from request context.
func getScope(ctx context.Context) *domain.AccessScope {
	if scope, ok := ctx.Value(contextKeyScope).(*domain.AccessScope); ok {
		return scope
	}
	return nil
}

// rateLimitByIP limits a handler per caller address. Returns 429 when
// the bucket is exhausted.
func (s *Server) rateLimitByIP(limiter *ratelimit.KeyedRateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := getClientIP(r)
		if !limiter.Allow(key) {
			s.logger.Warn("rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
			)
			response.TooManyRequests(w, "Rate limit exceeded", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in the chain.
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	// Strip the port from RemoteAddr.
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
