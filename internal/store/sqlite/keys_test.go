package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/store"
)

func TestGetScopeForKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	scope := domain.AccessScope{
		Type:          domain.TypeSerialImage,
		Locale:        "en",
		IncludeGenres: []string{"gen-1", "gen-2"},
		ExcludeGenres: []string{"gen-3"},
	}
	if err := s.CreateAPIKey(ctx, "key-1", "tok-abc", scope); err != nil {
		t.Fatalf("create api key: %v", err)
	}

	got, err := s.GetScopeForKey(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("get scope: %v", err)
	}
	if got.KeyID != "key-1" {
		t.Errorf("expected key-1, got %s", got.KeyID)
	}
	if got.Type != domain.TypeSerialImage {
		t.Errorf("expected SERIAL_IMAGE, got %s", got.Type)
	}
	if got.Locale != "en" {
		t.Errorf("expected en, got %s", got.Locale)
	}
	if len(got.IncludeGenres) != 2 || len(got.ExcludeGenres) != 1 {
		t.Errorf("expected genre lists round-trip, got %v / %v", got.IncludeGenres, got.ExcludeGenres)
	}
}

func TestGetScopeForKeyUnknown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetScopeForKey(ctx, "no-such-token")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetScopeForKeyDeactivated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	scope := domain.AccessScope{Type: domain.TypeSerialText}
	if err := s.CreateAPIKey(ctx, "key-1", "tok-abc", scope); err != nil {
		t.Fatalf("create api key: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE api_keys SET active = 0 WHERE id = 'key-1'`); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := s.GetScopeForKey(ctx, "tok-abc")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for deactivated key, got %v", err)
	}
}

func TestGetScopeForKeyEmptyGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	scope := domain.AccessScope{Type: domain.TypeSerialImage}
	if err := s.CreateAPIKey(ctx, "key-1", "tok-abc", scope); err != nil {
		t.Fatalf("create api key: %v", err)
	}

	got, err := s.GetScopeForKey(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("get scope: %v", err)
	}
	if len(got.IncludeGenres) != 0 || len(got.ExcludeGenres) != 0 {
		t.Errorf("expected empty genre lists, got %v / %v", got.IncludeGenres, got.ExcludeGenres)
	}
}
