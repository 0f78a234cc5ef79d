package search

import (
	"context"
	"sort"
	"strings"

	"github.com/hydrahub/hydra-server/internal/store"
)

const (
	// MinSuggestionLength is the shortest input the index answers for.
	MinSuggestionLength = 2
	// MaxSuggestions caps a single suggestion response.
	MaxSuggestions = 20
	// DefaultSuggestions is used when the request omits a limit.
	DefaultSuggestions = 10
)

// Suggest returns up to limit distinct title names containing the input,
// prefix matches ranked above substring matches, ties broken by
// popularity then id. Input shorter than the minimum yields an empty
// list, never an error.
func Suggest(ctx context.Context, catalog Catalog, input string, limit int) ([]string, error) {
	input = strings.TrimSpace(input)
	if len(input) < MinSuggestionLength {
		return []string{}, nil
	}
	if limit < 1 {
		limit = DefaultSuggestions
	}
	if limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	names, err := catalog.ListPublishedNames(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(input)

	type candidate struct {
		row   store.NameRow
		score int
	}
	var candidates []candidate
	seen := make(map[string]bool)
	for _, row := range names {
		name := strings.ToLower(row.Name)
		var score int
		switch {
		case name == query:
			score = scoreExactName
		case strings.HasPrefix(name, query):
			score = scoreNamePrefix
		case strings.Contains(name, query):
			score = scoreNameSubstring
		default:
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		candidates = append(candidates, candidate{row: row, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.row.ViewTotal != b.row.ViewTotal {
			return a.row.ViewTotal > b.row.ViewTotal
		}
		return a.row.ID < b.row.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.row.Name
	}
	return out, nil
}
