package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/store"
)

// Match score tiers. Exact name beats name prefix beats name substring
// beats a description hit; the gaps leave room for future refinement
// without reordering tiers.
const (
	scoreExactName     = 100
	scoreNamePrefix    = 75
	scoreNameSubstring = 50
	scoreDescription   = 25
)

// Catalog is the read-only accessor the engine queries. *sqlite.Store
// satisfies it; tests use an in-memory fixture.
type Catalog interface {
	ListPublishedTitles(ctx context.Context, filter store.TitleFilter) ([]*domain.Title, error)
	ListPublishedNames(ctx context.Context) ([]store.NameRow, error)
}

// RankedTitle is one search result with its match score and, when a query
// was supplied, highlighted copies of the display fields.
type RankedTitle struct {
	Title      *domain.Title
	Score      int
	Highlights *Highlights
}

// Pagination describes the slice of the candidate set a result carries.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Meta echoes the query and reports timing. Only present when the request
// carried a text query.
type Meta struct {
	Query        string `json:"query"`
	TotalResults int    `json:"totalResults"`
	SearchTime   int64  `json:"searchTime"` // milliseconds
}

// Result is a scored, ordered, paginated page of titles.
type Result struct {
	Items      []RankedTitle
	Pagination Pagination
	Meta       *Meta
}

// Search executes a composed query against the catalog: fetch candidates,
// score against the text query, order, and slice out the requested page.
// An empty candidate set is not an error.
func Search(ctx context.Context, catalog Catalog, spec QuerySpec) (*Result, error) {
	started := time.Now()

	titles, err := catalog.ListPublishedTitles(ctx, spec.storeFilter())
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(spec.Query)

	ranked := make([]RankedTitle, 0, len(titles))
	for _, t := range titles {
		score := 0
		if query != "" {
			score = matchScore(t, query)
			if score == 0 {
				continue
			}
		}
		ranked = append(ranked, RankedTitle{Title: t, Score: score})
	}

	order(ranked, spec)

	total := len(ranked)
	page := paginate(ranked, spec.Page, spec.Limit)

	if query != "" {
		for i := range page {
			page[i].Highlights = HighlightTitle(page[i].Title, spec.Query)
		}
	}

	result := &Result{
		Items: page,
		Pagination: Pagination{
			Page:       spec.Page,
			Limit:      spec.Limit,
			Total:      total,
			TotalPages: (total + spec.Limit - 1) / spec.Limit,
		},
	}
	if spec.Query != "" {
		result.Meta = &Meta{
			Query:        spec.Query,
			TotalResults: total,
			SearchTime:   time.Since(started).Milliseconds(),
		}
	}
	return result, nil
}

// matchScore returns the text-match tier for a title against a lowercased
// query, or 0 for no match. Multi-word queries that only match token by
// token across the display fields score at the description tier.
func matchScore(t *domain.Title, query string) int {
	name := strings.ToLower(t.Name)

	switch {
	case name == query:
		return scoreExactName
	case strings.HasPrefix(name, query):
		return scoreNamePrefix
	case strings.Contains(name, query):
		return scoreNameSubstring
	}

	short := strings.ToLower(t.ShortDescription)
	desc := strings.ToLower(t.Description)
	if strings.Contains(short, query) || strings.Contains(desc, query) {
		return scoreDescription
	}

	tokens := strings.Fields(query)
	if len(tokens) < 2 {
		return 0
	}
	haystack := name + " " + short + " " + desc
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return 0
		}
	}
	return scoreDescription
}

// order sorts ranked in place according to the spec's sort mode. Every
// mode ends at an id comparison, so equal catalogs always produce
// identical orderings.
func order(ranked []RankedTitle, spec QuerySpec) {
	mode := spec.Sort
	if mode == SortRelevance && spec.Query == "" {
		mode = SortPopularity
	}

	var less func(a, b *RankedTitle) bool
	switch mode {
	case SortRelevance:
		less = func(a, b *RankedTitle) bool {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Title.ViewTotal != b.Title.ViewTotal {
				return a.Title.ViewTotal > b.Title.ViewTotal
			}
			return a.Title.ID < b.Title.ID
		}
	case SortPopularity:
		less = func(a, b *RankedTitle) bool {
			if a.Title.ViewTotal != b.Title.ViewTotal {
				return a.Title.ViewTotal > b.Title.ViewTotal
			}
			return a.Title.ID < b.Title.ID
		}
	case SortRating:
		less = func(a, b *RankedTitle) bool {
			if a.Title.RatingValue != b.Title.RatingValue {
				return a.Title.RatingValue > b.Title.RatingValue
			}
			return a.Title.ID < b.Title.ID
		}
	case SortRecent:
		less = func(a, b *RankedTitle) bool {
			at, bt := a.Title.LastEpisodeAt, b.Title.LastEpisodeAt
			switch {
			case at != nil && bt != nil:
				if !at.Equal(*bt) {
					return at.After(*bt)
				}
			case at != nil:
				return true // nulls last
			case bt != nil:
				return false
			}
			return a.Title.ID < b.Title.ID
		}
	case SortAlphabetical:
		coll := collate.New(language.Make(spec.Locale))
		less = func(a, b *RankedTitle) bool {
			if c := coll.CompareString(a.Title.Name, b.Title.Name); c != 0 {
				return c < 0
			}
			return a.Title.ID < b.Title.ID
		}
	}

	sort.Slice(ranked, func(i, j int) bool { return less(&ranked[i], &ranked[j]) })
}

// paginate slices out the requested page. Pages past the end are empty,
// not an error.
func paginate(ranked []RankedTitle, page, limit int) []RankedTitle {
	skip := (page - 1) * limit
	if skip >= len(ranked) {
		return []RankedTitle{}
	}
	end := skip + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[skip:end]
}
