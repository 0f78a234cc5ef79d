package domain

import "time"

// TitleType distinguishes the two serial formats the catalog carries.
type TitleType string

// Title types.
const (
	TypeSerialImage TitleType = "SERIAL_IMAGE" // episodes carry ordered image pages
	TypeSerialText  TitleType = "SERIAL_TEXT"  // episodes carry a text body
)

// Valid reports whether t is a known title type.
func (t TitleType) Valid() bool {
	return t == TypeSerialImage || t == TypeSerialText
}

// CompletionStatus tracks where a serial is in its run.
type CompletionStatus string

// Completion statuses.
const (
	CompletionOngoing   CompletionStatus = "ONGOING"
	CompletionCompleted CompletionStatus = "COMPLETED"
	CompletionHiatus    CompletionStatus = "HIATUS"
	CompletionCancelled CompletionStatus = "CANCELLED"
)

// PublishStatus controls catalog visibility. Only PUBLISHED titles are ever
// visible to search or the API; the store enforces this in every query.
type PublishStatus string

// Publish statuses.
const (
	PublishDraft     PublishStatus = "DRAFT"
	PublishPublished PublishStatus = "PUBLISHED"
	PublishArchived  PublishStatus = "ARCHIVED"
)

// Title represents a single serial in the catalog.
type Title struct {
	Entity
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	Description      string           `json:"description,omitempty"`
	ShortDescription string           `json:"short_description,omitempty"`
	Type             TitleType        `json:"type"`
	Locale           string           `json:"locale"`
	CountryOrigin    string           `json:"country_origin,omitempty"`
	AgeRating        string           `json:"age_rating,omitempty"`
	ThumbnailImage   string           `json:"thumbnail_image,omitempty"` // storage key, resolved by media.Resolver
	CoverImage       string           `json:"cover_image,omitempty"`     // storage key, resolved by media.Resolver
	ViewTotal        int64            `json:"view_total"`
	RatingValue      float64          `json:"rating_value"`
	RatingTotal      int64            `json:"rating_total"`
	LikeTotal        int64            `json:"like_total"`
	DislikeTotal     int64            `json:"dislike_total"`
	BookmarkTotal    int64            `json:"bookmark_total"`
	CompletionStatus CompletionStatus `json:"completion_status"`
	PublishStatus    PublishStatus    `json:"publish_status"`
	LastEpisodeAt    *time.Time       `json:"last_episode_at,omitempty"`
	Genres           []Genre          `json:"genres"`
}

// HasGenreSlug reports whether the title carries a genre with the given slug.
func (t *Title) HasGenreSlug(slug string) bool {
	for i := range t.Genres {
		if t.Genres[i].Slug == slug {
			return true
		}
	}
	return false
}

// HasAnyGenreID reports whether the title carries at least one of the given
// genre IDs. An empty set reports false.
func (t *Title) HasAnyGenreID(ids []string) bool {
	for i := range t.Genres {
		for _, id := range ids {
			if t.Genres[i].ID == id {
				return true
			}
		}
	}
	return false
}
