package domain

// AccessScope is the visibility contract attached to an API key. Every field
// restricts what the key's caller may see; a request can narrow a scope but
// never widen it. Genre sets hold genre IDs.
type AccessScope struct {
	KeyID         string    `json:"key_id"`
	Type          TitleType `json:"type"`
	Locale        string    `json:"locale,omitempty"`
	IncludeGenres []string  `json:"include_genres,omitempty"`
	ExcludeGenres []string  `json:"exclude_genres,omitempty"`
}

// ActionKind names an engagement action a visitor can perform on a subject.
type ActionKind string

// Engagement actions.
const (
	ActionView     ActionKind = "view"
	ActionStar     ActionKind = "star"
	ActionBookmark ActionKind = "bookmark"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	return k == ActionView || k == ActionStar || k == ActionBookmark
}
