package domain

// Genre is a classification tag attached to titles. Genres are flat; a title
// carries any number of them and the set is unordered.
type Genre struct {
	Entity
	Name string `json:"name"`
	Slug string `json:"slug"`
}
