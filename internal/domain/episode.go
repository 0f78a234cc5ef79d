package domain

import "fmt"

// EpisodeData is the payload of an episode. Exactly one of Images or Content
// is set, determined by the owning title's type: SERIAL_IMAGE episodes carry
// an ordered page list, SERIAL_TEXT episodes carry a text body.
type EpisodeData struct {
	Images  []string `json:"images,omitempty"` // storage keys, resolved by media.Resolver
	Content string   `json:"content,omitempty"`
}

// Episode is one installment of a Title. No is positive and unique within
// the title.
type Episode struct {
	Entity
	TitleID   string      `json:"title_id"`
	Name      string      `json:"name,omitempty"`
	No        int         `json:"no"`
	Data      EpisodeData `json:"data"`
	ViewCount int64       `json:"view_count"`
}

// ValidateData checks the payload against the owning title's type.
func (e *Episode) ValidateData(titleType TitleType) error {
	switch titleType {
	case TypeSerialImage:
		if len(e.Data.Images) == 0 {
			return fmt.Errorf("episode %d: serial-image episode has no images", e.No)
		}
		if e.Data.Content != "" {
			return fmt.Errorf("episode %d: serial-image episode carries text content", e.No)
		}
	case TypeSerialText:
		if e.Data.Content == "" {
			return fmt.Errorf("episode %d: serial-text episode has no content", e.No)
		}
		if len(e.Data.Images) > 0 {
			return fmt.Errorf("episode %d: serial-text episode carries images", e.No)
		}
	default:
		return fmt.Errorf("episode %d: unknown title type %q", e.No, titleType)
	}
	return nil
}
