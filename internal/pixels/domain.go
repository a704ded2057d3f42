package pixels

import "time"

// Pixel is a third-party tracking snippet injected on the public site.
type Pixel struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Label     string    `json:"label"`
	Snippet   string    `json:"snippet"`
	IsEnabled bool      `json:"isEnabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
