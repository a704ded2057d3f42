package contact

import "time"

// Info is the site-wide contact block. A single row, updated in place.
type Info struct {
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Instagram string    `json:"instagram,omitempty"`
	LinkedIn  string    `json:"linkedin,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
