package testimonials

import "time"

// Testimonial is a client quote. Only published entries appear on the
// public site.
type Testimonial struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	Company     string    `json:"company,omitempty"`
	Quote       string    `json:"quote"`
	Rating      int       `json:"rating"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
