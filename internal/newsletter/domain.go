package newsletter

import "time"

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	UnsubscribeToken string     `json:"-"`
	SubscribedAt     time.Time  `json:"subscribedAt"`
	UnsubscribedAt   *time.Time `json:"unsubscribedAt,omitempty"`
}

// Active reports whether the subscriber still receives the newsletter.
func (s Subscriber) Active() bool {
	return s.UnsubscribedAt == nil
}
