package analytics

import "time"

// Visit is one captured page view from the public site.
type Visit struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	VisitorID string    `json:"visitorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DailyCount is one point of the visits-per-day series.
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// PageCount is one row of the most-visited-pages table.
type PageCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// Stats is the aggregated dashboard payload.
type Stats struct {
	TotalVisits    int64        `json:"totalVisits"`
	UniqueVisitors int64        `json:"uniqueVisitors"`
	PerDay         []DailyCount `json:"perDay"`
	TopPages       []PageCount  `json:"topPages"`
}

// StatsRange scopes aggregation queries.
type StatsRange struct {
	From time.Time
	To   time.Time
}
