package media

import "time"

// Asset is an uploaded image record. The binary lives with the external
// image host; only the metadata is stored here.
type Asset struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	PublicID  string    `json:"publicId"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimeType"`
	SizeBytes int64     `json:"sizeBytes"`
	Folder    string    `json:"folder,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
