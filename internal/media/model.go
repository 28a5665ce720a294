package media

import "time"

type Media struct {
	ID        string    `json:"id"`
	Bytes     []byte    `json:"-"`
	MediaType string    `json:"media_type"`
	FileName  string    `json:"file_name"`
	FileSize  int       `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}
