package feed

import "catchup-feed/internal/domain/entity"

// DTO is the wire representation of a Feed.
type DTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

func toDTO(f *entity.Feed) DTO {
	return DTO{ID: f.ID, Name: f.Name, URL: f.URL, Enabled: f.Enabled}
}
