package topic

import (
	"time"

	"catchup-feed/internal/domain/entity"
)

// DTO is the wire representation of a Topic.
type DTO struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Keywords      []string   `json:"keywords"`
	Enabled       bool       `json:"enabled"`
	LastFetchedAt *time.Time `json:"last_fetched_at,omitempty"`
}

func toDTO(t *entity.Topic) DTO {
	return DTO{
		ID:            t.ID,
		Name:          t.Name,
		Keywords:      t.Keywords,
		Enabled:       t.Enabled,
		LastFetchedAt: t.LastFetchedAt,
	}
}
