package article

import (
	"time"

	"catchup-feed/internal/domain/entity"
)

// DTO is the wire representation of an Article.
type DTO struct {
	ID              int64      `json:"id"`
	Link            string     `json:"link"`
	SourceType      string     `json:"source_type"`
	Title           string     `json:"title"`
	Snippet         string     `json:"snippet"`
	PublisherName   string     `json:"publisher_name"`
	PublisherURL    string     `json:"publisher_url"`
	PhotoURL        string     `json:"photo_url,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	MatchedTopicIDs []int64    `json:"matched_topic_ids"`
	URLDecoded      bool       `json:"url_decoded"`
	DecodeFailed    bool       `json:"decode_failed"`
	AIProcessed     bool       `json:"ai_processed"`
	AIError         *string    `json:"ai_error,omitempty"`
	Summary         *string    `json:"summary,omitempty"`
	Sentiment       *string    `json:"sentiment,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	AIReason        *string    `json:"ai_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toDTO(a *entity.Article) DTO {
	dto := DTO{
		ID:              a.ID,
		Link:            a.Link,
		SourceType:      string(a.SourceType),
		Title:           a.Title,
		Snippet:         a.Snippet,
		PublisherName:   a.PublisherName,
		PublisherURL:    a.PublisherURL,
		PhotoURL:        a.PhotoURL,
		PublishedAt:     a.PublishedAt,
		MatchedTopicIDs: a.MatchedTopicIDs,
		URLDecoded:      a.URLDecoded,
		DecodeFailed:    a.DecodeFailed,
		AIProcessed:     a.AIProcessed,
		AIError:         a.AIError,
		Summary:         a.Summary,
		Categories:      a.Categories,
		AIReason:        a.AIReason,
		CreatedAt:       a.CreatedAt,
	}
	if a.Sentiment != nil {
		s := string(*a.Sentiment)
		dto.Sentiment = &s
	}
	return dto
}

func toDTOs(list []*entity.Article) []DTO {
	out := make([]DTO, 0, len(list))
	for _, a := range list {
		out = append(out, toDTO(a))
	}
	return out
}

// CountersDTO is the wire representation of the KPI counters.
type CountersDTO struct {
	Analyzed       int64 `json:"analyzed"`
	Failed         int64 `json:"failed"`
	PendingAnalyze int64 `json:"pending_analyze"`
	PendingDecode  int64 `json:"pending_decode"`
}

func toCountersDTO(c entity.ArticleCounters) CountersDTO {
	return CountersDTO{
		Analyzed:       c.Analyzed,
		Failed:         c.Failed,
		PendingAnalyze: c.PendingAnalyze,
		PendingDecode:  c.PendingDecode,
	}
}
