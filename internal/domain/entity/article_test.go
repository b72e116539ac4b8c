package entity

import (
	"testing"
	"time"
)

func TestArticle_CrawlURL(t *testing.T) {
	t.Run("returns decoded URL when set", func(t *testing.T) {
		decoded := "https://publisher.example/article"
		a := &Article{Link: "https://news.google.com/rss/articles/abc", DecodedURL: &decoded}
		if got := a.CrawlURL(); got != decoded {
			t.Errorf("CrawlURL() = %q, want %q", got, decoded)
		}
	})

	t.Run("falls back to link when no decoded URL", func(t *testing.T) {
		a := &Article{Link: "https://publisher.example/direct"}
		if got := a.CrawlURL(); got != a.Link {
			t.Errorf("CrawlURL() = %q, want %q", got, a.Link)
		}
	})

	t.Run("falls back to link when decoded URL is empty string", func(t *testing.T) {
		empty := ""
		a := &Article{Link: "https://publisher.example/direct", DecodedURL: &empty}
		if got := a.CrawlURL(); got != a.Link {
			t.Errorf("CrawlURL() = %q, want %q", got, a.Link)
		}
	})
}

func TestArticle_EligibleForCrawl(t *testing.T) {
	tests := []struct {
		name         string
		urlDecoded   bool
		decodeFailed bool
		want         bool
	}{
		{"decoded and not failed", true, false, true},
		{"not decoded", false, false, false},
		{"decoded but failed", true, true, false},
		{"not decoded and failed", false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Article{URLDecoded: tt.urlDecoded, DecodeFailed: tt.decodeFailed}
			if got := a.EligibleForCrawl(); got != tt.want {
				t.Errorf("EligibleForCrawl() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArticle_EligibleForAnalysis(t *testing.T) {
	t.Run("eligible when crawlable and not yet processed", func(t *testing.T) {
		a := &Article{URLDecoded: true, DecodeFailed: false, AIProcessed: false}
		if !a.EligibleForAnalysis() {
			t.Error("expected eligible for analysis")
		}
	})

	t.Run("not eligible once already processed", func(t *testing.T) {
		a := &Article{URLDecoded: true, DecodeFailed: false, AIProcessed: true}
		if a.EligibleForAnalysis() {
			t.Error("expected not eligible for analysis")
		}
	})

	t.Run("not eligible when not crawlable", func(t *testing.T) {
		a := &Article{URLDecoded: false, AIProcessed: false}
		if a.EligibleForAnalysis() {
			t.Error("expected not eligible for analysis")
		}
	})
}

func TestArticle_MergeTopicIDs(t *testing.T) {
	t.Run("unions without duplicates", func(t *testing.T) {
		a := &Article{MatchedTopicIDs: []int64{1, 2}}
		a.MergeTopicIDs([]int64{2, 3})
		want := []int64{1, 2, 3}
		if len(a.MatchedTopicIDs) != len(want) {
			t.Fatalf("MatchedTopicIDs = %v, want %v", a.MatchedTopicIDs, want)
		}
		for i, id := range want {
			if a.MatchedTopicIDs[i] != id {
				t.Errorf("MatchedTopicIDs[%d] = %d, want %d", i, a.MatchedTopicIDs[i], id)
			}
		}
	})

	t.Run("starting from empty", func(t *testing.T) {
		a := &Article{}
		a.MergeTopicIDs([]int64{5})
		if len(a.MatchedTopicIDs) != 1 || a.MatchedTopicIDs[0] != 5 {
			t.Errorf("MatchedTopicIDs = %v, want [5]", a.MatchedTopicIDs)
		}
	})

	t.Run("merging nothing new is a no-op", func(t *testing.T) {
		a := &Article{MatchedTopicIDs: []int64{1, 2}}
		a.MergeTopicIDs([]int64{1, 2})
		if len(a.MatchedTopicIDs) != 2 {
			t.Errorf("MatchedTopicIDs = %v, want unchanged [1 2]", a.MatchedTopicIDs)
		}
	})
}

func TestArticle_PublishedAtNil(t *testing.T) {
	a := &Article{}
	if a.PublishedAt != nil {
		t.Error("zero-value Article should have nil PublishedAt")
	}
	now := time.Now()
	a.PublishedAt = &now
	if a.PublishedAt == nil {
		t.Error("expected PublishedAt to be set")
	}
}
