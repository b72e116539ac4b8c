package feedreader

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Oil &amp; Gas Daily</title>
  <link>https://oilgas.example.com</link>
  <item>
    <title>Produksi Migas Meningkat</title>
    <link>https://oilgas.example.com/articles/1</link>
    <description>&lt;p&gt;Produksi migas nasional naik 5 persen.&lt;/p&gt;</description>
    <media:thumbnail url="https://oilgas.example.com/thumb/1.jpg"/>
    <pubDate>Mon, 02 Jan 2006 15:04:05 +0700</pubDate>
  </item>
  <item>
    <title>No Link Item</title>
    <description>Should be skipped.</description>
  </item>
  <item>
    <link>https://oilgas.example.com/articles/3</link>
    <description>No title, should be skipped.</description>
  </item>
</channel>
</rss>`

func TestReader_Fetch_ParsesItemsAndSkipsIncomplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	reader := NewReader(server.Client())
	items, err := reader.Fetch(t.Context(), server.URL)
	if err != nil {
		t.Fatalf("Fetch err=%v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1 (incomplete items dropped)", len(items))
	}

	got := items[0]
	if got.Title != "Produksi Migas Meningkat" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Link != "https://oilgas.example.com/articles/1" {
		t.Errorf("Link = %q", got.Link)
	}
	if got.Snippet != "Produksi migas nasional naik 5 persen." {
		t.Errorf("Snippet = %q, want HTML stripped", got.Snippet)
	}
	if got.PhotoURL != "https://oilgas.example.com/thumb/1.jpg" {
		t.Errorf("PhotoURL = %q, want media:thumbnail fallback", got.PhotoURL)
	}
	if got.PublisherName != "Oil & Gas Daily" {
		t.Errorf("PublisherName = %q", got.PublisherName)
	}
	if got.PublishedAt == nil {
		t.Error("expected a parsed PublishedAt")
	}
}

func TestExtractSnippet_PrefersDescriptionOverContent(t *testing.T) {
	it := &gofeed.Item{
		Description: "<b>Plain snippet</b>",
		Content:     "<p>Fallback content that should not be used</p>",
	}
	got := extractSnippet(it)
	if got != "Plain snippet" {
		t.Errorf("got %q", got)
	}
}

func TestExtractSnippet_FallsBackToContent(t *testing.T) {
	it := &gofeed.Item{
		Content: "<p>Only content available</p>",
	}
	got := extractSnippet(it)
	if got != "Only content available" {
		t.Errorf("got %q", got)
	}
}

func TestExtractSnippet_CapsAt500Runes(t *testing.T) {
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}
	it := &gofeed.Item{Description: string(long)}
	got := extractSnippet(it)
	if len([]rune(got)) != maxSnippetRunes {
		t.Errorf("len = %d, want %d", len([]rune(got)), maxSnippetRunes)
	}
}

func TestExtractPhoto_PrefersEnclosureOverMedia(t *testing.T) {
	it := &gofeed.Item{
		Enclosures: []*gofeed.Enclosure{{URL: "https://example.com/enclosure.jpg"}},
		Extensions: ext.Extensions{
			"media": {"content": {{Attrs: map[string]string{"url": "https://example.com/media-content.jpg"}}}},
		},
	}
	got := extractPhoto(it)
	if got != "https://example.com/enclosure.jpg" {
		t.Errorf("got %q, want enclosure URL", got)
	}
}

func TestExtractPhoto_FallsBackToMediaContentThenThumbnail(t *testing.T) {
	contentOnly := &gofeed.Item{
		Extensions: ext.Extensions{
			"media": {"content": {{Attrs: map[string]string{"url": "https://example.com/media-content.jpg"}}}},
		},
	}
	if got := extractPhoto(contentOnly); got != "https://example.com/media-content.jpg" {
		t.Errorf("got %q, want media:content", got)
	}

	thumbnailOnly := &gofeed.Item{
		Extensions: ext.Extensions{
			"media": {"thumbnail": {{Attrs: map[string]string{"url": "https://example.com/media-thumb.jpg"}}}},
		},
	}
	if got := extractPhoto(thumbnailOnly); got != "https://example.com/media-thumb.jpg" {
		t.Errorf("got %q, want media:thumbnail", got)
	}
}

func TestExtractPhoto_NoSourceReturnsEmpty(t *testing.T) {
	if got := extractPhoto(&gofeed.Item{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestItemsFromFeed_RequiresTitleAndLink(t *testing.T) {
	now := time.Now()
	feed := &gofeed.Feed{
		Title: "Feed",
		Link:  "https://example.com",
		Items: []*gofeed.Item{
			{Title: "Has both", Link: "https://example.com/a", PublishedParsed: &now},
			{Title: "Missing link"},
			{Link: "https://example.com/b"},
		},
	}
	items := itemsFromFeed(feed)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Title != "Has both" {
		t.Errorf("Title = %q", items[0].Title)
	}
}
