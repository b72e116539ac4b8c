// Package urlcodec resolves an aggregator's opaque article identifier to the
// publisher URL it actually points at (spec §4.2). Grounded on the teacher's
// internal/infra/scraper (goquery-based DOM scraping for signature/timestamp
// extraction) and internal/infra/summarizer (circuit-breaker + retry wrapped
// external call) idioms.
package urlcodec

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/httpclient"
	"catchup-feed/internal/repository"
)

// aggregatorHost is the only host Decode will ever dereference or scrape.
const aggregatorHost = "news.google.com"

const batchExecuteURL = "https://news.google.com/_/DotsSplashUi/data/batchexecute"

// DOM attributes carrying the signature/timestamp pair on an aggregator
// article page, scraped via goquery the same way the teacher's
// WebflowScraper pulls attributes off a CSS-selected element.
const (
	paramsSelector = "c-wiz > div[data-n-a-id]"
	sigAttr        = "data-n-a-sg"
	tsAttr         = "data-n-a-ts"
)

var directDecodePrefix = []byte{0x08, 0x13, 0x22}
var directDecodeSuffix = []byte{0xd2, 0x01, 0x00}

const (
	maxHTMLBytes     = 2 * 1024 * 1024
	maxResponseBytes = 256 * 1024
)

var reservedPathSegments = map[string]bool{
	"rss":      true,
	"articles": true,
	"read":     true,
	"search":   true,
}

// Result is the outcome of a single Decode call. Remote records whether a
// network round-trip was made, so callers (internal/usecase/decode) can
// apply the "sleep only if a remote call happened" throughput rule of §4.9.
type Result struct {
	URL       string
	FromCache bool
	Remote    bool
}

// Decoder resolves aggregator URLs, backed by a shared Postgres cache so a
// resolution made for one user benefits every other user.
type Decoder struct {
	client *httpclient.Client
	cache  repository.URLCacheRepository
}

// New builds a Decoder. client should be constructed with
// circuitbreaker.AggregatorConfig()/retry.AggregatorConfig() so decode calls
// share the aggregator's breaker with the search component.
func New(client *httpclient.Client, cache repository.URLCacheRepository) *Decoder {
	return &Decoder{client: client, cache: cache}
}

// Decode resolves rawURL to the publisher URL it points at. Non-aggregator
// URLs pass through untouched (point 1). Aggregator URLs are resolved via
// the shared cache, then the direct-decode path, then the signed-batch path.
func (d *Decoder) Decode(ctx context.Context, rawURL string) (Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidURLShape, err)
	}
	if u.Hostname() != aggregatorHost {
		return Result{URL: rawURL}, nil
	}

	id, err := extractID(u)
	if err != nil {
		return Result{}, err
	}

	if resolved, err := d.cache.Get(ctx, id); err == nil && resolved != nil {
		return Result{URL: resolved.ResolvedURL, FromCache: true}, nil
	}

	if resolved, ok := directDecode(id); ok {
		_ = d.cache.Put(ctx, entity.URLCacheEntry{ID: id, ResolvedURL: resolved})
		return Result{URL: resolved}, nil
	}

	resolved, err := d.decodeSignedBatch(ctx, rawURL, id)
	if err != nil {
		// A network attempt was made even though it failed, so the caller's
		// aggregator-politeness throttle (spec §4.9 point 3e) still applies.
		return Result{Remote: true}, err
	}
	_ = d.cache.Put(ctx, entity.URLCacheEntry{ID: id, ResolvedURL: resolved})
	return Result{URL: resolved, Remote: true}, nil
}

// extractID returns the last non-reserved path segment (point 2).
func extractID(u *url.URL) (string, error) {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || reservedPathSegments[seg] {
			continue
		}
		return seg, nil
	}
	return "", ErrInvalidURLShape
}

// ExtractAggregatorID returns the opaque id embedded in rawURL, and whether
// rawURL is an aggregator URL at all. Exported for internal/usecase/decode,
// which bulk-preloads the URL cache for a whole batch of articles (spec
// §4.9 point 2) before calling Decode article-by-article.
func ExtractAggregatorID(rawURL string) (id string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() != aggregatorHost {
		return "", false
	}
	extracted, err := extractID(u)
	if err != nil {
		return "", false
	}
	return extracted, true
}

// directDecode implements the direct-decode path (point 3): identifiers
// whose base64 payload carries a recognizable structural prefix embed the
// resolved URL directly, so no remote call is needed.
func directDecode(id string) (string, bool) {
	padded := id
	if rem := len(padded) % 4; rem != 0 {
		padded += strings.Repeat("=", 4-rem)
	}
	decoded, err := base64.URLEncoding.DecodeString(padded)
	if err != nil {
		return "", false
	}
	if !bytes.HasPrefix(decoded, directDecodePrefix) {
		return "", false
	}
	rest := bytes.TrimSuffix(decoded[len(directDecodePrefix):], directDecodeSuffix)
	if len(rest) == 0 {
		return "", false
	}

	length := int(rest[0])
	var payload []byte
	if length >= 0x80 {
		if len(rest) < length+2 {
			return "", false
		}
		payload = rest[2 : length+2]
	} else {
		if len(rest) < length+1 {
			return "", false
		}
		payload = rest[1 : length+1]
	}

	s := string(payload)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return "", false
	}
	return s, true
}

// decodeSignedBatch implements the signed-batch path (point 4): scrape a
// signature/timestamp pair off the article page, POST a batchexecute
// payload, and parse the bespoke response envelope.
func (d *Decoder) decodeSignedBatch(ctx context.Context, articleURL, id string) (string, error) {
	resp, err := d.client.Get(ctx, articleURL)
	if err != nil {
		return "", fmt.Errorf("%w: fetch article page: %v", ErrDecodingParamsFailed, err)
	}
	html, err := httpclient.ReadBody(resp, maxHTMLBytes)
	if err != nil {
		return "", fmt.Errorf("%w: read article page: %v", ErrDecodingParamsFailed, err)
	}

	sig, ts, err := scrapeSigTS(html)
	if err != nil {
		return "", err
	}

	payload, err := buildBatchPayload(id, ts, sig)
	if err != nil {
		return "", fmt.Errorf("%w: build payload: %v", ErrDecodingParamsFailed, err)
	}

	batchResp, err := d.client.Do(ctx, http.MethodPost, batchExecuteURL,
		map[string]string{"Content-Type": "application/x-www-form-urlencoded;charset=UTF-8"},
		func() io.Reader { return bytes.NewReader(payload) },
	)
	if err != nil {
		return "", fmt.Errorf("%w: batchexecute call: %v", ErrDecodingParamsFailed, err)
	}
	body, err := httpclient.ReadBody(batchResp, maxResponseBytes)
	if err != nil {
		return "", fmt.Errorf("%w: read batchexecute response: %v", ErrDecodeResponseInvalid, err)
	}

	resolved, err := parseBatchResponse(body)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// scrapeSigTS pulls the signature/timestamp pair from the known DOM
// attribute pair on the aggregator's article page.
func scrapeSigTS(html []byte) (sig, ts string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("%w: parse HTML: %v", ErrDecodingParamsFailed, err)
	}

	sel := doc.Find(paramsSelector).First()
	if sel.Length() == 0 {
		return "", "", ErrDecodingParamsFailed
	}
	sig, sigOK := sel.Attr(sigAttr)
	ts, tsOK := sel.Attr(tsAttr)
	if !sigOK || !tsOK || sig == "" || ts == "" {
		return "", "", ErrDecodingParamsFailed
	}
	return sig, ts, nil
}

// buildBatchPayload builds the `[["garturlreq", …, id, ts, sig]]` batch
// payload named by spec §4.2 point 4.
func buildBatchPayload(id, ts, sig string) ([]byte, error) {
	inner, err := json.Marshal([]interface{}{"garturlreq", id, ts, sig})
	if err != nil {
		return nil, err
	}
	outer := []interface{}{
		[]interface{}{
			[]interface{}{"Fbv4je", string(inner), nil, "generic"},
		},
	}
	envelope, err := json.Marshal(outer)
	if err != nil {
		return nil, err
	}
	form := "f.req=" + url.QueryEscape(string(envelope))
	return []byte(form), nil
}

// parseBatchResponse extracts the resolved URL from the batchexecute
// response envelope: lines split on "\n\n", the second line is JSON, the
// payload at [0][2] is a JSON-stringified array whose element [1] is the
// resolved URL (spec §4.2 point 4).
func parseBatchResponse(body []byte) (string, error) {
	parts := bytes.SplitN(body, []byte("\n\n"), 2)
	if len(parts) < 2 {
		return "", ErrDecodeResponseInvalid
	}

	var outer []interface{}
	if err := json.Unmarshal(parts[1], &outer); err != nil || len(outer) == 0 {
		return "", ErrDecodeResponseInvalid
	}
	row, ok := outer[0].([]interface{})
	if !ok || len(row) < 3 {
		return "", ErrDecodeResponseInvalid
	}
	inner, ok := row[2].(string)
	if !ok {
		return "", ErrDecodeResponseInvalid
	}

	var arr []interface{}
	if err := json.Unmarshal([]byte(inner), &arr); err != nil || len(arr) < 2 {
		return "", ErrDecodeResponseInvalid
	}
	resolved, ok := arr[1].(string)
	if !ok || resolved == "" {
		return "", ErrDecodeResponseInvalid
	}
	return resolved, nil
}
