// Package analyze drives the analyzer stream engine (spec §4.10): crawl
// each pending article's publisher page, then run LLM enrichment over the
// crawled content, persisting the result and emitting progress events a
// caller can forward over a server-sent stream.
//
// New package, same grounding as internal/usecase/decode, chaining
// internal/infra/crawler then internal/infra/llm.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/infra/crawler"
	"catchup-feed/internal/infra/llm"
	"catchup-feed/internal/repository"
)

// ErrAlreadyRunning is returned by Run when the engine is already analyzing
// the same user's backlog, instead of starting a second concurrent stream
// (spec §4.11 point 4, §8 "Analyzer stream called when analysis is already
// running: no-op, no second stream started").
var ErrAlreadyRunning = errors.New("analyze: already running for this user")

// interItemDelay is the pacing applied between every article (spec §4.10
// point 6), regardless of outcome.
const interItemDelay = 500 * time.Millisecond

// EventType distinguishes a mid-stream progress tick from the terminal event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
)

// Event is emitted once per article (EventProgress) and once at the end of
// a run that drained its queue naturally (EventComplete), per spec §4.10
// points 5-6.
type Event struct {
	Type     EventType
	Analyzed int
	Failed   int
	Total    int
}

// Engine drives the analyzer stream for one user's eligible articles. One
// Engine is shared by the HTTP-triggered stream handler and the scheduler's
// analyze phase, so inFlight guards against both starting a run for the
// same user at once.
type Engine struct {
	articles repository.ArticleRepository
	crawler  *crawler.Client
	llm      *llm.Client

	inFlight sync.Map // userID -> struct{}
}

// New builds an Engine.
func New(articles repository.ArticleRepository, crawlerClient *crawler.Client, llmClient *llm.Client) *Engine {
	return &Engine{articles: articles, crawler: crawlerClient, llm: llmClient}
}

// Run loads up to limit articles eligible for analysis (decoded, decode not
// failed, not yet AI-processed) for userID, oldest first, and analyzes each
// in turn. It stops at the next article boundary if ctx is cancelled
// (spec's client-disconnect cancellation rule), returning nil in that case
// since draining partway is an acceptable outcome, not a failure — but it
// emits EventComplete only when the queue was drained naturally.
func (e *Engine) Run(ctx context.Context, userID string, limit int, emit func(Event)) error {
	if _, alreadyRunning := e.inFlight.LoadOrStore(userID, struct{}{}); alreadyRunning {
		return ErrAlreadyRunning
	}
	defer e.inFlight.Delete(userID)

	articles, err := e.articles.ListPendingAnalyze(ctx, userID, limit)
	if err != nil {
		return err
	}

	total := len(articles)
	analyzed, failed := 0, 0

	for i, article := range articles {
		if ctx.Err() != nil {
			return nil
		}

		if e.analyzeOne(ctx, article) {
			analyzed++
		} else {
			failed++
		}
		if err := e.articles.Update(ctx, article); err != nil {
			return err
		}
		emit(Event{Type: EventProgress, Analyzed: analyzed, Failed: failed, Total: total})

		if i < len(articles)-1 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interItemDelay):
			}
		}
	}

	emit(Event{Type: EventComplete, Analyzed: analyzed, Failed: failed, Total: total})
	return nil
}

// analyzeOne mutates article in place per spec §4.10 points 1-4, and
// reports whether the article ended in a genuinely analyzed state (LLM
// call attempted, successfully or not) as opposed to a retryable crawl
// failure.
func (e *Engine) analyzeOne(ctx context.Context, article *entity.Article) (succeeded bool) {
	content, err := e.crawler.FetchContent(ctx, article.CrawlURL())
	if err != nil {
		msg := fmt.Sprintf("crawl failed: %s", err.Error())
		article.AIError = &msg
		// ai_processed deliberately stays false: a transient crawler outage
		// must not burn through the article permanently (spec §4.10).
		return false
	}

	analysis, err := e.llm.Analyze(ctx, article.Title, content, article.Snippet)
	now := time.Now()
	article.AIProcessedAt = &now
	article.AIProcessed = true
	article.FullContent = &content
	if err != nil {
		msg := err.Error()
		article.AIError = &msg
		return true
	}

	article.Summary = &analysis.Summary
	sentiment := entity.Sentiment(analysis.Sentiment)
	article.Sentiment = &sentiment
	article.Categories = analysis.Categories
	article.AIReason = &analysis.Reason
	article.AIError = nil
	return true
}
