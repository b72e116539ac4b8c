package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	pgRepo "catchup-feed/internal/infra/adapter/persistence/postgres"
	"catchup-feed/internal/infra/aggsearch"
	"catchup-feed/internal/infra/crawler"
	"catchup-feed/internal/infra/db"
	"catchup-feed/internal/infra/feedreader"
	"catchup-feed/internal/infra/httpclient"
	"catchup-feed/internal/infra/llm"
	"catchup-feed/internal/infra/notifier"
	"catchup-feed/internal/infra/urlcodec"
	workerPkg "catchup-feed/internal/infra/worker"
	"catchup-feed/internal/resilience/circuitbreaker"
	"catchup-feed/internal/resilience/retry"
	"catchup-feed/internal/usecase/analyze"
	"catchup-feed/internal/usecase/decode"
	"catchup-feed/internal/usecase/ingest"
	"catchup-feed/internal/usecase/notify"
	"catchup-feed/internal/usecase/scheduler"
)

// mountTriggerDelay is the mount-trigger's startup delay (spec §4.11
// Triggers: "on mount (delayed 2s)").
const mountTriggerDelay = 2 * time.Second

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM scheduler_state LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("crawl_timeout", workerConfig.CrawlTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	discordConfig := loadDiscordConfig(logger)
	var discordChannel notify.Channel
	if discordConfig.Enabled {
		discordChannel = notify.NewDiscordChannel(discordConfig)
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	slackConfig := loadSlackConfig(logger)
	var slackChannel notify.Channel
	if slackConfig.Enabled {
		slackChannel = notify.NewSlackChannel(slackConfig)
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	var channels []notify.Channel
	if discordChannel != nil {
		channels = append(channels, discordChannel)
	}
	if slackChannel != nil {
		channels = append(channels, slackChannel)
	}

	notifyService := notify.NewService(channels, workerConfig.NotifyMaxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", workerConfig.NotifyMaxConcurrent))

	startMetricsServer(ctx, logger, notifyService)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	sched := setupScheduler(logger, database, notifyService)

	startCronWorker(ctx, logger, sched, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupScheduler wires the auto-fetch pipeline's collaborators: the
// postgres repositories, the aggregator/RSS ingestion orchestrator, the
// URL decoder, and the crawler/LLM analyzer (spec §4.11).
func setupScheduler(logger *slog.Logger, database *sql.DB, notifyService notify.Service) *scheduler.Scheduler {
	topics := pgRepo.NewTopicRepo(database)
	feeds := pgRepo.NewFeedRepo(database)
	articles := pgRepo.NewArticleRepo(database)
	urlCache := pgRepo.NewURLCacheRepo(database)
	schedulerState := pgRepo.NewSchedulerStateRepo(database)

	reader := feedreader.NewReader(createHTTPClient())
	searcher := aggsearch.NewSearcher(reader, aggsearch.DefaultSearchBase)
	orchestrator := ingest.New(topics, feeds, articles, searcher, reader)

	aggregatorClient := httpclient.New("aggregator-decode", circuitbreaker.AggregatorConfig(), retry.AggregatorConfig())
	decoder := urlcodec.New(aggregatorClient, urlCache)
	decodeEngine := decode.New(articles, urlCache, decoder)

	crawlerClient := crawler.NewClient(mustGetenv(logger, "CRAWLER_BASE_URL"))
	llmClient := llm.NewClient(
		os.Getenv("LLM_BASE_URL"),
		mustGetenv(logger, "LLM_API_KEY"),
		getenvDefault("LLM_MODEL", "gpt-4o-mini"),
	)
	analyzeEngine := analyze.New(articles, crawlerClient, llmClient)

	logger.Info("scheduler collaborators initialized",
		slog.String("aggregator_search_base", aggsearch.DefaultSearchBase))

	return scheduler.New(orchestrator, decodeEngine, analyzeEngine, articles, schedulerState, notifyService)
}

// mustGetenv logs and exits if env is unset; the worker cannot reach the
// crawler or LLM collaborator without it.
func mustGetenv(logger *slog.Logger, name string) string {
	value := os.Getenv(name)
	if value == "" {
		logger.Error("required environment variable is not set", slog.String("name", name))
		os.Exit(1)
	}
	return value
}

func getenvDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced for security.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
	}
}

// loadDiscordConfig loads Discord configuration from environment variables.
//
// Environment variables:
//   - DISCORD_ENABLED: Boolean flag to enable Discord notifications (default: false)
//   - DISCORD_WEBHOOK_URL: Discord webhook URL (required if enabled)
//
// Returns:
//   - notifier.DiscordConfig: Configuration with validation applied
func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	enabled := os.Getenv("DISCORD_ENABLED") == "true"
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if !enabled {
		return notifier.DiscordConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Discord webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Discord webhook URL must use HTTPS, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Host != "discord.com" {
		logger.Warn("Invalid Discord webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.DiscordConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("Invalid Discord webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.DiscordConfig{Enabled: false}
	}

	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadSlackConfig loads Slack configuration from environment variables.
//
// Environment variables:
//   - SLACK_ENABLED: Boolean flag to enable Slack notifications (default: false)
//   - SLACK_WEBHOOK_URL: Slack webhook URL (required if enabled)
//
// Returns:
//   - notifier.SlackConfig: Configuration with validation applied
func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	enabled := os.Getenv("SLACK_ENABLED") == "true"
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")

	if !enabled {
		return notifier.SlackConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Slack webhook URL is empty, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Slack webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Slack webhook URL must use HTTPS, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Host != "hooks.slack.com" {
		logger.Warn("Invalid Slack webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.SlackConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("Invalid Slack webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.SlackConfig{Enabled: false}
	}

	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// startCronWorker drives the auto-fetch scheduler from its two
// process-owned triggers (spec §4.11 Triggers): an hourly cron tick and a
// one-shot mount trigger fired mountTriggerDelay after startup. The
// visibility-based trigger is frontend-only and the manual trigger is
// exposed over HTTP by cmd/api; both call the same Scheduler.PerformFetch
// entry point this worker uses, per the "implementers must not duplicate
// the pipeline" contract.
func startCronWorker(ctx context.Context, logger *slog.Logger, sched *scheduler.Scheduler, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runFetchJob(ctx, logger, sched, cfg, metrics, false)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	time.AfterFunc(mountTriggerDelay, func() {
		logger.Info("running mount-trigger auto-fetch")
		runFetchJob(ctx, logger, sched, cfg, metrics, false)
	})

	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	<-ctx.Done()
}

// runFetchJob runs one Scheduler.PerformFetch cycle with timeout and
// metrics/logging around it.
func runFetchJob(ctx context.Context, logger *slog.Logger, sched *scheduler.Scheduler, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, skipGapCheck bool) {
	startTime := time.Now()
	logger.Info("auto-fetch started")

	runCtx, cancel := context.WithTimeout(ctx, cfg.CrawlTimeout)
	defer cancel()

	result, err := sched.PerformFetch(runCtx, skipGapCheck)
	if err != nil {
		logger.Error("auto-fetch failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	if !result.Ran {
		logger.Info("auto-fetch skipped (already running or gap not elapsed)")
		return
	}

	status := "success"
	if len(result.Errors) > 0 {
		status = "partial_failure"
	}
	metrics.RecordJobRun(status)
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordArticlesInserted(result.Inserted)
	metrics.RecordLastSuccess()

	logger.Info("auto-fetch completed",
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Int("decoded", result.Decoded),
		slog.Int("analyzed", result.Analyzed),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", time.Since(startTime)),
	)
}
