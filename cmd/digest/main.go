package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"signalist/db"
	"signalist/internal/digest"
	"signalist/internal/repository"
	"signalist/internal/resolver"
	"signalist/internal/scheduler"
	"signalist/pkg/llm"
	"signalist/pkg/mailer"
	"signalist/pkg/news"

	"github.com/joho/godotenv"
)

const (
	defaultCronSpec = "0 12 * * *"
	defaultTimezone = "Europe/Paris"
)

func main() {
	once := flag.Bool("once", false, "run one digest immediately and exit")
	flag.Parse()

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	if err := db.ConnectRedis(); err != nil {
		log.Fatalf("error connecting to redis: %v", err)
	}
	defer db.CloseRedis()

	userRepo := repository.NewUserRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	symbolResolver := resolver.New(userRepo, watchlistRepo)

	newsClient, err := news.FromEnv()
	if err != nil {
		log.Fatalf("error building news client: %v", err)
	}

	llmClient, err := llm.FromEnv()
	if err != nil {
		log.Fatalf("error building LLM client: %v", err)
	}

	smtpConfig := mailer.ConfigFromEnv()
	if !smtpConfig.IsConfigured() {
		log.Fatalf("SMTP is not configured, digest delivery would fail")
	}
	notifier := mailer.New(smtpConfig)

	summarizer := digest.NewSummarizer(llmClient)
	pipeline := digest.NewPipeline(symbolResolver, newsClient, summarizer)
	runner := digest.NewRunner(userRepo, pipeline, notifier, digest.NewRedisRunLock(), digest.RunnerConfigFromEnv())
	reports := digest.NewRedisReportStore()

	runDigest := func() {
		report, err := runner.RunDaily(context.Background())
		if err != nil {
			slog.Error("digest run failed", "error", err)
		}
		reports.PersistReport(report)
	}

	if *once {
		runDigest()
		return
	}

	cronSpec := os.Getenv("DIGEST_CRON")
	if cronSpec == "" {
		cronSpec = defaultCronSpec
	}

	timezone := os.Getenv("DIGEST_TZ")
	if timezone == "" {
		timezone = defaultTimezone
	}

	sched, err := scheduler.New(cronSpec, timezone, runDigest)
	if err != nil {
		log.Fatalf("error creating scheduler: %v", err)
	}

	if err := sched.Start(); err != nil {
		log.Fatalf("error starting scheduler: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	slog.Info("shutdown signal received")
	sched.Stop()
}
