package main

import (
	"log"
	"log/slog"
	"os"

	"signalist/db"
	"signalist/internal/digest"
	"signalist/internal/handler"
	"signalist/internal/repository"
	"signalist/internal/resolver"
	"signalist/pkg/llm"
	"signalist/pkg/mailer"
	"signalist/pkg/news"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
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
	welcome := digest.NewWelcomeMailer(llmClient, notifier)

	watchlistHandler := handler.NewWatchlistHandler(watchlistRepo, symbolResolver)
	digestHandler := handler.NewDigestHandler(runner, digest.NewRedisReportStore(), userRepo, welcome)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/watchlist/:userId", watchlistHandler.GetWatchlist)
	r.POST("/watchlist", watchlistHandler.AddEntry)
	r.DELETE("/watchlist/:userId/:symbol", watchlistHandler.RemoveEntry)
	r.GET("/users/:id/watchlist-symbols", watchlistHandler.GetWatchlistSymbols)
	r.POST("/digest/run", digestHandler.TriggerRun)
	r.GET("/digest/reports/latest", digestHandler.GetLatestReport)
	r.POST("/digest/welcome", digestHandler.SendWelcome)
	r.GET("/health", watchlistHandler.GetHealth)

	err = r.Run(":8080")
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
