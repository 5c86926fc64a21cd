package main

import (
	"context"
	"log"
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/apexionhq/cx-copilot/internal/config"
	"github.com/apexionhq/cx-copilot/internal/engine"
	"github.com/apexionhq/cx-copilot/internal/llm"
	"github.com/apexionhq/cx-copilot/internal/observability"
	"github.com/apexionhq/cx-copilot/internal/schema"
	"github.com/apexionhq/cx-copilot/internal/semantic"
	"github.com/apexionhq/cx-copilot/internal/session"
	"github.com/apexionhq/cx-copilot/internal/store"
)

func main() {
	ctx := context.Background()
	logger := observability.NewLogger("main")

	cfg := config.NewDefaultLoader().MustLoad(ctx)
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	// Database
	db, err := store.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	auditStore := store.NewAuditStore(db)
	feedbackStore := store.NewFeedbackStore(db)

	// Sessions
	sessions, err := session.NewManager(cfg.Redis, cfg.Session.Expiry)
	if err != nil {
		log.Fatal("Failed to connect to redis: ", err)
	}
	defer sessions.Close()

	// LLM client with circuit breaker protection
	claudeClient, err := llm.NewClaudeClient(cfg.Claude.APIKey, cfg.Claude.Model, cfg.Claude.Timeout)
	if err != nil {
		log.Fatal("Failed to initialize LLM client: ", err)
	}
	llmClient := llm.NewCircuitBreakerClient(claudeClient, "claude", llm.DefaultCircuitBreakerConfig)

	// Pipeline stages
	desc := schema.Default()
	examples := semantic.NewExampleStore(db.DB(), llmClient)
	translator := engine.NewTranslator(llmClient, desc, examples, cfg.Query.ExampleLimit)
	executor := engine.NewExecutor(db, cfg.Query.MaxResults)
	summarizer := engine.NewSummarizer(llmClient, cfg.Query.SummarySampleMax)

	eng := engine.New(translator, executor, summarizer, auditStore, examples)

	// Health checks
	healthChecker := observability.NewHealthChecker()
	healthChecker.Register("database", observability.PingHealthCheck("database", db.Ping))
	healthChecker.Register("redis", observability.PingHealthCheck("redis", sessions.Ping))
	healthChecker.Register("memory", observability.MemoryHealthCheck(func() (uint64, uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	}))

	server := engine.NewServer(eng, auditStore, feedbackStore, sessions, desc, healthChecker)
	router := server.SetupRoutes()

	logger.Info(ctx, "cx-copilot starting", map[string]interface{}{
		"port":  cfg.Server.Port,
		"model": cfg.Claude.Model,
	})

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error(ctx, "Failed to start server", err, nil)
		log.Fatal("Failed to start server: ", err)
	}
}
