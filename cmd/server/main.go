package main

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"careermate/internal/ai"
	"careermate/internal/config"
	"careermate/internal/conversation"
	"careermate/internal/db"
	"careermate/internal/httpapi"
	"careermate/internal/httpapi/handlers"
	"careermate/internal/store/rabbitmq"
	"careermate/internal/store/redisstore"
)

func buildRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()
	reg.Register("openai", func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenAIModel
		}
		return ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, m), nil
	})
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	return reg
}

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	defer rds.Close()

	provider, err := buildRegistry(cfg).Get(context.Background(), cfg.AIProvider, "")
	if err != nil {
		log.Fatal("ai provider setup failed", zap.Error(err))
	}
	if !provider.Configured() {
		log.Warn("ai provider not fully configured, asks will be rejected",
			zap.String("provider", cfg.AIProvider))
	}

	systemPrompt, err := conversation.LoadSystemPrompt(cfg.SystemPromptPath)
	if err != nil {
		log.Warn("system prompt load failed, using built-in fallback",
			zap.String("path", cfg.SystemPromptPath), zap.Error(err))
	}

	repo := conversation.NewRepo(gdb)
	svc := conversation.NewService(repo, rds, rds, provider, systemPrompt, conversation.Policy{
		RateLimit:       cfg.RateLimit,
		RateWindow:      cfg.RateWindow,
		CacheTTL:        cfg.CacheTTL,
		MaxUserTurns:    cfg.MaxUserTurns,
		MaxTokens:       cfg.MaxTokens,
		Temperature:     float32(cfg.Temperature),
		ProviderTimeout: cfg.ProviderTimeout,
	}, log)

	var rabbit *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		rabbit, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Warn("rabbitmq unavailable, async asks disabled", zap.Error(err))
			rabbit = nil
		} else {
			defer rabbit.Close()
		}
	}

	h := handlers.NewHandler(gdb, rds, svc, rabbit, log)
	r := httpapi.NewRouter(h)

	log.Info("server listening", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
