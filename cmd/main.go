package main

import (
	"context"
	"log/slog"
	"os"

	"screening-agent/internal/api"
	"screening-agent/internal/config"
	"screening-agent/internal/integrations/gemini"
	"screening-agent/internal/integrations/speech"
	"screening-agent/internal/repository"
	"screening-agent/internal/usecase"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	logger := slog.Default()

	ctx := context.Background()

	// ---- Configuration guard ----
	if cfg.GeminiAPIKey == "" {
		logger.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}

	// ---- Gemini client ----
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTTSModel,
		gemini.WithVoice(cfg.GeminiTTSVoice))
	if err != nil {
		logger.Error("failed to create Gemini client", "error", err)
		os.Exit(1)
	}

	// ---- Speech bridge ----
	geminiVoice, err := speech.NewGeminiSynthesizer(client)
	if err != nil {
		logger.Error("failed to create Gemini synthesizer", "error", err)
		os.Exit(1)
	}
	chain := []speech.Synthesizer{geminiVoice}
	if cfg.OpenAIAPIKey != "" {
		openaiVoice, err := speech.NewOpenAISynthesizer(cfg.OpenAIAPIKey)
		if err != nil {
			logger.Error("failed to create OpenAI synthesizer", "error", err)
			os.Exit(1)
		}
		chain = append(chain, openaiVoice)
		logger.Info("OpenAI speech fallback enabled")
	}
	bridge, err := speech.NewBridge(client, chain, logger)
	if err != nil {
		logger.Error("failed to create speech bridge", "error", err)
		os.Exit(1)
	}

	// ---- Interview service ----
	store := repository.NewStore()
	interviews, err := usecase.NewInterviewService(store, client, bridge, logger,
		cfg.MinTranscriptEntries, cfg.MaxInputLength, cfg.SynthesisEnabled)
	if err != nil {
		logger.Error("failed to create interview service", "error", err)
		os.Exit(1)
	}

	// ---- HTTP API ----
	srv, err := api.NewServer(interviews, logger, cfg.Port)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	logger.Info("screening agent starting",
		"port", cfg.Port,
		"model", cfg.GeminiModel,
		"tts_model", cfg.GeminiTTSModel,
		"synthesis", cfg.SynthesisEnabled,
	)
	if err := srv.Start(); err != nil {
		logger.Error("HTTP server error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
