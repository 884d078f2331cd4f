package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting. GeminiAPIKey is the only required
// value; main refuses to start without it.
type Config struct {
	Port                 int
	GeminiAPIKey         string
	OpenAIAPIKey         string
	GeminiModel          string
	GeminiTTSModel       string
	GeminiTTSVoice       string
	MinTranscriptEntries int
	MaxInputLength       int
	SynthesisEnabled     bool
	LogLevel             string
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists (the development workflow keeps the API keys there).
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:                 envInt("PORT", 8080),
		GeminiAPIKey:         envStr("GEMINI_API_KEY", ""),
		OpenAIAPIKey:         envStr("OPENAI_API_KEY", ""),
		GeminiModel:          envStr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTTSModel:       envStr("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiTTSVoice:       envStr("GEMINI_TTS_VOICE", "Kore"),
		MinTranscriptEntries: envInt("MIN_TRANSCRIPT_ENTRIES", 3),
		MaxInputLength:       envInt("MAX_INPUT_LENGTH", 2000),
		SynthesisEnabled:     envBool("SYNTHESIS_ENABLED", true),
		LogLevel:             envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
