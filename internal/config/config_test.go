package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GEMINI_API_KEY", "OPENAI_API_KEY", "GEMINI_MODEL",
		"GEMINI_TTS_MODEL", "GEMINI_TTS_VOICE", "MIN_TRANSCRIPT_ENTRIES",
		"MAX_INPUT_LENGTH", "SYNTHESIS_ENABLED", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, 8080, cfg.Port)
	require.Empty(t, cfg.GeminiAPIKey)
	require.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	require.Equal(t, "gemini-2.5-flash-preview-tts", cfg.GeminiTTSModel)
	require.Equal(t, "Kore", cfg.GeminiTTSVoice)
	require.Equal(t, 3, cfg.MinTranscriptEntries)
	require.Equal(t, 2000, cfg.MaxInputLength)
	require.True(t, cfg.SynthesisEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-override")
	t.Setenv("MIN_TRANSCRIPT_ENTRIES", "5")
	t.Setenv("SYNTHESIS_ENABLED", "false")

	cfg := Load()
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, "test-key", cfg.GeminiAPIKey)
	require.Equal(t, "gemini-override", cfg.GeminiModel)
	require.Equal(t, 5, cfg.MinTranscriptEntries)
	require.False(t, cfg.SynthesisEnabled)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("MIN_TRANSCRIPT_ENTRIES", "many")
	t.Setenv("SYNTHESIS_ENABLED", "sometimes")

	cfg := Load()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 3, cfg.MinTranscriptEntries)
	require.True(t, cfg.SynthesisEnabled)
}
