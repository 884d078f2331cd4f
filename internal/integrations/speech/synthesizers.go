package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Speaker matches the generative-language client's speech call.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, string, error)
}

// GeminiSynthesizer adapts the generative-language client to the synthesis
// chain. It is the higher-quality first path.
type GeminiSynthesizer struct {
	speaker Speaker
}

func NewGeminiSynthesizer(speaker Speaker) (*GeminiSynthesizer, error) {
	if speaker == nil {
		return nil, errors.New("speech: speaker must not be nil")
	}
	return &GeminiSynthesizer{speaker: speaker}, nil
}

func (g *GeminiSynthesizer) Name() string { return "gemini" }

func (g *GeminiSynthesizer) Synthesize(ctx context.Context, text string) (*Synthesis, error) {
	audio, mimeType, err := g.speaker.Speak(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Synthesis{Audio: audio, MIMEType: mimeType}, nil
}

// OpenAISynthesizer is the simpler fallback path, speaking through the
// OpenAI speech endpoint. It is only registered when an OpenAI key is
// configured.
type OpenAISynthesizer struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

func NewOpenAISynthesizer(apiKey string) (*OpenAISynthesizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("speech: openai api key must not be empty")
	}
	return &OpenAISynthesizer{client: openai.NewClient(apiKey), voice: openai.VoiceAlloy}, nil
}

func (o *OpenAISynthesizer) Name() string { return "openai" }

func (o *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (*Synthesis, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: create speech: %w", err)
	}
	defer func() { _ = resp.Close() }()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("speech: read speech response: %w", err)
	}
	return &Synthesis{Audio: audio, MIMEType: "audio/mpeg"}, nil
}
