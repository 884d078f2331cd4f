// Package speech is the best-effort audio layer of the interview: incoming
// waveforms are transcribed to text, assistant replies are optionally
// synthesized to speech.
package speech

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// UnintelligibleMarker is the sentinel recorded in place of a transcript
// when transcription fails.
const UnintelligibleMarker = "[unintelligible audio]"

const transcriptionInstruction = "Transcribe the spoken audio exactly as heard. Respond with only the transcript text, nothing else."

// Transcriber converts an instruction plus waveform into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, instruction string, audio []byte, mimeType string) (string, error)
}

// Synthesis is one synthesized utterance.
type Synthesis struct {
	Audio    []byte
	MIMEType string
}

// Synthesizer is one way of turning text into speech. The bridge tries its
// synthesizers in order and keeps the first success.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string) (*Synthesis, error)
}

// Bridge ties transcription and synthesis together. Neither direction ever
// returns an error to its caller: transcription failures degrade to the
// unintelligible marker, synthesis failures degrade to a text-only turn.
type Bridge struct {
	transcriber Transcriber
	chain       []Synthesizer
	logger      *slog.Logger
}

func NewBridge(transcriber Transcriber, chain []Synthesizer, logger *slog.Logger) (*Bridge, error) {
	if transcriber == nil {
		return nil, errors.New("speech: transcriber must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{transcriber: transcriber, chain: chain, logger: logger}, nil
}

// Transcribe returns the transcript and true, or the unintelligible marker
// and false when the upstream call fails or yields nothing.
func (b *Bridge) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, bool) {
	text, err := b.transcriber.Transcribe(ctx, transcriptionInstruction, audio, mimeType)
	if err != nil {
		b.logger.Warn("transcription failed", "err", err)
		return UnintelligibleMarker, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		b.logger.Warn("transcription returned empty text")
		return UnintelligibleMarker, false
	}
	return text, true
}

// Synthesize walks the chain in order and returns the first successful
// synthesis, or nil audio when every path fails or none is configured.
func (b *Bridge) Synthesize(ctx context.Context, text string) ([]byte, string) {
	for _, s := range b.chain {
		out, err := s.Synthesize(ctx, text)
		if err != nil {
			b.logger.Warn("synthesis path failed", "synthesizer", s.Name(), "err", err)
			continue
		}
		if out == nil || len(out.Audio) == 0 {
			b.logger.Warn("synthesis path returned no audio", "synthesizer", s.Name())
			continue
		}
		return out.Audio, out.MIMEType
	}
	return nil, ""
}
