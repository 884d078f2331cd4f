package speech

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	text           string
	err            error
	calls          int
	gotInstruction string
	gotMIME        string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, instruction string, _ []byte, mimeType string) (string, error) {
	f.calls++
	f.gotInstruction = instruction
	f.gotMIME = mimeType
	return f.text, f.err
}

type fakeSynthesizer struct {
	name  string
	out   *Synthesis
	err   error
	calls int
}

func (f *fakeSynthesizer) Name() string { return f.name }

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string) (*Synthesis, error) {
	f.calls++
	return f.out, f.err
}

func newTestBridge(t *testing.T, tr Transcriber, chain ...Synthesizer) *Bridge {
	t.Helper()
	b, err := NewBridge(tr, chain, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return b
}

func TestNewBridge_NilTranscriber(t *testing.T) {
	_, err := NewBridge(nil, nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nil")
}

// ---------------------------------------------------------------------------
// Transcribe
// ---------------------------------------------------------------------------

func TestBridge_Transcribe_HappyPath(t *testing.T) {
	tr := &fakeTranscriber{text: "  I have been feeling tired.  "}
	b := newTestBridge(t, tr)

	text, ok := b.Transcribe(context.Background(), []byte("RIFFdata"), "audio/wav")
	require.True(t, ok)
	require.Equal(t, "I have been feeling tired.", text)
	require.Equal(t, 1, tr.calls)
	require.Equal(t, "audio/wav", tr.gotMIME)
	require.NotEmpty(t, tr.gotInstruction)
}

func TestBridge_Transcribe_FailureYieldsMarker(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("upstream down")}
	b := newTestBridge(t, tr)

	text, ok := b.Transcribe(context.Background(), []byte("RIFFdata"), "audio/wav")
	require.False(t, ok)
	require.Equal(t, UnintelligibleMarker, text)
}

func TestBridge_Transcribe_EmptyTextYieldsMarker(t *testing.T) {
	tr := &fakeTranscriber{text: "   "}
	b := newTestBridge(t, tr)

	text, ok := b.Transcribe(context.Background(), []byte("RIFFdata"), "audio/wav")
	require.False(t, ok)
	require.Equal(t, UnintelligibleMarker, text)
}

// ---------------------------------------------------------------------------
// Synthesize fallback chain
// ---------------------------------------------------------------------------

func TestBridge_Synthesize_FirstPathWins(t *testing.T) {
	first := &fakeSynthesizer{name: "gemini", out: &Synthesis{Audio: []byte{1}, MIMEType: "audio/L16"}}
	second := &fakeSynthesizer{name: "openai", out: &Synthesis{Audio: []byte{2}, MIMEType: "audio/mpeg"}}
	b := newTestBridge(t, &fakeTranscriber{}, first, second)

	audio, mimeType := b.Synthesize(context.Background(), "Shall we begin?")
	require.Equal(t, []byte{1}, audio)
	require.Equal(t, "audio/L16", mimeType)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 0, second.calls, "fallback must not run when the first path succeeds")
}

func TestBridge_Synthesize_FallsBackOnError(t *testing.T) {
	first := &fakeSynthesizer{name: "gemini", err: errors.New("tts unavailable")}
	second := &fakeSynthesizer{name: "openai", out: &Synthesis{Audio: []byte{2}, MIMEType: "audio/mpeg"}}
	b := newTestBridge(t, &fakeTranscriber{}, first, second)

	audio, mimeType := b.Synthesize(context.Background(), "Shall we begin?")
	require.Equal(t, []byte{2}, audio)
	require.Equal(t, "audio/mpeg", mimeType)
}

func TestBridge_Synthesize_FallsBackOnEmptyAudio(t *testing.T) {
	first := &fakeSynthesizer{name: "gemini", out: &Synthesis{}}
	second := &fakeSynthesizer{name: "openai", out: &Synthesis{Audio: []byte{2}, MIMEType: "audio/mpeg"}}
	b := newTestBridge(t, &fakeTranscriber{}, first, second)

	audio, _ := b.Synthesize(context.Background(), "Shall we begin?")
	require.Equal(t, []byte{2}, audio)
}

func TestBridge_Synthesize_AllPathsFail(t *testing.T) {
	first := &fakeSynthesizer{name: "gemini", err: errors.New("down")}
	second := &fakeSynthesizer{name: "openai", err: errors.New("also down")}
	b := newTestBridge(t, &fakeTranscriber{}, first, second)

	audio, mimeType := b.Synthesize(context.Background(), "Shall we begin?")
	require.Nil(t, audio)
	require.Empty(t, mimeType)
}

func TestBridge_Synthesize_EmptyChain(t *testing.T) {
	b := newTestBridge(t, &fakeTranscriber{})
	audio, _ := b.Synthesize(context.Background(), "Shall we begin?")
	require.Nil(t, audio)
}
