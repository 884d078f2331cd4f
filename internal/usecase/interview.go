package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"strings"
	"time"

	"screening-agent/internal/domain"
)

const (
	defaultMinTranscriptEntries = 3
	defaultMaxInputLength       = 2000
	defaultAudioMIMEType        = "audio/wav"
)

// DialogueModel produces interview replies and the final structured report.
type DialogueModel interface {
	Generate(ctx context.Context, dialogue []domain.DialogueContent) (string, error)
	GenerateReport(ctx context.Context, prompt string) (string, error)
}

// SpeechBridge converts between recorded audio and text. Transcribe reports
// ok=false when it had to substitute a placeholder for the spoken words;
// Synthesize returns nil audio when no synthesizer produced speech.
type SpeechBridge interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (text string, ok bool)
	Synthesize(ctx context.Context, text string) (audio []byte, mimeType string)
}

// SessionStore creates sessions and hands them out one caller at a time.
type SessionStore interface {
	Create(instruction, acknowledgment string) *domain.Session
	Acquire(id string) (*domain.Session, func(), error)
	Remove(id string) error
	Count() int
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// InterviewService drives the screening interview: one exchange per submitted
// turn, then a single reducer pass over the transcript to produce the report.
type InterviewService struct {
	store  SessionStore
	model  DialogueModel
	bridge SpeechBridge
	logger *slog.Logger

	minTranscriptEntries int
	maxInputLength       int
	synthesisEnabled     bool
}

// SessionInfo is the outcome of starting a session. The greeting is display
// copy only; it is not part of the transcript or the model dialogue.
type SessionInfo struct {
	SessionID string
	Greeting  string
}

// TurnOutput is the outcome of one completed exchange. Confirmation carries
// the model's transcript read-back for audio turns, when it produced one.
type TurnOutput struct {
	SessionID    string
	UserText     string
	Confirmation string
	Reply        domain.TurnEntry
}

// SessionSnapshot is a point-in-time copy of everything a client can render.
type SessionSnapshot struct {
	SessionID string
	CreatedAt time.Time
	Entries   []domain.TurnEntry
	Finalized bool
	Report    *domain.FinalReport
	RawReport string
}

func NewInterviewService(store SessionStore, model DialogueModel, bridge SpeechBridge, logger *slog.Logger, minTranscriptEntries, maxInputLength int, synthesisEnabled bool) (*InterviewService, error) {
	if store == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if model == nil {
		return nil, errors.New("usecase: dialogue model must not be nil")
	}
	if bridge == nil {
		return nil, errors.New("usecase: speech bridge must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if minTranscriptEntries <= 0 {
		minTranscriptEntries = defaultMinTranscriptEntries
	}
	if maxInputLength <= 0 {
		maxInputLength = defaultMaxInputLength
	}
	return &InterviewService{
		store:                store,
		model:                model,
		bridge:               bridge,
		logger:               logger,
		minTranscriptEntries: minTranscriptEntries,
		maxInputLength:       maxInputLength,
		synthesisEnabled:     synthesisEnabled,
	}, nil
}

// StartSession creates a fresh session seeded with the interviewer
// instruction and returns the fixed welcome greeting.
func (s *InterviewService) StartSession() SessionInfo {
	sess := s.store.Create(interviewerInstruction(), seedAcknowledgment)
	s.logger.Info("session created", "session_id", sess.ID)
	return SessionInfo{SessionID: sess.ID, Greeting: welcomeGreeting}
}

// SubmitTurn runs one exchange: resolve the submission to user text, ask the
// model for the next interviewer reply, and commit both sides together. On a
// model failure nothing is committed, with one exception: a user entry that
// already carries the unintelligible-audio placeholder stays in the log.
func (s *InterviewService) SubmitTurn(ctx context.Context, sessionID string, input domain.TurnInput) (TurnOutput, error) {
	sess, release, err := s.acquire(sessionID)
	if err != nil {
		return TurnOutput{}, err
	}
	defer release()

	if sess.Finalized() {
		return TurnOutput{}, newError(ErrorSessionFinalized, "report_already_generated", nil)
	}

	userEntry, transcriptionFailed, err := s.resolveInput(ctx, input)
	if err != nil {
		return TurnOutput{}, err
	}

	reply, err := s.model.Generate(ctx, buildTurnContext(sess, userEntry.Content))
	if err != nil {
		if transcriptionFailed {
			sess.AppendUserTurn(userEntry)
		}
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return TurnOutput{}, newError(ErrorRateLimited, "model_rate_limited", err)
		}
		return TurnOutput{}, newError(ErrorUpstream, "model_error", err)
	}

	confirmation, body := extractTranscriptMarker(reply)
	content := body
	if content == "" {
		content = strings.TrimSpace(reply)
	}

	assistantEntry := domain.TurnEntry{Speaker: domain.RoleAssistant, Content: content}
	if s.synthesisEnabled {
		if audio, mimeType := s.bridge.Synthesize(ctx, content); len(audio) > 0 {
			assistantEntry.Audio = audio
			assistantEntry.AudioMIMEType = mimeType
		}
	}

	sess.AppendExchange(userEntry, assistantEntry)
	s.logger.Info("turn completed",
		"session_id", sess.ID,
		"entries", sess.TurnCount(),
		"transcribed", userEntry.Audio != nil,
		"synthesized", assistantEntry.Audio != nil,
	)

	return TurnOutput{
		SessionID:    sess.ID,
		UserText:     userEntry.Content,
		Confirmation: confirmation,
		Reply:        assistantEntry,
	}, nil
}

// FinalizeReport reduces the transcript to a structured clinical report. A
// payload that fails validation leaves the session open for another attempt,
// with the raw payload retrievable; a valid one finalizes the session for
// good.
func (s *InterviewService) FinalizeReport(ctx context.Context, sessionID string) (*domain.FinalReport, error) {
	sess, release, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if sess.Finalized() {
		return nil, newError(ErrorSessionFinalized, "report_already_generated", nil)
	}
	if sess.TurnCount() < s.minTranscriptEntries {
		return nil, newError(ErrorTranscriptShort, "not_enough_material", nil)
	}

	raw, err := s.model.GenerateReport(ctx, buildReportPrompt(serializeTranscript(sess.TurnLog())))
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return nil, newError(ErrorRateLimited, "report_rate_limited", err)
		}
		return nil, newError(ErrorUpstream, "report_model_error", err)
	}
	sess.RecordRawReport(raw)

	report, err := parseFinalReport(raw)
	if err != nil {
		s.logger.Warn("report payload rejected", "session_id", sess.ID, "error", err)
		return nil, newReportError(raw, err)
	}

	sess.Finalize(report)
	s.logger.Info("report finalized", "session_id", sess.ID, "risk_rows", len(report.RiskAssessment))
	return report, nil
}

// ResetSession restores a session to its two-entry seed state in one step.
func (s *InterviewService) ResetSession(sessionID string) error {
	sess, release, err := s.acquire(sessionID)
	if err != nil {
		return err
	}
	defer release()

	sess.Reset()
	s.logger.Info("session reset", "session_id", sess.ID)
	return nil
}

// EndSession discards the session for good, transcript and report included.
// Screening the next participant starts from a fresh session.
func (s *InterviewService) EndSession(sessionID string) error {
	sess, release, err := s.acquire(sessionID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.store.Remove(sess.ID); err != nil {
		return newError(ErrorSessionNotFound, "unknown_session", err)
	}
	s.logger.Info("session ended", "session_id", sess.ID, "entries", sess.TurnCount())
	return nil
}

// Snapshot returns a copy of the session's renderable state.
func (s *InterviewService) Snapshot(sessionID string) (SessionSnapshot, error) {
	sess, release, err := s.acquire(sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	defer release()

	return SessionSnapshot{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
		Entries:   sess.TurnLog(),
		Finalized: sess.Finalized(),
		Report:    sess.Report(),
		RawReport: sess.RawReport(),
	}, nil
}

// ExportReportCSV renders the finalized risk table as CSV, one row per
// assessed condition.
func (s *InterviewService) ExportReportCSV(sessionID string) ([]byte, error) {
	sess, release, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	report := sess.Report()
	if report == nil {
		return nil, newError(ErrorReportNotReady, "report_not_generated", nil)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Condition", "Risk Level", "Evidence"}); err != nil {
		return nil, newError(ErrorInternal, "csv_write_error", err)
	}
	for _, row := range report.RiskAssessment {
		if err := w.Write([]string{row.Condition, string(row.Risk), row.Evidence}); err != nil {
			return nil, newError(ErrorInternal, "csv_write_error", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, newError(ErrorInternal, "csv_write_error", err)
	}
	return buf.Bytes(), nil
}

// SessionCount reports how many sessions the store currently holds.
func (s *InterviewService) SessionCount() int {
	return s.store.Count()
}

func (s *InterviewService) acquire(sessionID string) (*domain.Session, func(), error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, nil, newError(ErrorInvalidInput, "missing_session_id", nil)
	}
	sess, release, err := s.store.Acquire(sessionID)
	if err != nil {
		return nil, nil, newError(ErrorSessionNotFound, "unknown_session", err)
	}
	return sess, release, nil
}

// resolveInput turns a submission into the user transcript entry. The second
// result reports whether the entry carries the unintelligible-audio
// placeholder instead of real words.
func (s *InterviewService) resolveInput(ctx context.Context, input domain.TurnInput) (domain.TurnEntry, bool, error) {
	switch in := input.(type) {
	case domain.TextInput:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return domain.TurnEntry{}, false, newError(ErrorInvalidInput, "empty_text", nil)
		}
		if len(text) > s.maxInputLength {
			return domain.TurnEntry{}, false, newError(ErrorInvalidInput, "text_too_long", nil)
		}
		return domain.TurnEntry{Speaker: domain.RoleUser, Content: text}, false, nil
	case domain.AudioInput:
		if len(in.Data) == 0 {
			return domain.TurnEntry{}, false, newError(ErrorInvalidInput, "empty_audio", nil)
		}
		mimeType := in.MIMEType
		if mimeType == "" {
			mimeType = defaultAudioMIMEType
		}
		if mimeType == defaultAudioMIMEType && !looksLikeWAV(in.Data) {
			return domain.TurnEntry{}, false, newError(ErrorInvalidInput, "invalid_audio", nil)
		}
		text, ok := s.bridge.Transcribe(ctx, in.Data, mimeType)
		return domain.TurnEntry{
			Speaker:       domain.RoleUser,
			Content:       text,
			Audio:         in.Data,
			AudioMIMEType: mimeType,
		}, !ok, nil
	default:
		return domain.TurnEntry{}, false, newError(ErrorInvalidInput, "missing_input", nil)
	}
}

// looksLikeWAV checks the RIFF/WAVE container magic.
func looksLikeWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
