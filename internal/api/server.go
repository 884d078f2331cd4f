package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"screening-agent/internal/domain"
	"screening-agent/internal/usecase"
)

// InterviewService is the slice of the interview usecase the HTTP surface
// depends on.
type InterviewService interface {
	StartSession() usecase.SessionInfo
	SubmitTurn(ctx context.Context, sessionID string, input domain.TurnInput) (usecase.TurnOutput, error)
	FinalizeReport(ctx context.Context, sessionID string) (*domain.FinalReport, error)
	ResetSession(sessionID string) error
	EndSession(sessionID string) error
	Snapshot(sessionID string) (usecase.SessionSnapshot, error)
	ExportReportCSV(sessionID string) ([]byte, error)
	SessionCount() int
}

type Server struct {
	interviews InterviewService
	logger     *slog.Logger
	router     chi.Router
	port       int
}

func NewServer(interviews InterviewService, logger *slog.Logger, port int) (*Server, error) {
	if interviews == nil {
		return nil, errors.New("api: interview service must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		interviews: interviews,
		logger:     logger,
		port:       port,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", srv.handleHealth)
		r.Post("/sessions", srv.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", srv.handleGetSession)
			r.Delete("/", srv.handleEndSession)
			r.Post("/turns", srv.handleSubmitTurn)
			r.Post("/report", srv.handleFinalizeReport)
			r.Get("/report", srv.handleGetReport)
			r.Get("/report/export", srv.handleExportReport)
			r.Post("/reset", srv.handleReset)
		})
	})

	srv.router = r
	return srv, nil
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting HTTP API", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Greeting  string `json:"greeting"`
}

type turnRequest struct {
	Text     string `json:"text"`
	Audio    string `json:"audio"`
	MIMEType string `json:"mime_type"`
}

// toInput maps the request body to exactly one input variant. A non-empty
// reason means the body is unusable.
func (req turnRequest) toInput() (domain.TurnInput, string) {
	hasText := strings.TrimSpace(req.Text) != ""
	hasAudio := req.Audio != ""
	switch {
	case hasText && hasAudio:
		return nil, "ambiguous_input"
	case hasText:
		return domain.TextInput{Text: req.Text}, ""
	case hasAudio:
		data, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			return nil, "invalid_audio_encoding"
		}
		return domain.AudioInput{Data: data, MIMEType: req.MIMEType}, ""
	default:
		return nil, "missing_input"
	}
}

type turnResponse struct {
	SessionID    string `json:"session_id"`
	UserText     string `json:"user_text"`
	Confirmation string `json:"confirmation,omitempty"`
	Reply        string `json:"reply"`
	ReplyAudio   string `json:"reply_audio,omitempty"`
	ReplyMIME    string `json:"reply_audio_mime_type,omitempty"`
}

type entryResponse struct {
	Speaker  string `json:"speaker"`
	Content  string `json:"content"`
	HasAudio bool   `json:"has_audio"`
}

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	CreatedAt time.Time       `json:"created_at"`
	Entries   []entryResponse `json:"entries"`
	TurnCount int             `json:"turn_count"`
	Finalized bool            `json:"finalized"`
	RawReport string          `json:"raw_report,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason,omitempty"`
	RawReport string `json:"raw_report,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"service":  "screening-agent",
		"sessions": s.interviews.SessionCount(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	info := s.interviews.StartSession()
	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: info.SessionID,
		Greeting:  info.Greeting,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.interviews.Snapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	entries := make([]entryResponse, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		entries = append(entries, entryResponse{
			Speaker:  string(e.Speaker),
			Content:  e.Content,
			HasAudio: len(e.Audio) > 0,
		})
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: snap.SessionID,
		CreatedAt: snap.CreatedAt,
		Entries:   entries,
		TurnCount: len(snap.Entries),
		Finalized: snap.Finalized,
		RawReport: snap.RawReport,
	})
}

func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_request_body"})
		return
	}
	input, badReason := req.toInput()
	if badReason != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: badReason})
		return
	}

	out, err := s.interviews.SubmitTurn(r.Context(), chi.URLParam(r, "sessionID"), input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := turnResponse{
		SessionID:    out.SessionID,
		UserText:     out.UserText,
		Confirmation: out.Confirmation,
		Reply:        out.Reply.Content,
	}
	if len(out.Reply.Audio) > 0 {
		resp.ReplyAudio = base64.StdEncoding.EncodeToString(out.Reply.Audio)
		resp.ReplyMIME = out.Reply.AudioMIMEType
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalizeReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.interviews.FinalizeReport(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.interviews.Snapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if snap.Report == nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: string(usecase.ErrorReportNotReady), Reason: "report_not_generated"})
		return
	}
	writeJSON(w, http.StatusOK, snap.Report)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	out, err := s.interviews.ExportReportCSV(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="clinical_assessment.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.interviews.ResetSession(id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "reset"})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.interviews.EndSession(id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "ended"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		s.logger.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)})
		return
	}
	status := statusForCode(ucErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", ucErr.Code, "reason", ucErr.Reason, "error", ucErr.Err)
	}
	writeJSON(w, status, errorResponse{
		Error:     string(ucErr.Code),
		Reason:    ucErr.Reason,
		RawReport: ucErr.RawPayload,
	})
}

func statusForCode(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorSessionNotFound:
		return http.StatusNotFound
	case usecase.ErrorSessionFinalized, usecase.ErrorTranscriptShort, usecase.ErrorReportNotReady:
		return http.StatusConflict
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream, usecase.ErrorMalformedReport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// correlationID echoes the caller's X-Correlation-Id or mints one, so a
// report of a failed interview can be matched to server logs.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Correlation-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Correlation-Id", id)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"correlation_id", ww.Header().Get("X-Correlation-Id"),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
