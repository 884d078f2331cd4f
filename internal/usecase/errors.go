package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrorSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrorSessionFinalized ErrorCode = "SESSION_FINALIZED"
	ErrorTranscriptShort  ErrorCode = "TRANSCRIPT_TOO_SHORT"
	ErrorReportNotReady   ErrorCode = "REPORT_NOT_READY"
	ErrorMalformedReport  ErrorCode = "MALFORMED_REPORT"
	ErrorRateLimited      ErrorCode = "RATE_LIMITED"
	ErrorUpstream         ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal         ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error

	// RawPayload carries the unparsed model output when a report payload
	// fails validation, so callers can still display it.
	RawPayload string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

func newReportError(raw string, err error) *Error {
	return &Error{Code: ErrorMalformedReport, Reason: "report_parse_failed", Err: err, RawPayload: raw}
}
