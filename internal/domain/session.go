package domain

import (
	"slices"
	"time"
)

// Session owns the complete state of one screening interview: the visible
// turn log, the model dialogue, and the finalization outcome. It lives in
// process memory only and is discarded with the process.
//
// The turn log and the dialogue advance in lockstep: entry i of the log and
// non-seed block i of the dialogue carry the same text. The first two
// dialogue blocks are always the seed pair (interviewer instruction plus its
// fixed acknowledgment) and have no transcript counterpart.
type Session struct {
	ID        string
	CreatedAt time.Time

	seed      [2]DialogueContent
	turnLog   []TurnEntry
	dialogue  []DialogueContent
	report    *FinalReport
	rawReport string
	finalized bool
}

// NewSession seeds the dialogue with the interviewer instruction and its
// acknowledgment.
func NewSession(id, instruction, acknowledgment string) *Session {
	seed := [2]DialogueContent{
		TextContent(DialogueRoleUser, instruction),
		TextContent(DialogueRoleModel, acknowledgment),
	}
	return &Session{
		ID:       id,
		seed:     seed,
		dialogue: []DialogueContent{seed[0], seed[1]},
	}
}

// AppendExchange records a completed turn: the user entry and the assistant
// reply land in the turn log and the dialogue together.
func (s *Session) AppendExchange(user, assistant TurnEntry) {
	s.turnLog = append(s.turnLog, user, assistant)
	s.dialogue = append(s.dialogue,
		TextContent(user.Speaker.DialogueRole(), user.Content),
		TextContent(assistant.Speaker.DialogueRole(), assistant.Content),
	)
}

// AppendUserTurn records a user entry with no assistant reply. Only the
// failed-transcription path uses it: the placeholder stays committed even
// when the follow-up model call fails.
func (s *Session) AppendUserTurn(user TurnEntry) {
	s.turnLog = append(s.turnLog, user)
	s.dialogue = append(s.dialogue, TextContent(user.Speaker.DialogueRole(), user.Content))
}

// TurnLog returns the transcript in conversation order.
func (s *Session) TurnLog() []TurnEntry {
	return slices.Clone(s.turnLog)
}

// Dialogue returns the full model context: the seed pair plus one block per
// logged entry.
func (s *Session) Dialogue() []DialogueContent {
	return slices.Clone(s.dialogue)
}

// TurnCount is the number of turn log entries.
func (s *Session) TurnCount() int { return len(s.turnLog) }

// Finalized reports whether a report has been produced for this session.
func (s *Session) Finalized() bool { return s.finalized }

// Report returns the stored final report, or nil before finalization.
func (s *Session) Report() *FinalReport { return s.report }

// RawReport is the verbatim payload of the most recent finalize attempt,
// kept so a payload that failed validation can still be shown.
func (s *Session) RawReport() string { return s.rawReport }

// RecordRawReport stores the verbatim finalize payload.
func (s *Session) RecordRawReport(raw string) { s.rawReport = raw }

// Finalize stores the report and marks the session terminal.
func (s *Session) Finalize(report *FinalReport) {
	s.report = report
	s.finalized = true
}

// Reset discards every turn, the finalization flag, and any stored report in
// one step; the dialogue shrinks back to exactly the seed pair.
func (s *Session) Reset() {
	s.turnLog = nil
	s.dialogue = []DialogueContent{s.seed[0], s.seed[1]}
	s.report = nil
	s.rawReport = ""
	s.finalized = false
}
