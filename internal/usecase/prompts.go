package usecase

import (
	"strings"

	"screening-agent/internal/domain"
)

// welcomeGreeting opens every session. It is display-only and never enters
// the turn log or the dialogue.
const welcomeGreeting = "Hello. I am an AI Screening Assistant. " +
	"This conversation is confidential and is not a substitute for professional medical advice. " +
	"I will ask you a few questions about how you have been feeling recently. Shall we begin?"

// seedAcknowledgment is the model half of the dialogue seed pair.
const seedAcknowledgment = "Understood. I will conduct the screening one question at a time, " +
	"wait for each answer, and avoid any diagnosis."

const transcriptMarker = "TRANSCRIPT:"

// interviewerInstruction is the user half of the dialogue seed pair. It
// anchors the model's behavior for the whole interview and is resent
// verbatim on every turn.
func interviewerInstruction() string {
	return strings.Join([]string{
		"You are Dr. Gemini, an empathetic and professional psychological screening assistant.",
		"Your goal is to conduct a brief screening interview for Depression (PHQ-9 based) and Anxiety (GAD-7 based).",
		"",
		"RULES:",
		"1. Ask exactly ONE question at a time.",
		"2. Wait for the user to answer before asking the next question.",
		"3. Do not diagnose. Use phrases like \"The responses suggest\" instead.",
		"4. If the user mentions self-harm, immediately provide emergency resources.",
	}, "\n")
}

// buildTurnContext assembles the model request for one exchange: the
// session's entire dialogue, seed pair included, with the new user text
// appended. Every turn resends the full history; any windowing of older
// turns belongs here, not in the turn flow.
func buildTurnContext(sess *domain.Session, userText string) []domain.DialogueContent {
	return append(sess.Dialogue(), domain.TextContent(domain.DialogueRoleUser, userText))
}

// buildReportPrompt wraps the serialized transcript in the analyst
// instruction that demands a single structured JSON object.
func buildReportPrompt(transcript string) string {
	return strings.Join([]string{
		"COMMAND: The interview is over. Act as a Senior Clinical Analyst.",
		"Review the screening interview transcript below and produce a structured assessment.",
		"",
		"TRANSCRIPT:",
		transcript,
		"",
		"Return a single JSON object with exactly these fields:",
		"- clinical_summary: a concise professional summary of the interview.",
		"- risk_assessment: one row per condition (Depression, Anxiety, Burnout), each with \"Condition\", \"Risk Level\" (Low, Medium, or High), and \"Evidence\" quoting the transcript.",
		"- recommendations: exactly 3 actionable recommendations.",
		"Do not diagnose; describe what the responses suggest.",
	}, "\n")
}

// serializeTranscript renders the turn log as "SPEAKER: content" lines in
// conversation order, the exact form the analyst instruction refers to.
func serializeTranscript(entries []domain.TurnEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.ToUpper(string(e.Speaker)))
		b.WriteString(": ")
		b.WriteString(e.Content)
	}
	return b.String()
}

// extractTranscriptMarker splits a reply that leads with the transcript
// marker convention into the restated transcript and the clean
// continuation. Replies without the marker pass through untouched.
func extractTranscriptMarker(reply string) (confirmation, body string) {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, transcriptMarker) {
		return "", trimmed
	}
	rest := trimmed[len(transcriptMarker):]
	line, remainder, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(line), strings.TrimSpace(remainder)
}
