package domain

// DialoguePart is one unit of model-visible content: text, or inline binary
// data tagged with a MIME type.
type DialoguePart struct {
	Text     string
	Data     []byte
	MIMEType string
}

// DialogueContent is a role-tagged block of the context resent verbatim to
// the model on every turn.
type DialogueContent struct {
	Role  string
	Parts []DialoguePart
}

// TextContent builds a single-part text block.
func TextContent(role, text string) DialogueContent {
	return DialogueContent{Role: role, Parts: []DialoguePart{{Text: text}}}
}
