package domain

// Role identifies a transcript speaker.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Dialogue wire roles. The model side of the dialogue is tagged "model",
// not "assistant".
const (
	DialogueRoleUser  = "user"
	DialogueRoleModel = "model"
)

// DialogueRole maps a transcript speaker to its dialogue wire role.
func (r Role) DialogueRole() string {
	if r == RoleAssistant {
		return DialogueRoleModel
	}
	return DialogueRoleUser
}

// TurnEntry is one immutable line of the visible interview transcript.
// Audio, when present, is the synthesized speech for an assistant entry or
// the recorded waveform behind a transcribed user entry.
type TurnEntry struct {
	Speaker       Role   `json:"speaker"`
	Content       string `json:"content"`
	Audio         []byte `json:"-"`
	AudioMIMEType string `json:"-"`
}

// TurnInput is a single user submission: exactly one of text or audio.
type TurnInput interface {
	isTurnInput()
}

// TextInput is a typed chat submission.
type TextInput struct {
	Text string
}

// AudioInput is a recorded waveform submission to be transcribed before the
// conversational model sees it.
type AudioInput struct {
	Data     []byte
	MIMEType string
}

func (TextInput) isTurnInput()  {}
func (AudioInput) isTurnInput() {}
