package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"screening-agent/internal/domain"
)

const defaultVoice = "Kore"

// StatusError captures upstream API failures with status-aware context.
type StatusError struct {
	StatusCode int
	Op         string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused generative-language client covering the four calls the
// interview needs: conversation turns, structured report output, audio
// transcription, and speech synthesis.
type Client struct {
	api      *genai.Client
	model    string
	ttsModel string
	ttsVoice string
}

type settings struct {
	baseURL    string
	httpClient *http.Client
	ttsVoice   string
}

type Option func(*settings)

func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) {
		s.httpClient = httpClient
	}
}

func WithVoice(name string) Option {
	return func(s *settings) {
		s.ttsVoice = name
	}
}

// NewClient prepares an SDK client for the Gemini API backend. The same
// model serves turns, transcription, and reports; speech synthesis uses its
// own model and a prebuilt voice (Kore unless overridden).
func NewClient(ctx context.Context, apiKey, model, ttsModel string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("gemini: model must not be empty")
	}
	s := settings{ttsVoice: defaultVoice}
	for _, opt := range opts {
		opt(&s)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if s.httpClient != nil {
		cfg.HTTPClient = s.httpClient
	}
	if s.baseURL != "" {
		cfg.HTTPOptions.BaseURL = s.baseURL
	}

	api, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{api: api, model: model, ttsModel: ttsModel, ttsVoice: s.ttsVoice}, nil
}

// Generate runs one conversation turn: the full dialogue goes up, a
// free-form text reply comes back.
func (c *Client) Generate(ctx context.Context, dialogue []domain.DialogueContent) (string, error) {
	resp, err := c.api.Models.GenerateContent(ctx, c.model, toContents(dialogue), nil)
	if err != nil {
		return "", wrapErr("generate", err)
	}
	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: response carried no text candidate")
	}
	return text, nil
}

// GenerateReport issues the single structured-output call that turns the
// serialized transcript into the report payload. The response is constrained
// to a JSON object matching the report schema.
func (c *Client) GenerateReport(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   reportResponseSchema(),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.api.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", wrapErr("generate report", err)
	}
	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: report response carried no text candidate")
	}
	return text, nil
}

// Transcribe sends the instruction and the inline waveform in one request
// and returns the plain-text transcript.
func (c *Client) Transcribe(ctx context.Context, instruction string, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("gemini: audio payload must not be empty")
	}
	contents := []*genai.Content{{
		Role: domain.DialogueRoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromText(instruction),
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
		},
	}}

	resp, err := c.api.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", wrapErr("transcribe", err)
	}
	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", errors.New("gemini: transcription response carried no text")
	}
	return text, nil
}

// Speak synthesizes speech for the given text and returns the audio bytes
// plus their MIME type (a PCM container; callers treat it as opaque).
func (c *Client) Speak(ctx context.Context, text string) ([]byte, string, error) {
	if c.ttsModel == "" {
		return nil, "", errors.New("gemini: tts model not configured")
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.ttsVoice},
			},
		},
	}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	resp, err := c.api.Models.GenerateContent(ctx, c.ttsModel, contents, cfg)
	if err != nil {
		return nil, "", wrapErr("speak", err)
	}
	audio, mimeType := responseAudio(resp)
	if len(audio) == 0 {
		return nil, "", errors.New("gemini: speech response carried no audio")
	}
	return audio, mimeType, nil
}

func toContents(dialogue []domain.DialogueContent) []*genai.Content {
	contents := make([]*genai.Content, 0, len(dialogue))
	for _, block := range dialogue {
		c := &genai.Content{Role: block.Role}
		for _, p := range block.Parts {
			if len(p.Data) > 0 {
				c.Parts = append(c.Parts, &genai.Part{InlineData: &genai.Blob{MIMEType: p.MIMEType, Data: p.Data}})
				continue
			}
			c.Parts = append(c.Parts, genai.NewPartFromText(p.Text))
		}
		contents = append(contents, c)
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func responseAudio(resp *genai.GenerateContentResponse) ([]byte, string) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ""
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData.Data, p.InlineData.MIMEType
		}
	}
	return nil, ""
}

// reportResponseSchema constrains report generation to the canonical shape:
// a clinical summary, a risk table keyed Condition / Risk Level / Evidence,
// and a list of recommendations.
func reportResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"clinical_summary": {Type: genai.TypeString},
			"risk_assessment": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"Condition":  {Type: genai.TypeString},
						"Risk Level": {Type: genai.TypeString, Enum: []string{"Low", "Medium", "High"}},
						"Evidence":   {Type: genai.TypeString},
					},
					Required: []string{"Condition", "Risk Level", "Evidence"},
				},
			},
			"recommendations": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"clinical_summary", "risk_assessment", "recommendations"},
	}
}

func wrapErr(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.Code, Op: op, Message: apiErr.Message}
	}
	return fmt.Errorf("gemini: %s: %w", op, err)
}
