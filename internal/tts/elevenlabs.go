package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/robotalk-labs/robot-gateway/internal/personality"
)

// defaultElevenLabsModel is the low-latency Flash tier, fast enough to keep
// a child's attention (~75ms model latency).
const defaultElevenLabsModel = "eleven_flash_v2_5"

// ElevenLabs is a Synthesizer backed by the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	modelID    string
	httpClient *http.Client
}

// NewElevenLabs creates an ElevenLabs client. The optional baseURL overrides
// the API endpoint (pass "" for the default).
func NewElevenLabs(apiKey, baseURL string) *ElevenLabs {
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	return &ElevenLabs{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelID:    defaultElevenLabsModel,
		httpClient: &http.Client{},
	}
}

// Name returns the vendor name.
func (e *ElevenLabs) Name() string { return "elevenlabs" }

type elevenLabsRequest struct {
	Text          string                     `json:"text"`
	ModelID       string                     `json:"model_id"`
	VoiceSettings *personality.VoiceSettings `json:"voice_settings,omitempty"`
}

// Synthesize converts text to speech using the voice configured for the
// request's personality. The text is normalized for child-friendly
// pronunciation before it is sent.
func (e *ElevenLabs) Synthesize(ctx context.Context, req SpeechRequest) (*Audio, error) {
	p, ok := personality.Get(req.Personality)
	if !ok {
		return nil, fmt.Errorf("unknown personality: %s", req.Personality)
	}

	settings := p.VoiceSettings
	body, err := json.Marshal(elevenLabsRequest{
		Text:          NormalizeForSpeech(req.Text),
		ModelID:       e.modelID,
		VoiceSettings: &settings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, p.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", e.apiKey)
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("accept", "audio/mpeg")

	httpResp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	return &Audio{Data: respBody, MIME: "audio/mpeg", Vendor: e.Name()}, nil
}
