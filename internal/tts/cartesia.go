package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const cartesiaAPIVersion = "2024-06-10"

// cartesiaVoices maps robot personalities to Cartesia voice IDs. Cartesia
// has its own voice catalog, independent of the ElevenLabs IDs carried on
// the personality definitions.
var cartesiaVoices = map[string]string{
	"friend": "694f9389-aac1-45b6-b726-9d9369183238",
	"nerd":   "a0e99841-438c-4a64-b679-ae501e7d6091",
	"zen":    "79a125e8-cd45-4c13-8a67-188112f4dd22",
	"pirate": "41534e16-2966-4c6b-9670-111411def906",
	"drama":  "bf0a246a-8642-498a-9950-80c35e9276b5",
}

// Cartesia is the fallback Synthesizer backed by the Cartesia TTS API.
type Cartesia struct {
	apiKey     string
	baseURL    string
	modelID    string
	httpClient *http.Client
}

// NewCartesia creates a Cartesia client. The optional baseURL overrides the
// API endpoint (pass "" for the default).
func NewCartesia(apiKey, baseURL string) *Cartesia {
	if baseURL == "" {
		baseURL = "https://api.cartesia.ai"
	}
	return &Cartesia{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelID:    "sonic-english",
		httpClient: &http.Client{},
	}
}

// Name returns the vendor name.
func (c *Cartesia) Name() string { return "cartesia" }

type cartesiaVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	BitRate    int    `json:"bit_rate"`
	SampleRate int    `json:"sample_rate"`
}

type cartesiaRequest struct {
	ModelID      string               `json:"model_id"`
	Transcript   string               `json:"transcript"`
	Voice        cartesiaVoice        `json:"voice"`
	OutputFormat cartesiaOutputFormat `json:"output_format"`
}

// Synthesize converts text to speech via Cartesia's bytes endpoint.
func (c *Cartesia) Synthesize(ctx context.Context, req SpeechRequest) (*Audio, error) {
	voiceID, ok := cartesiaVoices[req.Personality]
	if !ok {
		return nil, fmt.Errorf("unknown personality: %s", req.Personality)
	}

	body, err := json.Marshal(cartesiaRequest{
		ModelID:    c.modelID,
		Transcript: NormalizeForSpeech(req.Text),
		Voice:      cartesiaVoice{Mode: "id", ID: voiceID},
		OutputFormat: cartesiaOutputFormat{
			Container:  "mp3",
			BitRate:    128000,
			SampleRate: 44100,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/bytes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("Cartesia-Version", cartesiaAPIVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cartesia API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	return &Audio{Data: respBody, MIME: "audio/mpeg", Vendor: c.Name()}, nil
}
