// Package tts converts robot replies to speech. ElevenLabs is the primary
// vendor with Cartesia as the fallback; the Chain type tries each in order
// so a vendor outage degrades latency, not correctness.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoSynthesizer is returned by Chain when no vendor is configured.
var ErrNoSynthesizer = errors.New("tts: no synthesizer configured")

// SpeechRequest asks for the given text spoken in the named robot
// personality's voice. Each vendor maps the personality to its own voice ID.
type SpeechRequest struct {
	Text        string
	Personality string
}

// Audio is the synthesized result.
type Audio struct {
	Data   []byte
	MIME   string
	Vendor string
}

// Synthesizer is implemented by every TTS vendor client.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, req SpeechRequest) (*Audio, error)
}

// Chain tries each synthesizer in order and returns the first success.
type Chain struct {
	synths []Synthesizer
	logger *slog.Logger
}

// NewChain builds a fallback chain over the given synthesizers.
func NewChain(logger *slog.Logger, synths ...Synthesizer) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{synths: synths, logger: logger}
}

// Name identifies the chain in logs and metrics.
func (c *Chain) Name() string { return "chain" }

// Synthesize walks the configured vendors until one succeeds. The last
// vendor's error is returned when all fail.
func (c *Chain) Synthesize(ctx context.Context, req SpeechRequest) (*Audio, error) {
	if len(c.synths) == 0 {
		return nil, ErrNoSynthesizer
	}

	var lastErr error
	for _, s := range c.synths {
		audio, err := s.Synthesize(ctx, req)
		if err == nil {
			return audio, nil
		}
		lastErr = err
		c.logger.Warn("tts vendor failed, trying next",
			"vendor", s.Name(),
			"personality", req.Personality,
			"error", err)
	}
	return nil, fmt.Errorf("all tts vendors failed: %w", lastErr)
}
