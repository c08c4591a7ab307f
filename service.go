// Package robotgateway provides the chat service behind the robot
// personalities app: it routes a child's message through the configured
// language-model providers, caches responses, synthesizes speech, and
// records conversation turns.
//
// The Service type is the main entry point: create one with NewService,
// register providers with RegisterProvider, then serve requests with Chat
// and Speak. Configuration is loaded from YAML or JSON via [LoadConfig].
package robotgateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/robotalk-labs/robot-gateway/internal/cache"
	"github.com/robotalk-labs/robot-gateway/internal/chatlog"
	"github.com/robotalk-labs/robot-gateway/internal/circuitbreaker"
	"github.com/robotalk-labs/robot-gateway/internal/logging"
	"github.com/robotalk-labs/robot-gateway/internal/metrics"
	"github.com/robotalk-labs/robot-gateway/internal/personality"
	"github.com/robotalk-labs/robot-gateway/internal/safety"
	"github.com/robotalk-labs/robot-gateway/internal/tts"
	"github.com/robotalk-labs/robot-gateway/providers"
)

// ErrUnknownPersonality is returned for personality names outside the
// scripted set.
var ErrUnknownPersonality = errors.New("unknown personality")

// ChatRequest is a single message from a child to a robot personality.
type ChatRequest struct {
	Message     string `json:"message"`
	Personality string `json:"personality,omitempty"`
}

// ChatResult is the robot's reply.
type ChatResult struct {
	Reply       string `json:"reply"`
	Personality string `json:"personality"`
	Provider    string `json:"provider"`
	Cached      bool   `json:"cached"`
}

// completion pairs a reply with the token usage of the round-trip that
// produced it. Cached and canned replies consumed no tokens, so only a
// fresh provider completion carries a non-zero usage.
type completion struct {
	result ChatResult
	usage  providers.Usage
}

// Service wires the providers, caches, TTS chain, and conversation log into
// the chat operations. One Service instance is created per process and
// shared by all requests; construct it in main and pass it to the handlers.
type Service struct {
	cfg       Config
	registry  *providers.Registry
	responses *cache.Cache[ChatResult]
	audio     *cache.Cache[*tts.Audio]
	synth     tts.Synthesizer
	turns     chatlog.Writer
	filter    *safety.Filter
	breakers  *circuitbreaker.Set
	group     singleflight.Group
}

// NewService creates a Service from cfg with no providers registered and
// persistence disabled until SetChatLog is called.
func NewService(cfg Config) *Service {
	maxAge := time.Duration(cfg.Cache.MaxAge) * time.Second
	s := &Service{
		cfg:       cfg,
		registry:  providers.NewRegistry(),
		responses: cache.New[ChatResult](cfg.Cache.MaxSize, maxAge),
		audio:     cache.New[*tts.Audio](cfg.Cache.MaxSize, maxAge),
		turns:     chatlog.NoopWriter{},
		filter:    safety.NewFilter(cfg.Chat.BlockedWords...),
		breakers:  circuitbreaker.NewSet(0, 0, 0),
	}
	s.responses.OnEvent = cacheEventCounter("chat")
	s.audio.OnEvent = cacheEventCounter("tts")
	return s
}

// cacheEventCounter feeds a cache's expired/evicted drops into the shared
// cache_events metric alongside the hit/miss events counted in Chat/Speak.
func cacheEventCounter(name string) func(string) {
	return func(event string) {
		metrics.CacheEvents.WithLabelValues(name, event).Inc()
	}
}

// RegisterProvider adds a language-model backend.
func (s *Service) RegisterProvider(p providers.Provider) {
	s.registry.Register(p)
}

// Providers returns the registered provider names.
func (s *Service) Providers() []string {
	return s.registry.List()
}

// SetChatLog installs the conversation log writer.
func (s *Service) SetChatLog(w chatlog.Writer) {
	if w == nil {
		w = chatlog.NoopWriter{}
	}
	s.turns = w
}

// SetSynthesizer installs the TTS backend (usually a tts.Chain).
func (s *Service) SetSynthesizer(t tts.Synthesizer) {
	s.synth = t
}

// Chat produces a personality-framed reply to the child's message. Repeated
// identical requests within the cache window are served from memory without
// a provider round-trip; concurrent identical requests share one round-trip.
// When every configured target fails, a canned personality reply is served
// and the request still succeeds — a child never sees a provider error.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	start := time.Now()
	log := logging.FromContext(ctx)

	name := req.Personality
	if name == "" {
		name = personality.DefaultName
	}
	pers, ok := personality.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPersonality, name)
	}

	if word, flagged := s.filter.Flag(req.Message); flagged {
		metrics.ChatRequestsTotal.WithLabelValues(name, "filtered").Inc()
		log.Info("message flagged by safety filter", "personality", name, "word", word)
		result := ChatResult{
			Reply:       pers.Decorate(safety.Redirect()),
			Personality: name,
		}
		s.record(ctx, name, req.Message, result, providers.Usage{})
		return &result, nil
	}

	key := cache.GenerateKey(map[string]any{
		"message":     req.Message,
		"personality": name,
	})

	if cached, ok := s.responses.Get(key); ok {
		metrics.CacheEvents.WithLabelValues("chat", "hit").Inc()
		metrics.ChatDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		metrics.ChatRequestsTotal.WithLabelValues(name, "success").Inc()
		cached.Cached = true
		s.record(ctx, name, req.Message, cached, providers.Usage{})
		log.Debug("chat served from cache", "personality", name)
		return &cached, nil
	}
	metrics.CacheEvents.WithLabelValues("chat", "miss").Inc()

	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.complete(ctx, pers, name, key, req.Message)
	})
	if err != nil {
		// complete never fails today (it degrades to a canned reply), but
		// singleflight still forwards errors from future paths.
		metrics.ChatRequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	comp := v.(*completion)
	if shared {
		log.Debug("chat shared an in-flight completion", "personality", name)
	}

	status := "success"
	if comp.result.Provider == "" {
		status = "fallback"
	}
	metrics.ChatRequestsTotal.WithLabelValues(name, status).Inc()
	metrics.ChatDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	out := comp.result
	s.record(ctx, name, req.Message, out, comp.usage)
	return &out, nil
}

// complete walks the configured targets in order and caches the first
// successful reply. All-targets-down degrades to the personality's canned
// fallback, which is not cached so real replies resume as soon as a
// provider recovers.
func (s *Service) complete(ctx context.Context, pers *personality.Personality, name, key, message string) (*completion, error) {
	log := logging.FromContext(ctx)

	for _, target := range s.cfg.Chat.Targets {
		p, ok := s.registry.Get(target.Provider)
		if !ok {
			continue
		}
		breaker := s.breakers.Get(target.Provider)
		if !breaker.Allow() {
			log.Debug("provider circuit open, skipping",
				"provider", target.Provider)
			continue
		}
		resp, err := p.Complete(ctx, providers.Request{
			Model:       target.Model,
			System:      pers.SystemPrompt,
			Messages:    []providers.Message{{Role: providers.RoleUser, Content: message}},
			MaxTokens:   s.cfg.Chat.MaxTokens,
			Temperature: s.cfg.Chat.Temperature,
		})
		if err != nil {
			breaker.RecordFailure()
			metrics.ProviderErrors.WithLabelValues(target.Provider).Inc()
			log.Warn("provider failed, trying next target",
				"provider", target.Provider,
				"model", target.Model,
				"error", err)
			continue
		}
		breaker.RecordSuccess()

		metrics.TokensTotal.WithLabelValues(resp.Provider, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.TokensTotal.WithLabelValues(resp.Provider, "completion").Add(float64(resp.Usage.CompletionTokens))

		result := ChatResult{
			Reply:       pers.Decorate(resp.Text),
			Personality: name,
			Provider:    resp.Provider,
		}
		s.responses.Set(key, result)
		return &completion{result: result, usage: resp.Usage}, nil
	}

	log.Error("all chat targets failed, serving canned reply", "personality", name)
	return &completion{result: ChatResult{
		Reply:       pers.Fallback(),
		Personality: name,
	}}, nil
}

func (s *Service) record(ctx context.Context, name, message string, result ChatResult, usage providers.Usage) {
	err := s.turns.Write(ctx, chatlog.Entry{
		TraceID:          logging.TraceIDFromContext(ctx),
		Personality:      name,
		Message:          message,
		Reply:            result.Reply,
		Provider:         result.Provider,
		Cached:           result.Cached,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("failed to record conversation turn", "error", err)
	}
}

// Greeting returns a canned greeting for the personality without a model
// round-trip.
func (s *Service) Greeting(name string) (string, error) {
	if name == "" {
		name = personality.DefaultName
	}
	p, ok := personality.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPersonality, name)
	}
	return p.Greeting(), nil
}

// Speak synthesizes text in the personality's voice, serving repeated
// requests from the audio cache.
func (s *Service) Speak(ctx context.Context, text, name string) (*tts.Audio, error) {
	if s.synth == nil {
		return nil, tts.ErrNoSynthesizer
	}
	if name == "" {
		name = personality.DefaultName
	}
	if _, ok := personality.Get(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPersonality, name)
	}

	key := cache.GenerateKey(map[string]any{
		"text":        text,
		"personality": name,
	})
	if audio, ok := s.audio.Get(key); ok {
		metrics.CacheEvents.WithLabelValues("tts", "hit").Inc()
		return audio, nil
	}
	metrics.CacheEvents.WithLabelValues("tts", "miss").Inc()

	audio, err := s.synth.Synthesize(ctx, tts.SpeechRequest{Text: text, Personality: name})
	if err != nil {
		metrics.TTSRequestsTotal.WithLabelValues(s.synth.Name(), "error").Inc()
		return nil, err
	}
	metrics.TTSRequestsTotal.WithLabelValues(audio.Vendor, "success").Inc()

	s.audio.Set(key, audio)
	return audio, nil
}

// ProviderHealth reports each provider's circuit state for the health
// endpoint. Providers never tried yet are absent.
func (s *Service) ProviderHealth() map[string]string {
	return s.breakers.States()
}

// CacheStats reports both response caches for the stats endpoint.
func (s *Service) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"chat": s.responses.Stats(),
		"tts":  s.audio.Stats(),
	}
}

// ClearCaches empties both response caches.
func (s *Service) ClearCaches() {
	s.responses.Clear()
	s.audio.Clear()
}
