package robotgateway

// Config holds the configuration for the robot chat gateway.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `json:"server" yaml:"server"`
	// Chat configures the model targets tried in order for each request.
	Chat ChatConfig `json:"chat" yaml:"chat"`
	// Cache bounds the in-memory response caches.
	Cache CacheConfig `json:"cache" yaml:"cache"`
	// TTS selects the speech vendors tried in order.
	TTS TTSConfig `json:"tts" yaml:"tts"`
	// RateLimit caps per-client request rates.
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	// Storage selects the conversation log backend.
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// ChatTarget names one provider/model pair in the fallback order.
type ChatTarget struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
}

// ChatConfig configures model completion behavior.
type ChatConfig struct {
	// Targets are tried in order until one succeeds. When every target
	// fails, the personality's canned fallback reply is served instead.
	Targets     []ChatTarget `json:"targets" yaml:"targets"`
	MaxTokens   int          `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	// BlockedWords extends the built-in safety filter.
	BlockedWords []string `json:"blocked_words,omitempty" yaml:"blocked_words,omitempty"`
}

// CacheConfig bounds the response caches. MaxAge is in seconds.
type CacheConfig struct {
	MaxAge  int `json:"max_age,omitempty" yaml:"max_age,omitempty"`
	MaxSize int `json:"max_size,omitempty" yaml:"max_size,omitempty"`
}

// TTSConfig selects speech vendors, tried in order.
type TTSConfig struct {
	Vendors []string `json:"vendors,omitempty" yaml:"vendors,omitempty"`
}

// RateLimitConfig caps per-client request rates.
type RateLimitConfig struct {
	PerSecond float64 `json:"per_second,omitempty" yaml:"per_second,omitempty"`
	Burst     float64 `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// Storage driver constants.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StorageConfig selects the conversation log backend.
type StorageConfig struct {
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// DefaultConfig returns the configuration used when no file is provided:
// Anthropic primary with an OpenAI fallback, five-minute bounded caches,
// and no persistence.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Chat: ChatConfig{
			Targets: []ChatTarget{
				{Provider: "anthropic", Model: "claude-3-5-haiku-20241022"},
				{Provider: "openai", Model: "gpt-4o-mini"},
			},
			MaxTokens: 300,
		},
		Cache:     CacheConfig{MaxAge: 300, MaxSize: 100},
		TTS:       TTSConfig{Vendors: []string{"elevenlabs", "cartesia"}},
		RateLimit: RateLimitConfig{PerSecond: 1, Burst: 5},
		Storage:   StorageConfig{Driver: DriverNone},
	}
}
