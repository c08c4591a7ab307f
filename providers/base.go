package providers

// Base provides the fields shared by REST-based provider implementations.
// Embed it to avoid repeating name, apiKey, and baseURL handling.
type Base struct {
	name    string
	apiKey  string
	baseURL string
}

// Name returns the provider name.
func (b *Base) Name() string { return b.name }

// BaseURL returns the provider's root API URL (no trailing slash).
func (b *Base) BaseURL() string { return b.baseURL }
