// Package schema validates inbound API request bodies against JSON Schemas
// before any handler logic runs, so malformed or oversized input from the
// browser client is rejected with a clear message.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const chatSchema = `{
	"type": "object",
	"required": ["message"],
	"additionalProperties": false,
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": 500},
		"personality": {"type": "string", "enum": ["friend", "nerd", "zen", "pirate", "drama"]}
	}
}`

const speechSchema = `{
	"type": "object",
	"required": ["text", "personality"],
	"additionalProperties": false,
	"properties": {
		"text": {"type": "string", "minLength": 1, "maxLength": 1000},
		"personality": {"type": "string", "enum": ["friend", "nerd", "zen", "pirate", "drama"]}
	}
}`

var (
	chat   = jsonschema.MustCompileString("chat.json", chatSchema)
	speech = jsonschema.MustCompileString("speech.json", speechSchema)
)

func validate(s *jsonschema.Schema, body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// ValidateChat checks a POST /api/chat body.
func ValidateChat(body []byte) error { return validate(chat, body) }

// ValidateSpeech checks a POST /api/voice/tts body.
func ValidateSpeech(body []byte) error { return validate(speech, body) }
