// Package safety screens kids' messages before they reach a language model.
// A Filter holds a list of blocked words and phrases; flagged messages are
// answered with a gentle redirect instead of a model completion.
package safety

import (
	"math/rand"
	"strings"
)

// defaultBlocked covers topics the robots should steer away from. Deployments
// extend (never replace) this list via configuration.
var defaultBlocked = []string{
	"kill",
	"suicide",
	"drugs",
	"gun",
	"weapon",
	"address",
	"phone number",
	"credit card",
	"password",
}

var redirects = []string{
	"Hmm, that's not something I can talk about. What else is on your mind?",
	"Let's chat about something else! What's your favorite animal?",
	"I'd rather talk about fun stuff. Want to hear something cool about space?",
}

// Filter flags messages containing blocked words or phrases. Matching is
// case-insensitive on whole words, so "kill" does not flag "skill".
type Filter struct {
	blocked []string
}

// NewFilter builds a Filter from the built-in list plus any extra words.
func NewFilter(extra ...string) *Filter {
	blocked := make([]string, 0, len(defaultBlocked)+len(extra))
	blocked = append(blocked, defaultBlocked...)
	for _, word := range extra {
		if w := strings.ToLower(strings.TrimSpace(word)); w != "" {
			blocked = append(blocked, w)
		}
	}
	return &Filter{blocked: blocked}
}

// Flag reports the first blocked word found in text, or "" and false when
// the text is clean.
func (f *Filter) Flag(text string) (string, bool) {
	lowered := strings.ToLower(text)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r == '\'')
	})
	words := make(map[string]struct{}, len(fields))
	for _, w := range fields {
		words[w] = struct{}{}
	}
	for _, blocked := range f.blocked {
		if strings.ContainsRune(blocked, ' ') {
			// Phrases match as substrings.
			if strings.Contains(lowered, blocked) {
				return blocked, true
			}
			continue
		}
		if _, ok := words[blocked]; ok {
			return blocked, true
		}
	}
	return "", false
}

// Redirect returns a random kid-friendly deflection for a flagged message.
func Redirect() string {
	return redirects[rand.Intn(len(redirects))]
}
