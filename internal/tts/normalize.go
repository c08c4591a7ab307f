package tts

import (
	"regexp"
	"strings"
	"unicode"
)

// Flash-tier TTS models do little text normalization of their own, so small
// numbers, currency, and clock times are rewritten before synthesis to keep
// pronunciation clear for children. Emoji are stripped entirely: the voices
// otherwise read them out as symbol names.

var numberWords = map[string]string{
	"0": "zero", "1": "one", "2": "two", "3": "three", "4": "four",
	"5": "five", "6": "six", "7": "seven", "8": "eight", "9": "nine",
	"10": "ten", "11": "eleven", "12": "twelve",
}

var (
	currencyRe = regexp.MustCompile(`\$(\d+)`)
	clockRe    = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	numberRe   = regexp.MustCompile(`\b\d+\b`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// NormalizeForSpeech rewrites text for clearer child-oriented pronunciation.
func NormalizeForSpeech(text string) string {
	// Currency first, before digits become words.
	out := currencyRe.ReplaceAllString(text, "$1 dollars")

	// "3:30" reads better as "3 30" than "three colon thirty".
	out = clockRe.ReplaceAllString(out, "$1 $2")

	out = numberRe.ReplaceAllStringFunc(out, func(n string) string {
		if word, ok := numberWords[n]; ok {
			return word
		}
		return n
	})

	out = stripEmoji(out)
	return strings.TrimSpace(spaceRe.ReplaceAllString(out, " "))
}

func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r) ||
			(r >= 0x1F000 && r <= 0x1FAFF) || r == 0xFE0F || r == 0x200D {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
