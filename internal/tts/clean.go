// Package tts turns finished story text into narrated audio files and
// caches one audio file per story.
package tts

import (
	"regexp"
	"strings"
)

// Symbols that trip up the speech engine are replaced before synthesis.
var (
	punctRe    = regexp.MustCompile(`[!?؟،,;:#@_*=+\-/\\^$]`)
	quoteRe    = regexp.MustCompile("[\"'«»“”]")
	bracketRe  = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}|<[^>]*>`)
	spaceRe    = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`\.`)
)

// CleanText strips symbols and bracketed asides that degrade narration
// quality, keeping sentence-final periods as pauses.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "%", " بالمئة ")
	text = strings.ReplaceAll(text, "&", " و ")
	text = bracketRe.ReplaceAllString(text, " ")
	text = punctRe.ReplaceAllString(text, " ")
	text = quoteRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	text = sentenceRe.ReplaceAllString(text, ". ")
	return strings.TrimSpace(text)
}
