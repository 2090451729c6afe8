package story

import (
	"regexp"
	"strings"
)

// Reply is the structured view of one model reply. The three fields are
// extracted independently; any of them may be empty.
type Reply struct {
	Paragraph string
	Choices   []Choice
	Title     string
}

var (
	paragraphRe   = regexp.MustCompile(`(?s)الفقرة:(.*?)(?:الخيارات:|العنوان:|$)`)
	choicesRe     = regexp.MustCompile(`(?s)الخيارات:(.*)$`)
	titleRe       = regexp.MustCompile(`(?s)العنوان:(.*)$`)
	choiceNumRe   = regexp.MustCompile(`\d+\.`)
	lineNumRe     = regexp.MustCompile(`^\d+\.\s*`)
	newTitleRe    = regexp.MustCompile(`العنوان الجديد:\s*([^\n]*)`)
	newTitleCutRe = regexp.MustCompile(`العنوان الجديد:[^\n]*\n?`)
)

// ParseReply extracts the paragraph, choices, and title from a raw model
// reply. It never fails: a reply with no recognizable markers degrades to
// the whole trimmed text as the paragraph, no choices, and no title.
func ParseReply(text string) Reply {
	var r Reply

	if m := paragraphRe.FindStringSubmatch(text); m != nil {
		r.Paragraph = strings.TrimSpace(m[1])
	} else {
		r.Paragraph = strings.TrimSpace(text)
	}

	if m := choicesRe.FindStringSubmatch(text); m != nil {
		r.Choices = parseChoices(strings.TrimSpace(m[1]))
	}

	if m := titleRe.FindStringSubmatch(text); m != nil {
		r.Title = strings.TrimSpace(m[1])
	}

	return r
}

// Degraded reports whether the reply lacked a paragraph marker and the
// parser fell back to the whole text. Worth logging: it means the model
// ignored the format contract.
func Degraded(text string) bool {
	return !paragraphRe.MatchString(text)
}

// parseChoices extracts numbered options from the text after the choices
// marker: text between "1." style markers, or, when that yields nothing,
// the first three non-blank lines with any leading numbering stripped.
func parseChoices(text string) []Choice {
	var choices []Choice

	locs := choiceNumRe.FindAllStringIndex(text, -1)
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		c := strings.TrimSpace(text[loc[1]:end])
		if c != "" {
			choices = append(choices, Choice{ID: len(choices) + 1, Text: c})
		}
	}
	if len(choices) > 0 {
		return choices
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		choices = append(choices, Choice{
			ID:   len(choices) + 1,
			Text: strings.TrimSpace(lineNumRe.ReplaceAllString(line, "")),
		})
		if len(choices) == 3 {
			break
		}
	}
	return choices
}

// CleanTitle strips a leading title marker the model may echo back when
// asked for a title alone.
func CleanTitle(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(text), MarkerTitle, ""))
}

// ParseEdited extracts an optional new-title line from an edited story and
// splits the remaining text on blank lines into an ordered paragraph list.
func ParseEdited(text string) (title string, paragraphs []string) {
	if m := newTitleRe.FindStringSubmatch(text); m != nil {
		title = strings.TrimSpace(m[1])
		text = newTitleCutRe.ReplaceAllString(text, "")
	}

	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return title, paragraphs
}
