package story

import (
	"fmt"
	"strings"
)

// CompleteText joins the stored paragraphs into the flat text handed to
// speech synthesis, prefixing a speech-friendly announcement of the title
// when one is set.
func CompleteText(title string, paragraphs []string) string {
	text := strings.Join(paragraphs, "\n\n")
	if title != "" {
		text = fmt.Sprintf("قصة بعنوان %s.\n\n%s", title, text)
	}
	return text
}
