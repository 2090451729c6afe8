package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportMarkdown renders a finished story as a markdown document.
func ExportMarkdown(s *Story) string {
	var b strings.Builder

	title := s.Title
	if title == "" {
		title = s.ID
	}
	b.WriteString(fmt.Sprintf("# %s\n\n", title))
	b.WriteString(fmt.Sprintf("- **Story:** %s\n", s.ID))
	if s.Genre != "" {
		b.WriteString(fmt.Sprintf("- **Genre:** %s\n", s.Genre))
	}
	b.WriteString(fmt.Sprintf("- **Length:** %s\n", s.Length))
	b.WriteString(fmt.Sprintf("- **Created:** %s\n", s.CreatedAt.Format("2006-01-02 15:04:05")))
	b.WriteString("\n---\n\n")

	for _, p := range s.Paragraphs {
		b.WriteString(p)
		b.WriteString("\n\n")
	}

	return b.String()
}

// ExportJSON renders a finished story as formatted JSON.
func ExportJSON(s *Story) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
