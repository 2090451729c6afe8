package storage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestExportMarkdown(t *testing.T) {
	st := &Story{
		ID:         "abc",
		Title:      "عودة المسافر",
		Genre:      "مغامرة",
		Length:     "قصيرة",
		Paragraphs: []string{"الفقرة الأولى.", "الفقرة الثانية."},
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	md := ExportMarkdown(st)

	if !strings.HasPrefix(md, "# عودة المسافر\n") {
		t.Errorf("missing title heading:\n%s", md)
	}
	if !strings.Contains(md, "**Genre:** مغامرة") {
		t.Errorf("missing genre line:\n%s", md)
	}
	if !strings.Contains(md, "الفقرة الأولى.\n\nالفقرة الثانية.") {
		t.Errorf("paragraphs not separated by blank line:\n%s", md)
	}
}

func TestExportMarkdownUntitled(t *testing.T) {
	st := &Story{ID: "abc", Paragraphs: []string{"نص"}}

	md := ExportMarkdown(st)
	if !strings.HasPrefix(md, "# abc\n") {
		t.Errorf("untitled story should fall back to id:\n%s", md)
	}
}

func TestExportJSON(t *testing.T) {
	st := &Story{ID: "abc", Title: "عنوان", Paragraphs: []string{"نص"}}

	data, err := ExportJSON(st)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var got Story
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Title != "عنوان" || len(got.Paragraphs) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
