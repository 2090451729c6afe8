package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage"
)

func testLibrary(t *testing.T) *SQLiteLibrary {
	t.Helper()
	l, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening memory db: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestSaveAndGetStory(t *testing.T) {
	l := testLibrary(t)
	ctx := context.Background()

	st := &storage.Story{
		ID:         "abc12345-0000-0000-0000-000000000000",
		Title:      "رحلة الصحراء",
		Genre:      "مغامرة",
		Length:     "قصيرة",
		Paragraphs: []string{"الفقرة الأولى.", "الفقرة الثانية.", "الفقرة الأخيرة."},
	}

	if err := l.SaveStory(ctx, st); err != nil {
		t.Fatalf("SaveStory: %v", err)
	}

	got, err := l.GetStory(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetStory: %v", err)
	}

	if got.Title != "رحلة الصحراء" {
		t.Errorf("title = %q, want %q", got.Title, "رحلة الصحراء")
	}
	if got.Genre != "مغامرة" {
		t.Errorf("genre = %q, want %q", got.Genre, "مغامرة")
	}
	if len(got.Paragraphs) != 3 {
		t.Fatalf("got %d paragraphs, want 3", len(got.Paragraphs))
	}
	if got.Paragraphs[2] != "الفقرة الأخيرة." {
		t.Errorf("last paragraph = %q", got.Paragraphs[2])
	}
	if got.ArchivedAt.IsZero() {
		t.Error("archived_at should not be zero")
	}
}

func TestSaveStoryUpsert(t *testing.T) {
	l := testLibrary(t)
	ctx := context.Background()

	st := &storage.Story{ID: "aaa", Title: "بلا عنوان", Paragraphs: []string{"نص"}}
	if err := l.SaveStory(ctx, st); err != nil {
		t.Fatalf("SaveStory: %v", err)
	}

	st.Title = "العنوان النهائي"
	if err := l.SaveStory(ctx, st); err != nil {
		t.Fatalf("SaveStory (second): %v", err)
	}

	got, err := l.GetStory(ctx, "aaa")
	if err != nil {
		t.Fatalf("GetStory: %v", err)
	}
	if got.Title != "العنوان النهائي" {
		t.Errorf("title = %q, want %q", got.Title, "العنوان النهائي")
	}

	stories, err := l.ListStories(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if len(stories) != 1 {
		t.Errorf("got %d stories after upsert, want 1", len(stories))
	}
}

func TestGetStoryByPrefix(t *testing.T) {
	l := testLibrary(t)
	ctx := context.Background()

	st := &storage.Story{ID: "abc12345-0000-0000-0000-000000000000", Paragraphs: []string{"نص"}}
	if err := l.SaveStory(ctx, st); err != nil {
		t.Fatalf("SaveStory: %v", err)
	}

	got, err := l.GetStory(ctx, "abc12345")
	if err != nil {
		t.Fatalf("GetStory by prefix: %v", err)
	}
	if got.ID != st.ID {
		t.Errorf("got ID %q, want %q", got.ID, st.ID)
	}
}

func TestGetStoryAmbiguousPrefix(t *testing.T) {
	l := testLibrary(t)
	ctx := context.Background()

	for _, id := range []string{
		"abc00000-0000-0000-0000-000000000000",
		"abc11111-0000-0000-0000-000000000000",
	} {
		if err := l.SaveStory(ctx, &storage.Story{ID: id, Paragraphs: []string{"نص"}}); err != nil {
			t.Fatalf("SaveStory: %v", err)
		}
	}

	_, err := l.GetStory(ctx, "abc")
	if err == nil {
		t.Fatal("expected error for ambiguous prefix")
	}
}

func TestGetStoryNotFound(t *testing.T) {
	l := testLibrary(t)

	_, err := l.GetStory(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListStoriesFilterByGenre(t *testing.T) {
	l := testLibrary(t)
	ctx := context.Background()

	for _, st := range []*storage.Story{
		{ID: "aaa", Genre: "خيال علمي", Paragraphs: []string{"نص"}},
		{ID: "bbb", Genre: "مغامرة", Paragraphs: []string{"نص"}},
		{ID: "ccc", Genre: "خيال علمي", Paragraphs: []string{"نص"}},
	} {
		if err := l.SaveStory(ctx, st); err != nil {
			t.Fatalf("SaveStory: %v", err)
		}
	}

	stories, err := l.ListStories(ctx, storage.ListOptions{Genre: "خيال علمي"})
	if err != nil {
		t.Fatalf("ListStories: %v", err)
	}
	if len(stories) != 2 {
		t.Errorf("got %d stories, want 2", len(stories))
	}
}

func TestDeleteStory(t *testing.T) {
	l := testLibrary(t)
	ctx := context.Background()

	st := &storage.Story{ID: "abc12345-0000-0000-0000-000000000000", Paragraphs: []string{"نص"}}
	if err := l.SaveStory(ctx, st); err != nil {
		t.Fatalf("SaveStory: %v", err)
	}

	if err := l.DeleteStory(ctx, "abc12345"); err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}

	if _, err := l.GetStory(ctx, st.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err after delete = %v, want ErrNotFound", err)
	}
}
