package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/llm"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/story"
)

// fakeClient replays scripted replies and records every call.
type fakeClient struct {
	replies []string
	calls   int
	err     error
	last    []llm.Message
}

func (f *fakeClient) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.last = messages
	if f.err != nil {
		return "", f.err
	}
	if f.calls >= len(f.replies) {
		return "", errors.New("fake client: out of scripted replies")
	}
	r := f.replies[f.calls]
	f.calls++
	return r, nil
}

const openingReply = "الفقرة:\nبدأت الرحلة عند الفجر.\nالخيارات:\n1. أحمد يتقدم\n2. أحمد يتراجع\n3. أحمد ينتظر"

const middleReply = "الفقرة:\nاشتدت العاصفة فجأة.\nالخيارات:\n1. أحمد يحتمي\n2. أحمد يركض\n3. أحمد ينادي"

const finalReply = "الفقرة:\nوعاد أحمد سالماً إلى قريته.\nالعنوان:\nعودة المسافر"

func shortConfig() story.Config {
	return story.Config{
		Length:      story.LengthShort,
		PrimaryType: story.GenreAdventure,
		Characters:  []story.Character{{Name: "أحمد", Gender: story.GenderMale, Description: "مسافر"}},
	}
}

func TestInitialize(t *testing.T) {
	client := &fakeClient{replies: []string{openingReply}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if view.SessionID == "" {
		t.Error("expected a session id")
	}
	if view.Paragraph.Content == "" {
		t.Error("expected non-empty paragraph content")
	}
	if len(view.Paragraph.Choices) != 3 {
		t.Errorf("choices = %d, want 3", len(view.Paragraph.Choices))
	}
	if view.IsComplete {
		t.Error("new story must not be complete")
	}

	// The conversation opens with the system prompt.
	if client.last[0].Role != llm.RoleSystem {
		t.Errorf("first message role = %s, want system", client.last[0].Role)
	}
}

func TestInitialize_InvalidConfig(t *testing.T) {
	client := &fakeClient{}
	e := NewEngine(client)

	_, err := e.Initialize(context.Background(), story.Config{Length: "endless"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
	if client.calls != 0 {
		t.Error("invalid config must not reach the model")
	}
}

func TestAdvanceChoice_UnknownSession(t *testing.T) {
	e := NewEngine(&fakeClient{})
	if _, err := e.AdvanceChoice(context.Background(), "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAdvanceChoice_InvalidChoice(t *testing.T) {
	client := &fakeClient{replies: []string{openingReply}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []int{0, -1, 4} {
		if _, err := e.AdvanceChoice(context.Background(), view.SessionID, id); !errors.Is(err, ErrInvalidChoice) {
			t.Errorf("choice %d: err = %v, want ErrInvalidChoice", id, err)
		}
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1 (rejections must not reach the model)", client.calls)
	}
}

func TestAdvanceChoice_NoChoicesOffered(t *testing.T) {
	client := &fakeClient{replies: []string{"الفقرة:\nنهاية مبكرة بلا خيارات."}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.AdvanceChoice(context.Background(), view.SessionID, 1); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("err = %v, want ErrInvalidChoice when no choices exist", err)
	}
}

func TestEndToEnd_ShortStory(t *testing.T) {
	client := &fakeClient{replies: []string{openingReply, middleReply, finalReply}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}
	id := view.SessionID

	// Paragraph 2 of 3: not terminal yet.
	view, err = e.AdvanceChoice(context.Background(), id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if view.IsComplete {
		t.Error("paragraph 2 of 3 must not complete the story")
	}
	if len(view.Paragraph.Choices) != 3 {
		t.Errorf("choices = %d, want 3", len(view.Paragraph.Choices))
	}

	// Paragraph 3 of 3: prior index 2 >= 3-1, so this turn is terminal.
	view, err = e.AdvanceChoice(context.Background(), id, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !view.IsComplete {
		t.Error("final paragraph must complete the story")
	}
	if view.Paragraph.Choices != nil {
		t.Errorf("choices = %+v, want suppressed on completion", view.Paragraph.Choices)
	}
	if view.Title != "عودة المسافر" {
		t.Errorf("title = %q, want %q", view.Title, "عودة المسافر")
	}

	s, err := e.store.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if s.Current != 3 || len(s.Paragraphs) != 3 {
		t.Errorf("index = %d, paragraphs = %d, want 3 and 3", s.Current, len(s.Paragraphs))
	}
	if !s.Complete() {
		t.Error("session must report complete")
	}
}

func TestAdvanceText(t *testing.T) {
	client := &fakeClient{replies: []string{openingReply, middleReply}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}

	view, err = e.AdvanceText(context.Background(), view.SessionID, "أحمد يقرر بناء قارب")
	if err != nil {
		t.Fatalf("AdvanceText: %v", err)
	}
	if view.Paragraph.Content == "" {
		t.Error("expected paragraph content")
	}

	// The custom text reaches the model inside the continuation prompt.
	prompt := client.last[len(client.last)-1].Content
	if !strings.Contains(prompt, "أحمد يقرر بناء قارب") {
		t.Error("continuation prompt missing the custom text")
	}
}

func TestAdvance_FailureLeavesStateUntouched(t *testing.T) {
	client := &fakeClient{replies: []string{openingReply}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}
	s, _ := e.store.Get(view.SessionID)
	paragraphs, messages := len(s.Paragraphs), len(s.Messages)

	client.err = errors.New("backend down")
	if _, err := e.AdvanceChoice(context.Background(), view.SessionID, 1); err == nil {
		t.Fatal("expected error")
	}

	if len(s.Paragraphs) != paragraphs || len(s.Messages) != messages || s.Current != 1 {
		t.Error("failed advance mutated session state")
	}

	// The session stays retryable: the same choice succeeds afterwards.
	client.err = nil
	client.replies = append(client.replies, middleReply)
	if _, err := e.AdvanceChoice(context.Background(), view.SessionID, 1); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestEnsureTitle_Idempotent(t *testing.T) {
	client := &fakeClient{replies: []string{openingReply, "العنوان: ليلة في الصحراء"}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}

	first, err := e.EnsureTitle(context.Background(), view.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if first != "ليلة في الصحراء" {
		t.Errorf("title = %q (echoed marker must be stripped)", first)
	}
	callsAfterFirst := client.calls

	second, err := e.EnsureTitle(context.Background(), view.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("second call = %q, want %q", second, first)
	}
	if client.calls != callsAfterFirst {
		t.Error("EnsureTitle with a stored title must not call the model")
	}
}

func TestEdit(t *testing.T) {
	client := &fakeClient{replies: []string{
		openingReply, middleReply, finalReply,
		"العنوان الجديد: نسخة منقحة\nفقرة أولى معدلة.\n\nفقرة ثانية معدلة.",
	}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}
	id := view.SessionID
	if _, err := e.AdvanceChoice(context.Background(), id, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AdvanceChoice(context.Background(), id, 1); err != nil {
		t.Fatal(err)
	}

	result, err := e.Edit(context.Background(), id, "اجعل النهاية أكثر تفاؤلاً")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if len(result.Paragraphs) != 2 {
		t.Errorf("paragraphs = %d, want 2", len(result.Paragraphs))
	}
	if result.Title != "نسخة منقحة" {
		t.Errorf("title = %q, want %q", result.Title, "نسخة منقحة")
	}
	if strings.Contains(result.Title, "العنوان الجديد") {
		t.Error("title still carries the new-title marker")
	}

	// Edited stories are terminal.
	if _, err := e.AdvanceChoice(context.Background(), id, 1); !errors.Is(err, ErrEdited) {
		t.Errorf("advance after edit: err = %v, want ErrEdited", err)
	}
	if _, err := e.AdvanceText(context.Background(), id, "المزيد"); !errors.Is(err, ErrEdited) {
		t.Errorf("advance by text after edit: err = %v, want ErrEdited", err)
	}
}

func TestCompleteText_ContainsAllParagraphsInOrder(t *testing.T) {
	client := &fakeClient{replies: []string{openingReply, middleReply, finalReply}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}
	id := view.SessionID
	e.AdvanceChoice(context.Background(), id, 1)
	e.AdvanceChoice(context.Background(), id, 1)

	text, err := e.CompleteText(id)
	if err != nil {
		t.Fatal(err)
	}

	s, _ := e.store.Get(id)
	last := -1
	for _, p := range s.Paragraphs {
		idx := strings.Index(text, p)
		if idx < 0 {
			t.Fatalf("text missing paragraph %q", p)
		}
		if idx < last {
			t.Fatal("paragraphs out of order in complete text")
		}
		last = idx
	}
	if !strings.HasPrefix(text, "قصة بعنوان عودة المسافر.") {
		t.Errorf("complete text missing title announcement: %q", text[:40])
	}
}

func TestSnapshot(t *testing.T) {
	client := &fakeClient{replies: []string{openingReply}}
	e := NewEngine(client)

	view, err := e.Initialize(context.Background(), shortConfig())
	if err != nil {
		t.Fatal(err)
	}

	snap, err := e.Snapshot(view.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if snap.ID != view.SessionID || len(snap.Paragraphs) != 1 || snap.Complete {
		t.Errorf("snapshot = %+v", snap)
	}

	// Mutating the snapshot must not touch the session.
	snap.Paragraphs[0] = "changed"
	s, _ := e.store.Get(view.SessionID)
	if s.Paragraphs[0] == "changed" {
		t.Error("snapshot shares backing storage with the session")
	}
}
