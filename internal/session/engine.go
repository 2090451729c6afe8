package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/llm"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/story"
)

// View is the response shape returned to the HTTP layer after an
// initialize or advance transition.
type View struct {
	SessionID  string          `json:"story_id"`
	Paragraph  story.Paragraph `json:"paragraph"`
	IsComplete bool            `json:"is_complete"`
	Title      string          `json:"title,omitempty"`
}

// EditResult is the response shape of the edit operation.
type EditResult struct {
	Paragraphs []string `json:"paragraphs"`
	Title      string   `json:"title,omitempty"`
}

// Snapshot is a read-only copy of a session's story content, used for
// archiving finished stories.
type Snapshot struct {
	ID         string
	Title      string
	Paragraphs []string
	Config     story.Config
	Complete   bool
	CreatedAt  time.Time
}

// Engine drives all session transitions. A failed model call leaves the
// session exactly as it was; mutations commit only after the reply is
// received and parsed.
type Engine struct {
	client llm.Client
	store  *Store
}

// NewEngine creates an Engine backed by a fresh volatile store.
func NewEngine(client llm.Client) *Engine {
	return &Engine{client: client, store: NewStore()}
}

// Initialize starts a new story from a configuration: first model call,
// first paragraph, fresh identifier.
func (e *Engine) Initialize(ctx context.Context, cfg story.Config) (*View, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	messages := []llm.Message{
		llm.SystemMessage(story.SystemPrompt),
		llm.UserMessage(story.InitPrompt(cfg)),
	}

	reply, err := e.client.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	parsed := parseReply(reply)

	s := &Session{
		ID:            uuid.New().String(),
		Config:        cfg,
		MaxParagraphs: cfg.Length.Paragraphs(),
		Paragraphs:    []string{parsed.Paragraph},
		Current:       1,
		Choices:       parsed.Choices,
		Messages:      append(messages, llm.AssistantMessage(reply)),
		CreatedAt:     time.Now().UTC(),
	}
	e.store.Put(s)

	return &View{
		SessionID: s.ID,
		Paragraph: story.Paragraph{Content: parsed.Paragraph, Choices: parsed.Choices},
	}, nil
}

// AdvanceChoice advances the story by the numbered option the user
// picked. The valid option set is the parsed one committed with the last
// turn, so the text and the structured choices cannot drift apart.
func (e *Engine) AdvanceChoice(ctx context.Context, id string, choiceID int) (*View, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Edited {
		return nil, ErrEdited
	}

	if choiceID < 1 || choiceID > len(s.Choices) {
		return nil, fmt.Errorf("%w: %d of %d options", ErrInvalidChoice, choiceID, len(s.Choices))
	}

	prompt := story.ContinuationPrompt(
		strings.Join(s.Paragraphs, "\n"),
		choiceID, s.Choices[choiceID-1].Text,
		s.Current, s.MaxParagraphs,
	)
	return e.advance(ctx, s, prompt)
}

// AdvanceText advances the story from free text the user wrote instead of
// picking one of the offered options. The text is not validated.
func (e *Engine) AdvanceText(ctx context.Context, id, customText string) (*View, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Edited {
		return nil, ErrEdited
	}

	prompt := story.CustomContinuationPrompt(
		strings.Join(s.Paragraphs, "\n"),
		customText,
		s.Current, s.MaxParagraphs,
	)
	return e.advance(ctx, s, prompt)
}

// advance runs one continuation turn. Caller holds s.mu. Completion is
// evaluated against the index before incrementing: the paragraph just
// produced is the one that satisfies the terminal condition.
func (e *Engine) advance(ctx context.Context, s *Session, prompt string) (*View, error) {
	candidate := append(slices.Clone(s.Messages), llm.UserMessage(prompt))

	reply, err := e.client.Complete(ctx, candidate)
	if err != nil {
		return nil, err
	}
	parsed := parseReply(reply)

	complete := s.Current >= s.MaxParagraphs-1

	s.Messages = append(candidate, llm.AssistantMessage(reply))
	s.Paragraphs = append(s.Paragraphs, parsed.Paragraph)
	s.Current++
	if complete {
		s.Choices = nil
		if parsed.Title != "" {
			s.Title = parsed.Title
		}
	} else {
		s.Choices = parsed.Choices
	}

	view := &View{
		SessionID:  s.ID,
		Paragraph:  story.Paragraph{Content: parsed.Paragraph},
		IsComplete: complete,
	}
	if complete {
		view.Title = s.Title
	} else {
		view.Paragraph.Choices = parsed.Choices
	}
	return view, nil
}

// EnsureTitle returns the story's title, generating one with a dedicated
// model call if none was produced during the final turn. Idempotent.
func (e *Engine) EnsureTitle(ctx context.Context, id string) (string, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Title != "" {
		return s.Title, nil
	}

	messages := []llm.Message{
		llm.SystemMessage(story.SystemPrompt),
		llm.UserMessage(story.TitlePrompt(story.CompleteText("", s.Paragraphs))),
	}
	reply, err := e.client.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	s.Title = story.CleanTitle(reply)
	return s.Title, nil
}

// Edit rewrites the whole story per the user's instructions and replaces
// the stored paragraphs wholesale. The session becomes terminal: its
// paragraph counter is not recomputed against the new text.
func (e *Engine) Edit(ctx context.Context, id, instructions string) (*EditResult, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	messages := []llm.Message{
		llm.SystemMessage(story.EditSystemPrompt),
		llm.UserMessage(story.EditPrompt(strings.Join(s.Paragraphs, "\n"), instructions)),
	}
	reply, err := e.client.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	newTitle, paragraphs := story.ParseEdited(reply)

	s.Paragraphs = paragraphs
	s.Choices = nil
	s.Edited = true
	if newTitle != "" {
		s.Title = newTitle
	}

	return &EditResult{Paragraphs: paragraphs, Title: s.Title}, nil
}

// CompleteText returns the full story text with the title announcement
// when a title is set.
func (e *Engine) CompleteText(id string) (string, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return story.CompleteText(s.Title, s.Paragraphs), nil
}

// Snapshot returns a copy of the session's story content.
func (e *Engine) Snapshot(id string) (*Snapshot, error) {
	s, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return &Snapshot{
		ID:         s.ID,
		Title:      s.Title,
		Paragraphs: slices.Clone(s.Paragraphs),
		Config:     s.Config,
		Complete:   s.Complete() || s.Edited,
		CreatedAt:  s.CreatedAt,
	}, nil
}

// parseReply wraps story.ParseReply with a log line when the model
// ignored the format contract and the parser fell back.
func parseReply(text string) story.Reply {
	if story.Degraded(text) {
		log.Warn("model reply missing paragraph marker, using full text")
	}
	return story.ParseReply(text)
}
