package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no story matches the requested id.
var ErrNotFound = errors.New("story not found")

// Story is one finished story kept in the library. Live sessions are
// volatile; only completed text is archived.
type Story struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Genre      string    `json:"genre"`
	Length     string    `json:"length"`
	Paragraphs []string  `json:"paragraphs"`
	CreatedAt  time.Time `json:"created_at"`
	ArchivedAt time.Time `json:"archived_at"`
}

// ListOptions controls filtering and pagination for ListStories.
type ListOptions struct {
	Genre  string
	Limit  int
	Offset int
}

// Library is the persistence interface for finished stories.
type Library interface {
	// SaveStory inserts or replaces a story by id.
	SaveStory(ctx context.Context, s *Story) error

	// GetStory returns a story by id or id prefix.
	GetStory(ctx context.Context, id string) (*Story, error)

	// ListStories returns stories ordered by archived_at descending.
	ListStories(ctx context.Context, opts ListOptions) ([]Story, error)

	// DeleteStory removes a story.
	DeleteStory(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
