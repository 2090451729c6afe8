// Package story holds the domain model for interactive Arabic stories:
// the generation configuration, the prompt builders, and the parser for
// the model's semi-structured replies. Everything here is pure; the
// session engine owns all state.
package story

import "fmt"

// Length selects how many paragraphs a story runs.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Paragraphs returns the paragraph target for a length category.
// Unknown values fall back to the medium target.
func (l Length) Paragraphs() int {
	switch l {
	case LengthShort:
		return 3
	case LengthLong:
		return 7
	default:
		return 5
	}
}

func (l Length) description() string {
	switch l {
	case LengthShort:
		return "قصة قصيرة تتكون من 3 فقرات"
	case LengthLong:
		return "قصة طويلة تتكون من 7 فقرات"
	default:
		return "قصة متوسطة الطول تتكون من 5 فقرات"
	}
}

func (l Length) valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return true
	}
	return false
}

// Genre is a story genre, expressed in Arabic as the model expects it.
type Genre string

const (
	GenreRomance    Genre = "رومانسي"
	GenreHorror     Genre = "رعب"
	GenreComedy     Genre = "كوميدي"
	GenreAction     Genre = "أكشن"
	GenreAdventure  Genre = "مغامرة"
	GenreDrama      Genre = "دراما"
	GenreFantasy    Genre = "خيال"
	GenreHistorical Genre = "تاريخي"
	GenreMystery    Genre = "غموض"
	GenreNone       Genre = "لا"
)

// Gender is a character's gender, in Arabic.
type Gender string

const (
	GenderMale   Gender = "ذكر"
	GenderFemale Gender = "أنثى"
)

// Character describes one story character. Characters have no identity
// beyond their name; duplicates are kept as given.
type Character struct {
	Name        string `json:"name" yaml:"name"`
	Gender      Gender `json:"gender" yaml:"gender"`
	Description string `json:"description" yaml:"description"`
}

// Config is the immutable configuration a story session starts from.
type Config struct {
	Length        Length      `json:"length" yaml:"length"`
	PrimaryType   Genre       `json:"primary_type" yaml:"primary_type"`
	SecondaryType Genre       `json:"secondary_type" yaml:"secondary_type"`
	Characters    []Character `json:"characters" yaml:"characters"`
}

// Validate checks the structural requirements on a config.
func (c Config) Validate() error {
	if !c.Length.valid() {
		return fmt.Errorf("invalid story length %q", c.Length)
	}
	if c.PrimaryType == "" {
		return fmt.Errorf("primary genre is required")
	}
	for i, ch := range c.Characters {
		if ch.Name == "" {
			return fmt.Errorf("character %d has no name", i+1)
		}
	}
	return nil
}

// Choice is one option offered after a paragraph. IDs are 1-based and
// contiguous within a single paragraph's option set.
type Choice struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Paragraph is one unit of narrative. Choices is nil for a terminal
// paragraph.
type Paragraph struct {
	Content string   `json:"content"`
	Choices []Choice `json:"choices,omitempty"`
}
