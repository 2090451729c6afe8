package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/config"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/presets"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/session"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage/sqlite"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/story"
)

var (
	presetFlag string
	lengthFlag string
	genreFlag  string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play an interactive story in the terminal",
	Long: `Generate a story paragraph by paragraph, picking an option or
writing your own continuation at each step. The finished story is
archived into the library.

Examples:
  rawi play --preset desert
  rawi play --length short --genre مغامرة`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&presetFlag, "preset", "", "Preset name from the presets directory")
	playCmd.Flags().StringVar(&lengthFlag, "length", "short", "Story length: short, medium, long")
	playCmd.Flags().StringVar(&genreFlag, "genre", string(story.GenreAdventure), "Primary genre, in Arabic")
	rootCmd.AddCommand(playCmd)
}

func playConfig(cfg *config.Config) (story.Config, error) {
	if presetFlag != "" {
		p, err := presets.Load(filepath.Join(cfg.Presets.Dir, presetFlag+".yaml"))
		if err != nil {
			return story.Config{}, err
		}
		return p.Config(), nil
	}
	return story.Config{
		Length:      story.Length(lengthFlag),
		PrimaryType: story.Genre(genreFlag),
	}, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	storyCfg, err := playConfig(cfg)
	if err != nil {
		return err
	}

	engine := newEngine(cfg)
	ctx := context.Background()

	fmt.Println("راوي - قصة تفاعلية")
	fmt.Println()

	view, err := engine.Initialize(ctx, storyCfg)
	if err != nil {
		return err
	}
	printParagraph(view)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36m> \033[0m",
		HistoryFile:     "/tmp/rawi_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	view, err = playLoop(ctx, engine, view, rl)
	if err != nil {
		return err
	}
	if view == nil {
		fmt.Println("\nمع السلامة!")
		return nil
	}

	text, err := engine.CompleteText(view.SessionID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(strings.Repeat("─", 60))
	fmt.Println(text)

	return archivePlayed(ctx, cfg, engine, view.SessionID)
}

// lineReader is the part of readline the play loop consumes.
type lineReader interface {
	Readline() (string, error)
}

// playLoop drives the story until completion. A rejected turn (bad
// choice id, upstream failure) is reported and the story stays where it
// was; the current view is replaced only by a successful advance. A nil
// view with nil error means the player quit.
func playLoop(ctx context.Context, engine *session.Engine, view *session.View, rl lineReader) (*session.View, error) {
	for !view.IsComplete {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil, nil
			}
			return nil, err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// A bare number picks an option, anything else is a custom turn
		var next *session.View
		if n, convErr := strconv.Atoi(input); convErr == nil {
			next, err = engine.AdvanceChoice(ctx, view.SessionID, n)
		} else {
			next, err = engine.AdvanceText(ctx, view.SessionID, input)
		}
		if err != nil {
			fmt.Printf("\033[31mخطأ: %s\033[0m\n", err)
			continue
		}
		view = next
		printParagraph(view)
	}
	return view, nil
}

func printParagraph(view *session.View) {
	fmt.Println()
	fmt.Println(view.Paragraph.Content)
	if view.IsComplete && view.Title != "" {
		fmt.Printf("\n\033[32mالعنوان: %s\033[0m\n", view.Title)
		return
	}
	if len(view.Paragraph.Choices) > 0 {
		fmt.Println()
		for _, c := range view.Paragraph.Choices {
			fmt.Printf("  %d. %s\n", c.ID, c.Text)
		}
		fmt.Println("\nاختر رقماً أو اكتب تكملتك الخاصة:")
	}
}

func archivePlayed(ctx context.Context, cfg *config.Config, engine *session.Engine, id string) error {
	snap, err := engine.Snapshot(id)
	if err != nil {
		return err
	}

	library, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer library.Close()

	err = library.SaveStory(ctx, &storage.Story{
		ID:         snap.ID,
		Title:      snap.Title,
		Genre:      string(snap.Config.PrimaryType),
		Length:     string(snap.Config.Length),
		Paragraphs: snap.Paragraphs,
		CreatedAt:  snap.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("archiving story: %w", err)
	}

	fmt.Printf("\nحُفظت القصة في المكتبة (%s)\n", snap.ID[:8])
	return nil
}
