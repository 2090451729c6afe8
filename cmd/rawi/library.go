package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/config"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/storage/sqlite"
)

var (
	genreFilter  string
	limitFlag    int
	exportFormat string
	exportOutput string
	forceFlag    bool
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib", "l"},
	Short:   "Manage archived stories",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived stories",
	RunE:  runLibraryList,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <story-id>",
	Short: "Show a story's full text",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryShow,
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <story-id>",
	Short: "Delete a story from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryDelete,
}

var libraryExportCmd = &cobra.Command{
	Use:   "export <story-id>",
	Short: "Export a story as markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryExport,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd, libraryShowCmd, libraryDeleteCmd, libraryExportCmd)

	libraryListCmd.Flags().StringVar(&genreFilter, "genre", "", "Filter by primary genre")
	libraryListCmd.Flags().IntVar(&limitFlag, "limit", 20, "Max stories to show")

	libraryExportCmd.Flags().StringVar(&exportFormat, "format", "md", "Export format: md or json")
	libraryExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")

	libraryDeleteCmd.Flags().BoolVar(&forceFlag, "force", false, "Skip confirmation")
}

func openLibrary() (storage.Library, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return sqlite.Open(cfg.Storage.DBPath)
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	library, err := openLibrary()
	if err != nil {
		return err
	}
	defer library.Close()

	stories, err := library.ListStories(context.Background(), storage.ListOptions{
		Genre: genreFilter,
		Limit: limitFlag,
	})
	if err != nil {
		return err
	}

	if len(stories) == 0 {
		fmt.Println("No stories in the library.")
		return nil
	}

	// Header
	fmt.Printf("%-10s %-35s %-12s %-8s %s\n", "ID", "TITLE", "GENRE", "LENGTH", "ARCHIVED")
	fmt.Println(strings.Repeat("─", 85))

	for _, st := range stories {
		title := st.Title
		if title == "" {
			title = "(untitled)"
		}

		fmt.Printf("%-10s %-35s %-12s %-8s %s\n",
			st.ID[:8], title, st.Genre, st.Length, timeAgo(st.ArchivedAt))
	}

	return nil
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	library, err := openLibrary()
	if err != nil {
		return err
	}
	defer library.Close()

	st, err := library.GetStory(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Story:    %s\n", st.ID)
	fmt.Printf("Title:    %s\n", st.Title)
	fmt.Printf("Genre:    %s\n", st.Genre)
	fmt.Printf("Length:   %s\n", st.Length)
	fmt.Printf("Created:  %s\n", st.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Archived: %s\n", st.ArchivedAt.Format(time.RFC3339))

	fmt.Printf("\nParagraphs: %d\n", len(st.Paragraphs))
	fmt.Println(strings.Repeat("─", 60))

	for _, p := range st.Paragraphs {
		fmt.Printf("\n%s\n", p)
	}

	return nil
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	library, err := openLibrary()
	if err != nil {
		return err
	}
	defer library.Close()

	ctx := context.Background()
	st, err := library.GetStory(ctx, args[0])
	if err != nil {
		return err
	}

	if !forceFlag {
		title := st.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("Delete story %s - %q? [y/N] ", st.ID[:8], title)
		var confirm string
		fmt.Scanln(&confirm)
		if strings.ToLower(confirm) != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := library.DeleteStory(ctx, st.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted story %s\n", st.ID[:8])
	return nil
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	library, err := openLibrary()
	if err != nil {
		return err
	}
	defer library.Close()

	st, err := library.GetStory(context.Background(), args[0])
	if err != nil {
		return err
	}

	var output string
	switch exportFormat {
	case "json":
		data, err := storage.ExportJSON(st)
		if err != nil {
			return err
		}
		output = string(data)
	default:
		output = storage.ExportMarkdown(st)
	}

	if exportOutput != "" {
		return os.WriteFile(exportOutput, []byte(output), 0o644)
	}

	fmt.Print(output)
	return nil
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
