package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rawi",
	Short: "Rawi - Arabic interactive story generation",
	Long: `Rawi generates interactive Arabic stories with an LLM.

The reader steers the plot at every paragraph by picking one of three
options or writing their own continuation. Finished stories can be
narrated aloud and are archived into a local library.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
