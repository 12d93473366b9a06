package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stickerforge/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "stickerforge",
		Short: "AI sticker creation and curation tool",
		Long: `Stickerforge - Generate, edit, and curate AI stickers from your terminal.

Describe a sticker and get a batch of square, transparent-background
candidates back, or generate a short animated sticker. Edit any sticker
in place with free-text instructions, remove backgrounds, and keep the
whole collection saved locally or in Redis.`,
		Version: version,
	}

	// Add commands
	rootCmd.AddCommand(cli.NewKeyCmd())
	rootCmd.AddCommand(cli.NewStudioCmd())
	rootCmd.AddCommand(cli.NewTestCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
