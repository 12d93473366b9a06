package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stickerforge/internal/config"
)

// NewKeyCmd creates the key command
func NewKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Select the Gemini API key",
		Long: `Interactive API key selection.

Prompts for a Gemini API key with hidden input and saves it to the
configuration file for future use. The key gates every generation
request; nothing is sent to the service before one is selected.`,
		RunE: runKey,
	}
}

func runKey(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(context.Background())
	if err != nil {
		return err
	}

	if env.keychain.HasCredential() {
		fmt.Println("A key is already selected; entering a new one replaces it.")
	}

	if err := env.keychain.SelectCredential(cmd.Context()); err != nil {
		return fmt.Errorf("key selection failed: %w", err)
	}

	configDir, _ := config.GetConfigDir()
	fmt.Println()
	fmt.Println("Key selected and saved!")
	fmt.Printf("Config: %s/config.yaml\n", configDir)
	fmt.Println()
	fmt.Println("You can now run 'stickerforge studio' to start making stickers!")

	return nil
}
