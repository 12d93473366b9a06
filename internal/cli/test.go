package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stickerforge/internal/codec"
	"github.com/liminalpurple/stickerforge/internal/config"
	"github.com/liminalpurple/stickerforge/internal/gallery"
	"github.com/liminalpurple/stickerforge/internal/imaging"
	"github.com/liminalpurple/stickerforge/internal/sticker"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test configuration and local functionality",
		Long: `Test that all local components are working correctly:

  - Configuration loads properly
  - API keys are configured
  - Storage backend round-trips data
  - Image normalization pipeline
  - Gallery rendering

No generation requests are sent; this only verifies setup before
running the studio.`,
		RunE: runTest,
	}
}

const selfTestKey = "stickerforge-selftest"

func runTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println("🧪 Running stickerforge tests...")
	fmt.Println()

	// Test 1: Load configuration
	fmt.Print("📋 Loading configuration... ")
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	fmt.Println("✅")

	// Test 2: Check keys
	fmt.Print("🔑 Checking API keys... ")
	if cfg.Gemini.APIKey == "" {
		fmt.Println("⚠️")
		fmt.Println("   No Gemini key yet - run 'stickerforge key' or set GEMINI_API_KEY")
	} else {
		fmt.Println("✅")
	}
	if cfg.Anthropic.APIKey == "" {
		fmt.Println("   Note: template regeneration needs ANTHROPIC_API_KEY")
	}

	// Test 3: Storage backend round-trip under a scratch key, so the
	// saved collection is never touched
	fmt.Printf("💾 Testing %s storage backend... ", cfg.Storage.Backend)
	kv, err := openBackend(cfg)
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	if err := kv.Set(ctx, selfTestKey, `{"ok":true}`); err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	value, found, err := kv.Get(ctx, selfTestKey)
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	if !found || value != `{"ok":true}` {
		fmt.Println("❌")
		return fmt.Errorf("storage verification failed: wrote one value, read another")
	}
	if err := kv.Delete(ctx, selfTestKey); err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	fmt.Println("✅")

	// Test 4: Image normalization
	fmt.Print("🖼️  Normalizing test image... ")
	data, mimeType, err := imaging.Normalize(testPNG(), cfg.Sticker.Size)
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	info, err := imaging.GetInfo(data)
	if err != nil {
		fmt.Printf("❌\n   Error: %v\n", err)
		return err
	}
	fmt.Printf("✅\n   %dx%d %s, %d bytes\n", info.Width, info.Height, mimeType, len(data))

	// Test 5: Gallery rendering
	fmt.Print("📜 Rendering test gallery... ")
	st := sticker.NewStatic(
		sticker.Image{Data: data, MimeType: mimeType},
		sticker.Image{Data: testPNG(), MimeType: "image/png"},
	)
	page := gallery.Render("Self Test", []sticker.Sticker{st})
	if len(page) == 0 {
		fmt.Println("❌")
		return fmt.Errorf("gallery rendering produced no output")
	}
	fmt.Printf("✅\n   %d bytes of HTML\n", len(page))

	// Test 6: Codec round-trip
	fmt.Print("🔁 Checking base64 codec... ")
	decoded, err := codec.DecodeBase64(codec.EncodeBase64(data))
	if err != nil || len(decoded) != len(data) {
		fmt.Println("❌")
		return fmt.Errorf("codec round-trip failed: %v", err)
	}
	fmt.Println("✅")
	fmt.Println()

	// All tests passed!
	fmt.Println("🎉 All local tests passed!")
	fmt.Println()
	fmt.Println("To start making stickers, run:")
	fmt.Println("  ./stickerforge studio")
	fmt.Println()

	return nil
}

// testPNG returns a minimal valid PNG (1x1 white pixel)
func testPNG() []byte {
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, // 1x1 dimensions
		0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
		0xDE, 0x00, 0x00, 0x00, 0x0C, 0x49, 0x44, 0x41, // IDAT chunk
		0x54, 0x08, 0xD7, 0x63, 0xF8, 0xFF, 0xFF, 0x3F,
		0x00, 0x05, 0xFE, 0x02, 0xFE, 0xDC, 0xCC, 0x59,
		0xE7, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, // IEND chunk
		0x44, 0xAE, 0x42, 0x60, 0x82,
	}
}
