package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liminalpurple/stickerforge/internal/app"
	"github.com/liminalpurple/stickerforge/internal/gallery"
)

// NewStudioCmd creates the studio command
func NewStudioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "studio",
		Short: "Run the interactive sticker studio",
		Long: `Run the interactive studio for creating and curating AI stickers.

Type a command at the prompt:

  generate <prompt>    Generate a batch of stickers from a prompt
  use <n> <subject>    Generate using template n with your subject
  video <prompt>       Generate one animated sticker
  templates [theme]    Show templates, or regenerate them for a theme
  list                 Show the collection
  select <n>           Pick sticker n for editing
  unselect             Drop the selection
  edit <instruction>   Edit the selected sticker in place
  bg                   Remove the selected sticker's background
  download <n>         Save sticker n to the download directory
  export [title]       Export the collection as an HTML gallery
  save / load / clear  Persist, restore, or wipe the collection
  key                  Select a new API key
  quit                 Leave the studio

Generation runs against the remote service and needs an API key; the
studio prompts for one the first time it is required.`,
		RunE: runStudio,
	}
}

func runStudio(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := newEnvironment(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = env.log.Sync() }()

	fmt.Println("🎨 Stickerforge Studio")
	if env.orch.Authenticated() {
		fmt.Println("🔑 API key loaded from config")
	} else {
		fmt.Println("🔑 No API key yet; you will be asked before the first generation")
	}
	fmt.Println("Type 'help' for commands, 'quit' to leave.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("stickerforge> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(verb) {
		case "quit", "exit":
			fmt.Println("Bye!")
			return nil
		case "help":
			fmt.Println(cmd.Long)
		case "generate":
			runOp(env, env.orch.GenerateStickers(ctx, rest))
		case "use":
			useTemplate(ctx, env, rest)
		case "video":
			fmt.Println("⏳ Video generation can take a few minutes...")
			runOp(env, env.orch.GenerateAnimation(ctx, rest))
		case "templates":
			if rest == "" {
				printTemplates(env.orch)
			} else {
				runOp(env, env.orch.RegenerateTemplates(ctx, rest))
				printTemplates(env.orch)
			}
		case "list":
			printCollection(env.orch)
		case "select":
			selectSticker(env, rest)
		case "unselect":
			env.orch.ClearSelection()
			fmt.Println("Selection cleared.")
		case "edit":
			env.orch.SetEditPrompt(rest)
			runOp(env, env.orch.EditSelected(ctx, rest))
		case "bg":
			runOp(env, env.orch.RemoveBackgroundSelected(ctx))
		case "download":
			downloadSticker(ctx, env, rest)
		case "export":
			exportGallery(env, rest)
		case "save":
			runOp(env, env.orch.Save(ctx))
		case "load":
			runOp(env, env.orch.Load(ctx))
		case "clear":
			runOp(env, env.orch.ClearCollection(ctx))
		case "key":
			if err := env.keychain.SelectCredential(ctx); err != nil {
				fmt.Printf("❌ %v\n", err)
			} else {
				fmt.Println("✅ key selected")
			}
		default:
			fmt.Printf("Unknown command %q; type 'help'.\n", verb)
		}
	}
}

// runOp prints the outcome message the orchestrator produced for the
// operation. Precondition failures already carry a message too; a
// busy rejection does not, so fall back to the error itself.
func runOp(env *environment, err error) {
	if err != nil {
		if msg := env.orch.Message(); msg.Kind == app.MessageError {
			fmt.Printf("❌ %s\n", msg.Text)
		} else {
			fmt.Printf("❌ %v\n", err)
		}
		return
	}
	if msg := env.orch.Message(); msg.Kind == app.MessageInfo {
		fmt.Printf("✅ %s\n", msg.Text)
	}
}

func useTemplate(ctx context.Context, env *environment, rest string) {
	indexText, subject, _ := strings.Cut(rest, " ")
	templates := env.orch.Templates()

	index, err := strconv.Atoi(indexText)
	if err != nil || index < 1 || index > len(templates) {
		fmt.Printf("Pick a template between 1 and %d.\n", len(templates))
		return
	}

	prompt := templates[index-1].Prompt
	if subject = strings.TrimSpace(subject); subject != "" {
		prompt = fmt.Sprintf("%s Subject: %s", prompt, subject)
	}

	fmt.Printf("Using template %q\n", templates[index-1].Name)
	runOp(env, env.orch.GenerateStickers(ctx, prompt))
}

func selectSticker(env *environment, rest string) {
	index, err := strconv.Atoi(rest)
	if err != nil {
		fmt.Println("Usage: select <n>")
		return
	}
	if err := env.orch.Select(index - 1); err != nil {
		fmt.Printf("❌ %s\n", env.orch.Message().Text)
		return
	}
	st := env.orch.Stickers()[index-1]
	fmt.Printf("Selected sticker %d (%s)\n", index, st.ID)
}

func downloadSticker(ctx context.Context, env *environment, rest string) {
	index, err := strconv.Atoi(rest)
	stickers := env.orch.Stickers()
	if err != nil || index < 1 || index > len(stickers) {
		fmt.Printf("Pick a sticker between 1 and %d.\n", len(stickers))
		return
	}

	st := stickers[index-1]
	name := fmt.Sprintf("sticker-%s", st.ID)

	var path string
	if st.IsAnimated {
		fmt.Println("⏳ Fetching video...")
		path, err = env.deliverer.SaveVideo(ctx, st, env.keychain.Credential(), name)
	} else {
		path, err = env.deliverer.SaveImage(st, name)
	}
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Printf("✅ saved to %s\n", path)
}

func exportGallery(env *environment, title string) {
	if title == "" {
		title = "My Stickers"
	}

	page := gallery.Render(title, env.orch.Stickers())
	path, err := env.deliverer.SaveBytes("gallery.html", page)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Printf("✅ gallery exported to %s\n", path)
}

func printCollection(o *app.Orchestrator) {
	stickers := o.Stickers()
	if len(stickers) == 0 {
		fmt.Println("The collection is empty; try 'generate'.")
		return
	}

	selected := o.Selected()
	for i, st := range stickers {
		marker := "  "
		if i == selected {
			marker = "▶ "
		}
		if st.IsAnimated {
			fmt.Printf("%s%2d. 🎬 animated (%s) %s\n", marker, i+1, st.VideoMIME, st.ID)
		} else {
			fmt.Printf("%s%2d. 🖼  %s, %d bytes, %s\n", marker, i+1, st.Display.MimeType, len(st.Display.Data), st.ID)
		}
	}
}

func printTemplates(o *app.Orchestrator) {
	for i, tpl := range o.Templates() {
		fmt.Printf("%2d. %s %s - %s\n", i+1, tpl.Icon, tpl.Name, tpl.Prompt)
	}
}
