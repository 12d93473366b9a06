// Package gallery renders the collection as a standalone HTML page with
// every static sticker embedded as a data URL.
package gallery

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/liminalpurple/stickerforge/internal/codec"
	"github.com/liminalpurple/stickerforge/internal/sticker"
)

// Render builds the gallery page for a collection.
func Render(title string, stickers []sticker.Sticker) []byte {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", title)

	if len(stickers) == 0 {
		md.WriteString("No stickers yet.\n")
	}

	for i, st := range stickers {
		if st.IsAnimated {
			fmt.Fprintf(&md, "%d. 🎬 [animated sticker `%s`](%s)\n", i+1, st.ID, st.VideoURI)
			continue
		}
		dataURL := codec.BytesToDataURL(st.Display.Data, st.Display.MimeType)
		fmt.Fprintf(&md, "%d. ![sticker %s](%s)\n", i+1, st.ID, dataURL)
	}

	return markdownToHTML(md.String())
}

// markdownToHTML converts the assembled markdown into a full page body
func markdownToHTML(text string) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)

	doc := p.Parse([]byte(text))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank | html.CompletePage
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}
