package sticker

// DefaultTemplates is the built-in prompt template set shown before the
// user regenerates their own.
func DefaultTemplates() []Template {
	return []Template{
		{Name: "Cartoon", Prompt: "a cheerful cartoon character with bold outlines and flat colors", Icon: "🎨"},
		{Name: "Pixel", Prompt: "a retro pixel-art sprite on a transparent background", Icon: "👾"},
		{Name: "Kawaii", Prompt: "a cute chibi animal with big sparkly eyes", Icon: "🐱"},
		{Name: "Sketch", Prompt: "a loose ink sketch with a single accent color", Icon: "✏️"},
		{Name: "Sticker Bomb", Prompt: "a glossy die-cut sticker with a thick white border", Icon: "💥"},
	}
}
