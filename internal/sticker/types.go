// Package sticker defines the domain model shared by the orchestrator,
// store, and presentation layers.
package sticker

import (
	"fmt"

	"github.com/google/uuid"
)

// Image is an encoded image payload with its MIME type.
type Image struct {
	Data     []byte
	MimeType string
}

// Sticker is one generated asset. Exactly one variant's fields are
// populated, selected by IsAnimated: static stickers carry a normalized
// display image plus the original source image used as the basis for
// edits; animated stickers carry only a time-limited remote video
// reference, never video bytes.
type Sticker struct {
	ID         string
	IsAnimated bool

	// Static variant
	Display Image // normalized to the fixed sticker size
	Source  Image // original bytes, edit basis

	// Animated variant
	VideoURI  string
	VideoMIME string
}

// NewID returns a fresh high-entropy sticker ID.
func NewID() string {
	return uuid.NewString()
}

// NewStatic creates a static sticker with a fresh ID.
func NewStatic(display, source Image) Sticker {
	return Sticker{
		ID:      NewID(),
		Display: display,
		Source:  source,
	}
}

// NewAnimated creates an animated sticker with a fresh ID.
func NewAnimated(videoURI, videoMIME string) Sticker {
	return Sticker{
		ID:         NewID(),
		IsAnimated: true,
		VideoURI:   videoURI,
		VideoMIME:  videoMIME,
	}
}

// Validate checks the single-variant invariant.
func (s Sticker) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("sticker has no ID")
	}
	if s.IsAnimated {
		if s.VideoURI == "" {
			return fmt.Errorf("animated sticker %s has no video reference", s.ID)
		}
		if len(s.Display.Data) != 0 || len(s.Source.Data) != 0 {
			return fmt.Errorf("animated sticker %s carries image payloads", s.ID)
		}
		return nil
	}
	if len(s.Display.Data) == 0 {
		return fmt.Errorf("static sticker %s has no display image", s.ID)
	}
	if s.VideoURI != "" || s.VideoMIME != "" {
		return fmt.Errorf("static sticker %s carries a video reference", s.ID)
	}
	return nil
}

// Template is a suggested prompt shown to the user. Immutable once
// fetched; the active set is wholesale-replaced, never merged.
type Template struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Icon   string `json:"icon"`
}
