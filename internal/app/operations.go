package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/liminalpurple/stickerforge/internal/sticker"
)

// GenerateStickers runs the prompt through the concurrent image
// fan-out and appends every produced sticker to the collection.
func (o *Orchestrator) GenerateStickers(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		o.setError("enter a prompt first")
		return ErrNoPrompt
	}
	if err := o.ensureCredential(ctx); err != nil {
		return err
	}
	if err := o.begin(StateGeneratingImages); err != nil {
		return err
	}
	defer o.finish()

	stickers, err := o.gen.GenerateImages(ctx, prompt, o.imageCount)
	if err != nil {
		o.reportFailure(ctx, err, false)
		return err
	}

	o.mu.Lock()
	o.collection = append(o.collection, stickers...)
	o.message = Message{Kind: MessageInfo, Text: pluralize(len(stickers), "sticker added", "stickers added")}
	o.mu.Unlock()
	o.notify()

	o.log.Info("stickers generated", zap.Int("count", len(stickers)))
	return nil
}

// GenerateAnimation runs the prompt through video generation and
// appends one animated sticker holding the remote reference.
func (o *Orchestrator) GenerateAnimation(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		o.setError("enter a prompt first")
		return ErrNoPrompt
	}
	if err := o.ensureCredential(ctx); err != nil {
		return err
	}
	if err := o.begin(StateGeneratingVideo); err != nil {
		return err
	}
	defer o.finish()

	uri, mimeType, err := o.gen.GenerateVideo(ctx, prompt)
	if err != nil {
		o.reportFailure(ctx, err, true)
		return err
	}

	o.mu.Lock()
	o.collection = append(o.collection, sticker.NewAnimated(uri, mimeType))
	o.message = Message{Kind: MessageInfo, Text: "animated sticker added"}
	o.mu.Unlock()
	o.notify()
	return nil
}

// Select makes the sticker at index the single editing target and
// resets any in-progress edit-prompt text.
func (o *Orchestrator) Select(index int) error {
	o.mu.Lock()
	if index < 0 || index >= len(o.collection) {
		o.mu.Unlock()
		o.setError("no such sticker")
		return ErrNoSelection
	}
	o.selected = index
	o.editPrompt = ""
	o.mu.Unlock()
	o.notify()
	return nil
}

// ClearSelection drops the editing target and resets the edit prompt.
func (o *Orchestrator) ClearSelection() {
	o.mu.Lock()
	o.selected = -1
	o.editPrompt = ""
	o.mu.Unlock()
	o.notify()
}

// SetEditPrompt stages edit instruction text for the selected sticker.
func (o *Orchestrator) SetEditPrompt(text string) {
	o.mu.Lock()
	o.editPrompt = text
	o.mu.Unlock()
	o.notify()
}

// EditSelected sends the selected sticker's source image plus the
// instruction to the service and replaces the sticker in place: same
// ID, same position, fully new variant payload.
func (o *Orchestrator) EditSelected(ctx context.Context, instruction string) error {
	return o.replaceSelected(ctx, instruction, false)
}

// RemoveBackgroundSelected replaces the selected sticker with a
// background-removed version, using the fixed service instruction.
func (o *Orchestrator) RemoveBackgroundSelected(ctx context.Context) error {
	return o.replaceSelected(ctx, "", true)
}

func (o *Orchestrator) replaceSelected(ctx context.Context, instruction string, background bool) error {
	if !background {
		instruction = strings.TrimSpace(instruction)
		if instruction == "" {
			o.setError("enter an edit instruction first")
			return ErrNoPrompt
		}
	}

	o.mu.Lock()
	index := o.selected
	if index < 0 || index >= len(o.collection) {
		o.mu.Unlock()
		o.setError("select a sticker first")
		return ErrNoSelection
	}
	target := o.collection[index]
	o.mu.Unlock()

	if target.IsAnimated {
		o.setError("animated stickers cannot be edited")
		return ErrNotEditable
	}

	if err := o.ensureCredential(ctx); err != nil {
		return err
	}
	if err := o.begin(StateEditing); err != nil {
		return err
	}
	defer o.finish()

	var display, source sticker.Image
	var err error
	if background {
		display, source, err = o.gen.RemoveBackground(ctx, target.Source)
	} else {
		display, source, err = o.gen.EditImage(ctx, target.Source, instruction)
	}
	if err != nil {
		o.reportFailure(ctx, err, false)
		return err
	}

	o.mu.Lock()
	// The selection may have moved while the request was in flight;
	// the replacement still lands on the sticker it was started for.
	for i := range o.collection {
		if o.collection[i].ID == target.ID {
			o.collection[i] = sticker.Sticker{ID: target.ID, Display: display, Source: source}
			break
		}
	}
	o.editPrompt = ""
	o.message = Message{Kind: MessageInfo, Text: "sticker updated"}
	o.mu.Unlock()
	o.notify()
	return nil
}

// Save persists the collection's lossy projection.
func (o *Orchestrator) Save(ctx context.Context) error {
	if err := o.begin(StateSyncing); err != nil {
		return err
	}
	defer o.finish()

	o.mu.Lock()
	snapshot := make([]sticker.Sticker, len(o.collection))
	copy(snapshot, o.collection)
	o.mu.Unlock()

	if err := o.store.Save(ctx, snapshot); err != nil {
		o.reportFailure(ctx, err, false)
		return err
	}

	o.setInfo("%s saved", pluralize(len(snapshot), "sticker", "stickers"))
	return nil
}

// Load replaces the collection with the stored one. An absent record
// reports "no data" and leaves the in-memory collection untouched; a
// corrupt record has already been purged by the store.
func (o *Orchestrator) Load(ctx context.Context) error {
	if err := o.begin(StateSyncing); err != nil {
		return err
	}
	defer o.finish()

	stickers, err := o.store.Load(ctx)
	if err != nil {
		o.reportFailure(ctx, err, false)
		return err
	}

	o.mu.Lock()
	o.collection = stickers
	o.selected = -1
	o.editPrompt = ""
	o.message = Message{Kind: MessageInfo, Text: pluralize(len(stickers), "sticker loaded", "stickers loaded")}
	o.mu.Unlock()
	o.notify()
	return nil
}

// ClearCollection empties the in-memory collection and the store.
func (o *Orchestrator) ClearCollection(ctx context.Context) error {
	if err := o.begin(StateSyncing); err != nil {
		return err
	}
	defer o.finish()

	if err := o.store.Clear(ctx); err != nil {
		o.reportFailure(ctx, err, false)
		return err
	}

	o.mu.Lock()
	o.collection = nil
	o.selected = -1
	o.editPrompt = ""
	o.message = Message{Kind: MessageInfo, Text: "collection cleared"}
	o.mu.Unlock()
	o.notify()
	return nil
}

// RegenerateTemplates replaces the active template set wholesale with a
// freshly suggested one. Failures never touch the current set.
func (o *Orchestrator) RegenerateTemplates(ctx context.Context, theme string) error {
	if err := o.begin(StateSyncing); err != nil {
		return err
	}
	defer o.finish()

	templates, err := o.suggest.GenerateTemplates(ctx, theme, len(o.Templates()))
	if err != nil {
		o.setError("template suggestion failed - try again")
		return err
	}

	o.mu.Lock()
	o.templates = templates
	o.message = Message{Kind: MessageInfo, Text: "templates refreshed"}
	o.mu.Unlock()
	o.notify()
	return nil
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
