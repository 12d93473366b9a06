// Package app implements the collection orchestrator: it owns the
// in-memory sticker collection and the authenticated flag, enforces
// preconditions before remote calls, and routes every failure through a
// single error-normalization policy. The presentation layer observes it
// through snapshots and change notifications, never by mutating shared
// state.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/liminalpurple/stickerforge/internal/genclient"
	"github.com/liminalpurple/stickerforge/internal/logger"
	"github.com/liminalpurple/stickerforge/internal/sticker"
	"github.com/liminalpurple/stickerforge/internal/store"
)

// Generator is the remote generation surface consumed by the
// orchestrator. Implemented by genclient.Client.
type Generator interface {
	GenerateImages(ctx context.Context, prompt string, count int) ([]sticker.Sticker, error)
	EditImage(ctx context.Context, src sticker.Image, instruction string) (display, source sticker.Image, err error)
	RemoveBackground(ctx context.Context, src sticker.Image) (display, source sticker.Image, err error)
	GenerateVideo(ctx context.Context, prompt string) (uri, mimeType string, err error)
}

// Store persists the collection. Implemented by store.CollectionStore.
type Store interface {
	Save(ctx context.Context, stickers []sticker.Sticker) error
	Load(ctx context.Context) ([]sticker.Sticker, error)
	Clear(ctx context.Context) error
}

// Keychain gates remote calls behind a user-selected credential. The
// orchestrator never inspects credential contents.
type Keychain interface {
	HasCredential() bool
	SelectCredential(ctx context.Context) error
}

// Suggester regenerates the prompt template set. Implemented by
// suggest.Client.
type Suggester interface {
	GenerateTemplates(ctx context.Context, theme string, count int) ([]sticker.Template, error)
}

// MessageKind distinguishes the outcome message shown to the user.
type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageInfo
	MessageError
)

// Message is the single most-recent user-facing outcome. Success and
// error are mutually exclusive; the most recent outcome wins.
type Message struct {
	Kind MessageKind
	Text string
}

// Deps wires the orchestrator's collaborators.
type Deps struct {
	Generator  Generator
	Store      Store
	Keychain   Keychain
	Suggester  Suggester
	ImageCount int // fan-out width of image generation, default 5
	Log        logger.Logger
}

// Orchestrator owns the authoritative application state.
type Orchestrator struct {
	mu            sync.Mutex
	state         State
	collection    []sticker.Sticker
	templates     []sticker.Template
	authenticated bool
	selected      int // index into collection, -1 means none
	editPrompt    string
	message       Message
	subscribers   []func()

	gen        Generator
	store      Store
	keychain   Keychain
	suggest    Suggester
	imageCount int
	log        logger.Logger
}

// New creates an orchestrator with an empty collection and the default
// template set. The authenticated flag starts true only if a credential
// is already present.
func New(deps Deps) *Orchestrator {
	count := deps.ImageCount
	if count <= 0 {
		count = genclient.DefaultImageCount
	}
	return &Orchestrator{
		state:         StateIdle,
		templates:     sticker.DefaultTemplates(),
		authenticated: deps.Keychain != nil && deps.Keychain.HasCredential(),
		selected:      -1,
		gen:           deps.Generator,
		store:         deps.Store,
		keychain:      deps.Keychain,
		suggest:       deps.Suggester,
		imageCount:    count,
		log:           deps.Log,
	}
}

// Subscribe registers a change notification callback. Callbacks run
// after every state mutation, outside the orchestrator's lock.
func (o *Orchestrator) Subscribe(fn func()) {
	o.mu.Lock()
	o.subscribers = append(o.subscribers, fn)
	o.mu.Unlock()
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	subs := make([]func(), len(o.subscribers))
	copy(subs, o.subscribers)
	o.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Stickers returns a snapshot copy of the collection.
func (o *Orchestrator) Stickers() []sticker.Sticker {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]sticker.Sticker, len(o.collection))
	copy(out, o.collection)
	return out
}

// Templates returns the active template set.
func (o *Orchestrator) Templates() []sticker.Template {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]sticker.Template, len(o.templates))
	copy(out, o.templates)
	return out
}

// State returns the current operation state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Authenticated reports whether the credential gate is open.
func (o *Orchestrator) Authenticated() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.authenticated
}

// Selected returns the editing target index, or -1.
func (o *Orchestrator) Selected() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selected
}

// EditPrompt returns the in-progress edit instruction text.
func (o *Orchestrator) EditPrompt() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.editPrompt
}

// Message returns the most recent outcome message.
func (o *Orchestrator) Message() Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.message
}

// begin moves Idle → next, rejecting concurrent operations.
func (o *Orchestrator) begin(next State) error {
	o.mu.Lock()
	if o.state != StateIdle {
		current := o.state
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBusy, current)
	}
	o.state = next
	o.mu.Unlock()
	o.notify()
	return nil
}

func (o *Orchestrator) finish() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
	o.notify()
}

func (o *Orchestrator) setInfo(format string, args ...any) {
	o.mu.Lock()
	o.message = Message{Kind: MessageInfo, Text: fmt.Sprintf(format, args...)}
	o.mu.Unlock()
	o.notify()
}

func (o *Orchestrator) setError(text string) {
	o.mu.Lock()
	o.message = Message{Kind: MessageError, Text: text}
	o.mu.Unlock()
	o.notify()
}

// reportFailure is the single error-normalization policy. It turns any
// failure from the generation client or the store into exactly one
// user-facing message and decides whether the authenticated flag must
// be revoked: only credential errors revoke it, and a not-found on the
// video path additionally re-runs credential selection directly.
func (o *Orchestrator) reportFailure(ctx context.Context, err error, videoPath bool) {
	text := "operation failed - try again"
	revoke := false
	reselect := false

	switch genclient.KindOf(err) {
	case genclient.KindAuth:
		text = "API key invalid or expired - select a new key and retry"
		revoke = true
	case genclient.KindNotFound:
		if videoPath {
			text = "video generation is not available for this API key - select another key"
			revoke = true
			reselect = true
		} else {
			text = "the requested resource was not found - try again"
		}
	case genclient.KindNothingProduced:
		text = "nothing was produced - try again"
	case genclient.KindRemote:
		text = "the generation service reported an error - try again"
	case genclient.KindTransport:
		text = "could not reach the generation service - try again"
	default:
		switch {
		case errors.Is(err, store.ErrQuotaExceeded):
			text = "local storage is full - clear stickers or lower the quota usage"
		case errors.Is(err, store.ErrCorrupt):
			text = "saved data was corrupt and has been cleared"
		case errors.Is(err, store.ErrNoData):
			text = "no saved collection found"
		}
	}

	o.mu.Lock()
	if revoke {
		o.authenticated = false
	}
	o.message = Message{Kind: MessageError, Text: text}
	o.mu.Unlock()
	o.notify()

	if o.log != nil {
		o.log.Warn("operation failed",
			zap.String("kind", genclient.KindOf(err).String()),
			zap.Bool("revoked", revoke),
			zap.Error(err))
	}

	if reselect && o.keychain != nil {
		if selErr := o.keychain.SelectCredential(ctx); selErr == nil {
			o.mu.Lock()
			o.authenticated = true
			o.mu.Unlock()
			o.notify()
		}
	}
}

// ensureCredential opens the credential gate, prompting for selection
// if needed. No remote call is made before this succeeds.
func (o *Orchestrator) ensureCredential(ctx context.Context) error {
	o.mu.Lock()
	ok := o.authenticated && o.keychain.HasCredential()
	o.mu.Unlock()
	if ok {
		return nil
	}

	if err := o.keychain.SelectCredential(ctx); err != nil {
		o.setError("an API key is required - none was selected")
		return fmt.Errorf("credential selection failed: %w", err)
	}

	o.mu.Lock()
	o.authenticated = true
	o.mu.Unlock()
	o.notify()
	return nil
}
