package app

import "errors"

// State is the orchestrator's operation state. Only one operation runs
// at a time; anything but StateIdle rejects new operations with ErrBusy.
type State int

const (
	StateIdle State = iota
	StateGeneratingImages
	StateGeneratingVideo
	StateEditing
	StateSyncing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGeneratingImages:
		return "generating images"
	case StateGeneratingVideo:
		return "generating video"
	case StateEditing:
		return "editing"
	case StateSyncing:
		return "saving/loading"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when an operation is attempted while another is
// in progress.
var ErrBusy = errors.New("another operation is in progress")

// Input-validation failures, reported before any remote call is made.
var (
	ErrNoPrompt    = errors.New("prompt is empty")
	ErrNoSelection = errors.New("no sticker selected")
	ErrNotEditable = errors.New("animated stickers cannot be edited")
)
