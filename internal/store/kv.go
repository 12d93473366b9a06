// Package store persists the sticker collection under a single fixed
// key in a pluggable key-value backend.
package store

import (
	"context"
	"errors"
)

// Store-level failure conditions, distinguishable by the caller.
var (
	// ErrQuotaExceeded indicates the backend refused the write for
	// lack of space.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrNoData indicates nothing is stored under the collection key.
	ErrNoData = errors.New("no stored collection")

	// ErrCorrupt indicates the stored record was structurally invalid
	// and has been purged.
	ErrCorrupt = errors.New("stored collection is corrupt")
)

// KV is a minimal persistent key-value store. Get reports absence via
// the boolean rather than an error; Delete of an absent key is not an
// error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
