package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/liminalpurple/stickerforge/internal/codec"
	"github.com/liminalpurple/stickerforge/internal/logger"
	"github.com/liminalpurple/stickerforge/internal/sticker"
)

// CollectionKey is the single fixed key the whole collection lives under.
const CollectionKey = "stickerforge-collection"

// record is the persisted projection of one sticker. Static stickers
// keep only their normalized display image; the edit source is
// intentionally dropped and re-derived from the display image on load.
// Animated stickers keep only the remote video reference.
type record struct {
	ID                 string `json:"id"`
	IsAnimated         bool   `json:"isAnimated"`
	VideoLocation      string `json:"videoLocation,omitempty"`
	VideoMimeType      string `json:"videoMimeType,omitempty"`
	DisplayImageBase64 string `json:"displayImageBase64,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
}

// CollectionStore serializes the sticker collection to a KV backend.
type CollectionStore struct {
	kv  KV
	key string
	log logger.Logger
}

// NewCollectionStore creates a store over the given backend.
func NewCollectionStore(kv KV, log logger.Logger) *CollectionStore {
	return &CollectionStore{kv: kv, key: CollectionKey, log: log}
}

// Save overwrites the stored collection with the lossy projection of
// the given stickers.
func (s *CollectionStore) Save(ctx context.Context, stickers []sticker.Sticker) error {
	records := make([]record, 0, len(stickers))
	for _, st := range stickers {
		if st.IsAnimated {
			records = append(records, record{
				ID:            st.ID,
				IsAnimated:    true,
				VideoLocation: st.VideoURI,
				VideoMimeType: st.VideoMIME,
			})
			continue
		}
		records = append(records, record{
			ID:                 st.ID,
			DisplayImageBase64: codec.EncodeBase64(st.Display.Data),
			MimeType:           st.Display.MimeType,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}

	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return err
	}

	s.log.Debug("collection saved",
		zap.Int("stickers", len(records)),
		zap.Int("bytes", len(data)))
	return nil
}

// Load reads the stored collection back. An absent key is reported as
// ErrNoData. Structurally invalid content is purged from the backend
// and reported as ErrCorrupt, never as a crash.
func (s *CollectionStore) Load(ctx context.Context) ([]sticker.Sticker, error) {
	value, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoData
	}

	stickers, err := s.decode(value)
	if err != nil {
		s.log.Warn("purging corrupt stored collection", zap.Error(err))
		if purgeErr := s.kv.Delete(ctx, s.key); purgeErr != nil {
			s.log.Error("failed to purge corrupt collection", zap.Error(purgeErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return stickers, nil
}

// Clear removes the stored collection. Idempotent.
func (s *CollectionStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}

func (s *CollectionStore) decode(value string) ([]sticker.Sticker, error) {
	var records []record
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}

	stickers := make([]sticker.Sticker, 0, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("entry %d has no id", i)
		}
		if rec.IsAnimated {
			if rec.VideoLocation == "" {
				return nil, fmt.Errorf("entry %d is animated but has no video location", i)
			}
			stickers = append(stickers, sticker.Sticker{
				ID:         rec.ID,
				IsAnimated: true,
				VideoURI:   rec.VideoLocation,
				VideoMIME:  rec.VideoMimeType,
			})
			continue
		}

		data, err := codec.DecodeBase64(rec.DisplayImageBase64)
		if err != nil || len(data) == 0 {
			return nil, fmt.Errorf("entry %d has no decodable display image", i)
		}
		img := sticker.Image{Data: data, MimeType: rec.MimeType}
		stickers = append(stickers, sticker.Sticker{
			ID: rec.ID,
			// The original pre-normalization source was dropped at
			// save time; edits after a reload start from the display
			// image.
			Display: img,
			Source:  img,
		})
	}
	return stickers, nil
}
