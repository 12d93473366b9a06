// Package download delivers generated assets to the user as files.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/liminalpurple/stickerforge/internal/logger"
	"github.com/liminalpurple/stickerforge/internal/sticker"
)

// Deliverer writes sticker payloads into a download directory.
type Deliverer struct {
	dir        string
	httpClient *http.Client
	log        logger.Logger
}

// New creates a Deliverer targeting dir.
func New(dir string, log logger.Logger) *Deliverer {
	return &Deliverer{
		dir:        dir,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		log:        log,
	}
}

// SaveImage writes a static sticker's display image to disk and returns
// the written path.
func (d *Deliverer) SaveImage(st sticker.Sticker, name string) (string, error) {
	if st.IsAnimated {
		return "", fmt.Errorf("sticker %s is animated; use SaveVideo", st.ID)
	}
	return d.write(name+extensionFor(st.Display.MimeType), st.Display.Data)
}

// SaveVideo fetches an animated sticker's remote video reference and
// writes it to disk. The reference is time-limited and requires the
// same credential that generated it, appended as a request parameter.
func (d *Deliverer) SaveVideo(ctx context.Context, st sticker.Sticker, apiKey, name string) (string, error) {
	if !st.IsAnimated {
		return "", fmt.Errorf("sticker %s is not animated; use SaveImage", st.ID)
	}

	fetchURL, err := url.Parse(st.VideoURI)
	if err != nil {
		return "", fmt.Errorf("invalid video reference: %w", err)
	}
	query := fetchURL.Query()
	query.Set("key", apiKey)
	fetchURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build video request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch video: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("video fetch returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read video body: %w", err)
	}

	d.log.Info("video fetched", zap.String("sticker", st.ID), zap.Int("bytes", len(data)))
	return d.write(name+extensionFor(st.VideoMIME), data)
}

// SaveBytes writes an arbitrary payload, for gallery exports.
func (d *Deliverer) SaveBytes(filename string, data []byte) (string, error) {
	return d.write(filename, data)
}

func (d *Deliverer) write(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(d.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return path, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4", "":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
