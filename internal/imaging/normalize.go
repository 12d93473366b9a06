// Package imaging normalizes generated images into fixed-size square
// stickers suitable for display and persistence.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"  // Import for image format support
	_ "image/jpeg" // Import for image format support

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Import for image format support
)

// DefaultSize is the default sticker edge length in pixels.
const DefaultSize = 512

// MimeType is the MIME type of every normalized sticker image.
const MimeType = "image/png"

// ErrDecode indicates the source bytes could not be decoded as an image.
var ErrDecode = errors.New("image decode failed")

// ErrEncode indicates the normalized image could not be re-encoded.
var ErrEncode = errors.New("image encode failed")

// Normalize re-encodes an image into an exactly size×size square.
// The longer source dimension is scaled to fill the target box, the
// shorter dimension is centered with transparent padding, so the
// aspect ratio is always preserved. Returns the encoded bytes and
// their MIME type. One-shot and stateless; the caller decides whether
// to retry on failure.
func Normalize(data []byte, size int) ([]byte, string, error) {
	if size <= 0 {
		size = DefaultSize
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, "", fmt.Errorf("%w: empty image", ErrDecode)
	}

	// Scale the longer dimension to the target edge.
	var dstW, dstH int
	if srcW >= srcH {
		dstW = size
		dstH = srcH * size / srcW
	} else {
		dstH = size
		dstW = srcW * size / srcH
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	// Center the scaled image inside a transparent square.
	offsetX := (size - dstW) / 2
	offsetY := (size - dstH) / 2
	target := image.Rect(offsetX, offsetY, offsetX+dstW, offsetY+dstH)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, target, src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEncode, err)
	}

	return buf.Bytes(), MimeType, nil
}
