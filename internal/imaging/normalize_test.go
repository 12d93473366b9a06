package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// encodeTestImage creates a solid-colored PNG of the given dimensions
func encodeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// TestNormalize_OutputIsExactSquare verifies the output is exactly size×size
func TestNormalize_OutputIsExactSquare(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		size          int
	}{
		{"landscape", 640, 480, 512},
		{"portrait", 300, 900, 512},
		{"square", 128, 128, 512},
		{"tiny", 2, 1, 512},
		{"custom size", 640, 480, 256},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := encodeTestImage(t, tc.width, tc.height)

			normalized, mimeType, err := Normalize(source, tc.size)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if mimeType != MimeType {
				t.Errorf("Expected MIME type %s, got %s", MimeType, mimeType)
			}

			decoded, _, err := image.Decode(bytes.NewReader(normalized))
			if err != nil {
				t.Fatalf("Normalized output does not decode: %v", err)
			}

			bounds := decoded.Bounds()
			if bounds.Dx() != tc.size || bounds.Dy() != tc.size {
				t.Errorf("Expected %dx%d output, got %dx%d",
					tc.size, tc.size, bounds.Dx(), bounds.Dy())
			}
		})
	}
}

// TestNormalize_PreservesAspectRatio verifies a landscape source gets
// transparent padding above and below rather than being stretched
func TestNormalize_PreservesAspectRatio(t *testing.T) {
	// 2:1 landscape source scaled into a 512 box occupies rows 128..384.
	source := encodeTestImage(t, 400, 200)

	normalized, _, err := Normalize(source, 512)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(normalized))
	if err != nil {
		t.Fatalf("Normalized output does not decode: %v", err)
	}

	// Top padding row must be fully transparent
	_, _, _, a := decoded.At(256, 10).RGBA()
	if a != 0 {
		t.Errorf("Expected transparent padding at top, got alpha %d", a)
	}

	// Bottom padding row must be fully transparent
	_, _, _, a = decoded.At(256, 500).RGBA()
	if a != 0 {
		t.Errorf("Expected transparent padding at bottom, got alpha %d", a)
	}

	// Center must carry the source content
	_, _, _, a = decoded.At(256, 256).RGBA()
	if a == 0 {
		t.Error("Expected opaque content at center, got transparent pixel")
	}
}

// TestNormalize_DefaultSize verifies a non-positive size falls back to 512
func TestNormalize_DefaultSize(t *testing.T) {
	source := encodeTestImage(t, 100, 100)

	normalized, _, err := Normalize(source, 0)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(normalized))
	if err != nil {
		t.Fatalf("Normalized output does not decode: %v", err)
	}

	if decoded.Bounds().Dx() != DefaultSize {
		t.Errorf("Expected default size %d, got %d", DefaultSize, decoded.Bounds().Dx())
	}
}

// TestNormalize_CorruptInput verifies decode failures surface as ErrDecode
func TestNormalize_CorruptInput(t *testing.T) {
	_, _, err := Normalize([]byte("definitely not an image"), 512)
	if err == nil {
		t.Fatal("Expected error when normalizing corrupt bytes")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

// TestGetInfo verifies metadata extraction
func TestGetInfo(t *testing.T) {
	source := encodeTestImage(t, 320, 240)

	info, err := GetInfo(source)
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}

	if info.Width != 320 || info.Height != 240 {
		t.Errorf("Expected 320x240, got %dx%d", info.Width, info.Height)
	}
	if info.MimeType != "image/png" {
		t.Errorf("Expected image/png, got %s", info.MimeType)
	}
	if info.SizeBytes != int64(len(source)) {
		t.Errorf("Expected size %d, got %d", len(source), info.SizeBytes)
	}
}

// TestDetectMimeType verifies magic byte detection
func TestDetectMimeType(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"gif", []byte{0x47, 0x49, 0x46, 0x38}, "image/gif"},
		{"too short", []byte{0x89}, "application/octet-stream"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, "application/octet-stream"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectMimeType(tc.data); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}
