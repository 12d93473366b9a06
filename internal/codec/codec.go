// Package codec provides pure conversions between binary payloads,
// base64 text, and embeddable data URLs.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// EncodeBase64 encodes a binary payload as standard base64 text.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes standard base64 text back into bytes.
func DecodeBase64(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}

// DataURL builds a fully-formed data URL from base64 text and a MIME type.
func DataURL(base64Text, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64Text
}

// BytesToDataURL builds a data URL directly from binary payload and MIME type.
func BytesToDataURL(data []byte, mimeType string) string {
	return DataURL(EncodeBase64(data), mimeType)
}

// ParseDataURL splits a base64 data URL back into payload bytes and MIME type.
func ParseDataURL(url string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("data URL missing payload separator")
	}

	mimeType, encoding, ok := strings.Cut(meta, ";")
	if !ok || encoding != "base64" {
		return nil, "", fmt.Errorf("data URL is not base64-encoded")
	}

	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, "", err
	}

	return data, mimeType, nil
}
