// Package imagecodec compresses recipe images for storage.
package imagecodec

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// MaxImageSize bounds a decoded recipe image.
const MaxImageSize = 5 << 20

var (
	ErrEmpty    = errors.New("image is empty")
	ErrTooLarge = errors.New("image is too large")
	ErrNotImage = errors.New("content is not an image")
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxImageSize))
)

// Encode checks that raw is an image and returns its compressed form
// together with the detected content type.
func Encode(raw []byte) ([]byte, string, error) {
	if len(raw) == 0 {
		return nil, "", ErrEmpty
	}
	if len(raw) > MaxImageSize {
		return nil, "", ErrTooLarge
	}
	contentType := http.DetectContentType(raw)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", ErrNotImage
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), contentType, nil
}

// Decode reverses Encode and reports the content type of the image.
func Decode(compressed []byte) ([]byte, string, error) {
	if len(compressed) == 0 {
		return nil, "", ErrEmpty
	}
	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return raw, http.DetectContentType(raw), nil
}
