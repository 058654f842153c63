// Package imaging validates uploaded images and normalizes them to square
// PNG thumbnails.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Thumbnail dimensions
const (
	Width  = 250
	Height = 250
)

// DefaultMaxBytes is the largest accepted upload
const DefaultMaxBytes = 1_000_000

// ContentType of every processed image
const ContentType = "image/png"

var (
	// ErrUnsupportedType file extension is not jpg, jpeg or png
	ErrUnsupportedType = errors.New("please upload an image (jpg, jpeg or png)")
	// ErrTooLarge upload exceeds the size limit
	ErrTooLarge = errors.New("file too large")
	// ErrEmpty upload has no content
	ErrEmpty = errors.New("file is empty")
	// ErrUndecodable content is not a readable image
	ErrUndecodable = errors.New("unable to read image")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// CheckUpload validates the file name and size before any decoding
func CheckUpload(filename string, size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if !allowedExt[strings.ToLower(filepath.Ext(filename))] {
		return ErrUnsupportedType
	}
	if size <= 0 {
		return ErrEmpty
	}
	if size > maxBytes {
		return ErrTooLarge
	}
	return nil
}

// Thumbnail checks the upload and returns it resized to Width x Height,
// encoded as PNG
func Thumbnail(filename string, data []byte, maxBytes int64) ([]byte, error) {
	if err := CheckUpload(filename, int64(len(data)), maxBytes); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// IsUploadError reports errors caused by the uploaded file itself
func IsUploadError(err error) bool {
	return errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrEmpty) ||
		errors.Is(err, ErrUndecodable)
}
