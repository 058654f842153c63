package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-task-auth/imaging"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestThumbnail_ResizesToSquarePNG(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{name: "png", filename: "me.png", data: encodePNG(t, 640, 480)},
		{name: "jpeg", filename: "me.jpeg", data: encodeJPEG(t, 100, 300)},
		{name: "jpg upper case", filename: "ME.JPG", data: encodeJPEG(t, 20, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := imaging.Thumbnail(tt.filename, tt.data, 0)
			require.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, imaging.Width, cfg.Width)
			assert.Equal(t, imaging.Height, cfg.Height)
		})
	}
}

func TestThumbnail_Rejections(t *testing.T) {
	valid := encodePNG(t, 10, 10)

	tests := []struct {
		name     string
		filename string
		data     []byte
		max      int64
		want     error
	}{
		{name: "pdf extension", filename: "doc.pdf", data: valid, want: imaging.ErrUnsupportedType},
		{name: "no extension", filename: "avatar", data: valid, want: imaging.ErrUnsupportedType},
		{name: "too large", filename: "big.png", data: valid, max: 10, want: imaging.ErrTooLarge},
		{name: "empty", filename: "empty.png", data: nil, want: imaging.ErrEmpty},
		{name: "not an image", filename: "fake.png", data: []byte("definitely not a png"), want: imaging.ErrUndecodable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := imaging.Thumbnail(tt.filename, tt.data, tt.max)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, imaging.IsUploadError(err))
		})
	}
}
