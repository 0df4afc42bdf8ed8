package photo_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-registration/internal/photo"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestToDataURI(t *testing.T) {
	data := pngBytes(t)

	uri, err := photo.ToDataURI(bytes.NewReader(data), 0)
	require.NoError(t, err)

	prefix := "data:image/png;base64,"
	require.True(t, strings.HasPrefix(uri, prefix), uri)

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestToDataURIRejects(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		maxBytes int64
		want     error
	}{
		{"empty", nil, 0, photo.ErrEmpty},
		{"text", []byte("just some words, not a picture"), 0, photo.ErrNotImage},
		{"too large", bytes.Repeat([]byte{0x89}, 64), 32, photo.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, err := photo.ToDataURI(bytes.NewReader(tt.data), tt.maxBytes)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, uri)
		})
	}
}

func TestToDataURIExactLimit(t *testing.T) {
	data := pngBytes(t)
	_, err := photo.ToDataURI(bytes.NewReader(data), int64(len(data)))
	assert.NoError(t, err)
}
