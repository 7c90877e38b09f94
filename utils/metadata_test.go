package utils

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestGetCaptureMetadataDimensions(t *testing.T) {
	meta := GetCaptureMetadata(encodePNG(t, 320, 240))

	require.NotNil(t, meta.Width)
	require.NotNil(t, meta.Height)
	assert.Equal(t, 320, *meta.Width)
	assert.Equal(t, 240, *meta.Height)

	// PNGs carry no EXIF; that is not an error
	assert.Nil(t, meta.TakenAt)
	assert.Nil(t, meta.CameraMake)
}

func TestGetCaptureMetadataGarbageInput(t *testing.T) {
	meta := GetCaptureMetadata([]byte("not an image at all"))
	require.NotNil(t, meta)
	assert.Nil(t, meta.Width)
	assert.Nil(t, meta.TakenAt)
}
