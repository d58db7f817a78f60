package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestSticker_FitsInto512Canvas(t *testing.T) {
	out, err := Sticker(testImage(t, 1024, 256))
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Equal(t, 512, bounds.Dx())
	assert.Equal(t, 512, bounds.Dy())
}

func TestSticker_UpscalesNothing(t *testing.T) {
	out, err := Sticker(testImage(t, 64, 64))
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 512, decoded.Bounds().Dx(), "small images still land on the full canvas")
}

func TestSticker_RejectsGarbage(t *testing.T) {
	_, err := Sticker(strings.NewReader("not an image"))
	assert.Error(t, err)
}

func TestToImage_KeepsNativeSize(t *testing.T) {
	out, err := ToImage(testImage(t, 300, 200))
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 300, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}
