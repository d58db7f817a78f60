// Package media converts chat attachments for the sticker commands.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

const stickerSize = 512

// Sticker fits an image into a 512x512 transparent canvas and re-encodes it
// as PNG, the shape chat clients expect for stickers.
func Sticker(r io.Reader) ([]byte, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	fitted := imaging.Fit(src, stickerSize, stickerSize, imaging.Lanczos)
	canvas := imaging.New(stickerSize, stickerSize, color.NRGBA{0, 0, 0, 0})
	centered := imaging.PasteCenter(canvas, fitted)

	return encodePNG(centered)
}

// ToImage re-encodes a sticker back into a plain PNG at its native size.
func ToImage(r io.Reader) ([]byte, error) {
	src, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sticker: %w", err)
	}
	return encodePNG(src)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
