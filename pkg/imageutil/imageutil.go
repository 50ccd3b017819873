package imageutil

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	// Generated images occasionally arrive as WebP; registering the format
	// lets imaging.Decode handle them transparently.
	_ "golang.org/x/image/webp"
)

// Thumbnail decodes data and returns a JPEG preview at most maxPx wide,
// preserving aspect ratio. Returns nil on any decode/encode failure so
// callers can treat thumbnails as strictly best-effort.
func Thumbnail(data []byte, maxPx int) []byte {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	if img.Bounds().Dx() > maxPx {
		img = imaging.Resize(img, maxPx, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil
	}
	return buf.Bytes()
}

// Placeholder renders a deterministic solid-color JPEG for seed. The same
// seed always yields the same bytes.
func Placeholder(seed string, width, height int) ([]byte, error) {
	h := fnv.New32a()
	h.Write([]byte(seed))
	sum := h.Sum32()

	// Keep channels in a muted band so placeholders read as background.
	c := color.NRGBA{
		R: uint8(64 + (sum>>16)&0x7F),
		G: uint8(64 + (sum>>8)&0x7F),
		B: uint8(64 + sum&0x7F),
		A: 255,
	}

	img := imaging.New(width, height, c)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode is a convenience wrapper exposing the registered formats.
func Decode(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data))
}
