package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// CoverSettings bounds the size of cover thumbnails.
type CoverSettings struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func DefaultCoverSettings() CoverSettings {
	return CoverSettings{MaxWidth: 300, MaxHeight: 450, Quality: 85}
}

// CoverProcessor turns downloaded covers into small JPEG thumbnails.
type CoverProcessor struct {
	settings CoverSettings
}

func NewCoverProcessor(settings CoverSettings) *CoverProcessor {
	return &CoverProcessor{settings: settings}
}

// Thumbnail decodes a JPEG, PNG or GIF cover and re-encodes it as a JPEG
// that fits inside the configured bounds. Images already small enough keep
// their size.
func (p *CoverProcessor) Thumbnail(input io.Reader) ([]byte, error) {
	img, _, err := image.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := p.dimensions(bounds.Dx(), bounds.Dy())

	var out image.Image = img
	if width != bounds.Dx() || height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: p.settings.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// dimensions scales width x height down to fit the bounds, keeping the
// aspect ratio.
func (p *CoverProcessor) dimensions(width, height int) (int, int) {
	if width <= p.settings.MaxWidth && height <= p.settings.MaxHeight {
		return width, height
	}

	scale := float64(p.settings.MaxWidth) / float64(width)
	if hs := float64(p.settings.MaxHeight) / float64(height); hs < scale {
		scale = hs
	}

	w := max(1, int(float64(width)*scale))
	h := max(1, int(float64(height)*scale))
	return w, h
}
