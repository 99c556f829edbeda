// Package imaging turns arbitrary uploaded or fetched image bytes into a PNG
// suitable for embedding in a document.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
)

// DefaultMaxWidth is roughly 3.5 in at 300 dpi.
const DefaultMaxWidth = 1050

// MaxPixels bounds the decoded bitmap. Compressed uploads are size-capped,
// but a small PNG can still declare enormous dimensions.
const MaxPixels = 25_000_000

var (
	ErrEmpty    = errors.New("image data is empty")
	ErrTooLarge = errors.New("image dimensions exceed limit")
)

// Normalize decodes raw (png, jpeg, gif or webp), downscales it to at most
// maxWidth pixels wide, flattens transparency onto white and re-encodes it as
// PNG. A maxWidth <= 0 disables scaling.
func Normalize(raw []byte, maxWidth int) (docx.Image, error) {
	if len(raw) == 0 {
		return docx.Image{}, ErrEmpty
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return docx.Image{}, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return docx.Image{}, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return docx.Image{}, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return docx.Image{}, fmt.Errorf("decode image: empty %s bounds", format)
	}

	w, h := fit(b.Dx(), b.Dy(), maxWidth)
	scaled := src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		scaled = dst
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(scaled, -scaled.Bounds().Min.X, -scaled.Bounds().Min.Y)

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return docx.Image{}, fmt.Errorf("encode png: %w", err)
	}
	return docx.Image{Data: out.Bytes(), Format: "png", WidthPx: w, HeightPx: h}, nil
}

func fit(w, h, maxWidth int) (int, int) {
	if maxWidth <= 0 || w <= maxWidth {
		return w, h
	}
	nh := h * maxWidth / w
	if nh < 1 {
		nh = 1
	}
	return maxWidth, nh
}
