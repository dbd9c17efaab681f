package imagery

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/gubarz/tripdoc/internal/document"
	"github.com/gubarz/tripdoc/internal/itinerary"
)

// NormalizeOptions bounds the embedded picture size
type NormalizeOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // JPEG quality, 1-100
}

// DefaultNormalizeOptions keeps pictures sharp at panel width without
// bloating the PDF
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{MaxWidth: 800, MaxHeight: 600, Quality: 85}
}

// maxSourcePixels bounds the decoded size of a downloaded picture
const maxSourcePixels = 40_000_000

var supportedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Normalize decodes any supported picture, flattens it onto white, shrinks it
// to fit the bounds with its aspect ratio kept and re-encodes it as JPEG
func Normalize(data []byte, opts NormalizeOptions) (*document.Image, error) {
	mt := mimetype.Detect(data)
	if !isSupported(mt) {
		return nil, fmt.Errorf("%w: unsupported format %s", itinerary.ErrImageUnavailable, mt.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", itinerary.ErrImageUnavailable, mt.String(), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", itinerary.ErrImageUnavailable)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds the pixel limit", itinerary.ErrImageUnavailable, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", itinerary.ErrImageUnavailable, mt.String(), err)
	}

	bounds := src.Bounds()

	w, h := fit(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Copy(dst, image.Point{}, src, bounds, draw.Over, nil)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	return &document.Image{
		Data:   buf.Bytes(),
		Type:   "JPG",
		Width:  w,
		Height: h,
	}, nil
}

func isSupported(mt *mimetype.MIME) bool {
	for _, t := range supportedTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

// fit scales w x h down to the bounds; zero bounds are unlimited
func fit(w, h, maxW, maxH int) (int, int) {
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && float64(h)*scale > float64(maxH) {
		scale = float64(maxH) / float64(h)
	}
	if scale >= 1 {
		return w, h
	}
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	return nw, nh
}
