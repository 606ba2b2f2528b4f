package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"

	// Decoders beyond the ones imaging registers.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImagePixels bounds the decoded size of an uploaded image.
const DefaultMaxImagePixels = 25_000_000

// NewImageObject decodes an uploaded image and wraps it as a drawable placed
// at the origin. Images larger than maxW x maxH are scaled down to fit; EXIF
// orientation is applied. The pixels are re-encoded as PNG so that snapshots
// are self-contained.
//
// The header is checked before any pixels are decoded: images declaring more
// than maxPixels pixels are rejected. A maxPixels of zero means
// DefaultMaxImagePixels.
func NewImageObject(r io.Reader, maxW, maxH, maxPixels int) (Object, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return Object{}, &DecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Object{}, &DecodeError{Err: errors.New("image has no pixels")}
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return Object{}, &DecodeError{Err: fmt.Errorf("image is %dx%d, over the %d pixel limit",
			cfg.Width, cfg.Height, maxPixels)}
	}

	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
	if err != nil {
		return Object{}, &DecodeError{Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return Object{}, &DecodeError{Err: errors.New("image has no pixels")}
	}
	if maxW > 0 && maxH > 0 && (b.Dx() > maxW || b.Dy() > maxH) {
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
		b = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Object{}, &DecodeError{Err: err}
	}
	return Object{
		Kind:   KindImage,
		Width:  float64(b.Dx()),
		Height: float64(b.Dy()),
		Src:    buf.Bytes(),
		img:    gg.ImageBufFromImage(img),
	}, nil
}

// decodeSrc fills the decoded pixel cache of an image object.
func (o *Object) decodeSrc() error {
	if o.img != nil {
		return nil
	}
	img, err := imaging.Decode(bytes.NewReader(o.Src))
	if err != nil {
		return &DecodeError{Err: err}
	}
	o.img = gg.ImageBufFromImage(img)
	return nil
}

// toRGBA returns src as an *image.RGBA, converting when needed.
func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
