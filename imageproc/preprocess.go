package imageproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
)

// Default is the input size most pretrained classifiers expect.
var Default = Size{Width: 224, Height: 224}

type Size struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// MaxPixels bounds the header-declared area of an upload so a small file
// cannot expand into an enormous bitmap.
const MaxPixels = 40_000_000

// InvalidImageError reports an upload that no registered decoder accepts.
type InvalidImageError struct {
	Err error
}

func (e *InvalidImageError) Error() string {
	return "invalid image: " + e.Err.Error()
}

func (e *InvalidImageError) Unwrap() error { return e.Err }

// Image is a decoded upload.
type Image struct {
	image.Image
	Format string
}

func (i *Image) Size() Size {
	b := i.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// Decode parses raw bytes and applies any EXIF orientation.
func Decode(raw []byte) (*Image, error) {
	if len(raw) == 0 {
		return nil, &InvalidImageError{Err: fmt.Errorf("empty input")}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &InvalidImageError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &InvalidImageError{Err: fmt.Errorf("zero-sized %s image", format)}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, &InvalidImageError{Err: fmt.Errorf("%s image %dx%d exceeds %d pixels", format, cfg.Width, cfg.Height, MaxPixels)}
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &InvalidImageError{Err: err}
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &InvalidImageError{Err: fmt.Errorf("zero-sized %s image", format)}
	}
	return &Image{Image: img, Format: format}, nil
}

// Preprocess decodes raw and converts it into a model input of the given size.
func Preprocess(raw []byte, size Size) (*Tensor, error) {
	img, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Tensorize(img, size)
}

// Tensorize resizes img to size with a Lanczos filter and scales every RGB
// channel into [0,1]. Alpha is dropped; gray and paletted sources are
// expanded to three channels.
func Tensorize(img image.Image, size Size) (*Tensor, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("invalid target size %s", size)
	}
	resized := imaging.Resize(img, size.Width, size.Height, imaging.Lanczos)

	out := make([]float32, 3*size.Width*size.Height)
	i := 0
	for y := range size.Height {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+size.Width*4]
		for x := range size.Width {
			out[i] = float32(row[x*4]) / 255.0
			out[i+1] = float32(row[x*4+1]) / 255.0
			out[i+2] = float32(row[x*4+2]) / 255.0
			i += 3
		}
	}
	return &Tensor{Data: out, Shape: [4]int{1, size.Height, size.Width, 3}}, nil
}
