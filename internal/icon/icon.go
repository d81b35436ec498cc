// Package icon decodes the window icon into raw pixel data.
package icon

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/sergeymakinen/go-ico"
)

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	icoSignature = []byte{0, 0, 1, 0}
)

// ErrUnsupportedFormat is returned for files that are neither PNG nor ICO.
var ErrUnsupportedFormat = errors.New("unsupported icon format")

// Image is straight (non-premultiplied) RGBA pixel data, row-major, 4 bytes
// per pixel.
type Image struct {
	Width  int
	Height int
	RGBA   []byte
}

// BGRA returns the pixels in BGRA order, the layout Win32 icon bitmaps use.
func (img *Image) BGRA() []byte {
	out := make([]byte, len(img.RGBA))
	for i := 0; i+3 < len(img.RGBA); i += 4 {
		out[i] = img.RGBA[i+2]
		out[i+1] = img.RGBA[i+1]
		out[i+2] = img.RGBA[i]
		out[i+3] = img.RGBA[i+3]
	}
	return out
}

// Load reads and decodes the icon at path.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open icon path: %w", err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Decode decodes PNG data, or the largest entry of an ICO file. ICO entries
// may be PNG or BMP encoded.
func Decode(data []byte) (*Image, error) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		src, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode png: %w", err)
		}
		return fromImage(src)
	case bytes.HasPrefix(data, icoSignature):
		src, err := ico.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode ico: %w", err)
		}
		return fromImage(src)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func fromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("icon has zero size")
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		RGBA:   dst.Pix,
	}, nil
}
