package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// Decode picks a decoder from the file extension.
func Decode(name string, data []byte) (image.Image, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return png.Decode(bytes.NewReader(data))
	case ".bmp":
		return bmp.Decode(bytes.NewReader(data))
	case ".webp":
		return webp.Decode(bytes.NewReader(data))
	case ".tga":
		return DecodeTGA(data)
	default:
		return nil, fmt.Errorf("unsupported texture format %q", name)
	}
}

// ToRGBA converts any image to *image.RGBA, optionally premultiplying
// color by alpha for pages flagged as PMA.
func ToRGBA(img image.Image, premultiply bool) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && !premultiply {
		return rgba
	}

	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// image.Color.RGBA is already alpha-premultiplied; undo it for straight pages.
			r, g, bl, a := img.At(x, y).RGBA()
			if !premultiply && a != 0 && a != 0xffff {
				r = r * 0xffff / a
				g = g * 0xffff / a
				bl = bl * 0xffff / a
			}
			i := out.PixOffset(x, y)
			out.Pix[i] = uint8(r >> 8)
			out.Pix[i+1] = uint8(g >> 8)
			out.Pix[i+2] = uint8(bl >> 8)
			out.Pix[i+3] = uint8(a >> 8)
		}
	}
	return out
}
